package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseShardFlag(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantIndex int
		wantTotal int
	}{
		{"empty", "", 0, 1},
		{"first of three", "0/3", 0, 3},
		{"last of three", "2/3", 2, 3},
		{"index out of range", "3/3", 0, 1},
		{"negative index", "-1/3", 0, 1},
		{"zero total", "0/0", 0, 1},
		{"garbage", "abc", 0, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			index, total := parseShardFlag(tc.input)
			assert.Equal(t, tc.wantIndex, index)
			assert.Equal(t, tc.wantTotal, total)
		})
	}
}

func TestRunCmd_Flags(t *testing.T) {
	cmd := newRunCmd()

	assert.NotNil(t, cmd.Flags().Lookup("parallel"))
	assert.NotNil(t, cmd.Flags().Lookup("shard"))
	assert.NotNil(t, cmd.Flags().Lookup("dry-run"))
	assert.NotNil(t, cmd.Flags().Lookup("message"))
}
