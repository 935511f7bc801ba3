// Package model defines the shared data types of the autodoc tool.
package model

// HeadRef is the symbolic name of the current commit.
const HeadRef = "HEAD"

// MaxCommitDistance is the sentinel distance assigned when a commit's
// distance to HEAD cannot be determined. It loses every smaller-distance
// comparison.
const MaxCommitDistance = 999999

// CommitRef pairs a commit SHA with its distance to HEAD.
type CommitRef struct {
	SHA            string
	DistanceToHead int
}

// DiffRange is a half-open commit window From..To.
type DiffRange struct {
	From string
	To   string
}

// HasDiff reports whether the range spans any commits at all.
func (r DiffRange) HasDiff() bool {
	return r.From != r.To
}

// EventKind is the CI event that triggered a run.
type EventKind string

const (
	EventPush        EventKind = "push"
	EventPullRequest EventKind = "pull_request"
)
