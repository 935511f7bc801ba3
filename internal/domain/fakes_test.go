package domain

import (
	"context"
	"errors"
	"os"
	"sync"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// fakeFS is an in-memory SourceFSAdapter.
type fakeFS struct {
	mu     sync.Mutex
	files  map[m.Path][]byte
	writes []m.Path
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: map[m.Path][]byte{}}
}

func (f *fakeFS) ReadFile(path m.Path) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	content, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}

	return append([]byte{}, content...), nil
}

func (f *fakeFS) WriteFile(path m.Path, content []byte, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.files[path] = append([]byte{}, content...)
	f.writes = append(f.writes, path)

	return nil
}

func (f *fakeFS) HashFile(path m.Path) (string, error) {
	if _, err := f.ReadFile(path); err != nil {
		return "", err
	}

	return string(path), nil
}

func (f *fakeFS) FileInfo(path m.Path) (os.FileInfo, error) {
	if _, err := f.ReadFile(path); err != nil {
		return nil, err
	}

	return nil, nil
}

func (f *fakeFS) WalkPythonFiles(root m.Path, _ bool, fn func(path m.Path) error) error {
	f.mu.Lock()
	paths := make([]m.Path, 0, len(f.files))

	for p := range f.files {
		paths = append(paths, p)
	}
	f.mu.Unlock()

	for _, p := range paths {
		if root != "" && root != "." && p != root {
			continue
		}

		if err := fn(p); err != nil {
			return err
		}
	}

	return nil
}

// fakeHistory is a scriptable GitHistoryAdapter.
type fakeHistory struct {
	lastBot     *m.CommitRef
	lastBotErr  error
	mergeBases  map[string]*m.CommitRef
	boundary    *m.CommitRef
	boundaryErr error
	oldest      m.CommitRef
	oldestErr   error
}

func (h *fakeHistory) LastAutomationCommit(context.Context) (*m.CommitRef, error) {
	return h.lastBot, h.lastBotErr
}

func (h *fakeHistory) MergeBase(_ context.Context, targetRef string) (*m.CommitRef, error) {
	if base, ok := h.mergeBases[targetRef]; ok && base != nil {
		return base, nil
	}

	return nil, errors.New("no merge base")
}

func (h *fakeHistory) BoundaryCommit(context.Context, string) (*m.CommitRef, error) {
	if h.boundaryErr != nil {
		return nil, h.boundaryErr
	}

	return h.boundary, nil
}

func (h *fakeHistory) OldestAvailableCommit(context.Context) (m.CommitRef, error) {
	return h.oldest, h.oldestErr
}

func (h *fakeHistory) CountCommitsToHead(context.Context, string) int {
	return m.MaxCommitDistance
}

// fakeUpdater returns scripted results in call order.
type fakeUpdater struct {
	mu      sync.Mutex
	results []UpdateResult
	errs    []error
	calls   int
	diffs   []string
}

func (u *fakeUpdater) Update(_ context.Context, _ m.Path, diff string) (UpdateResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.calls
	u.calls++
	u.diffs = append(u.diffs, diff)

	var result UpdateResult
	if i < len(u.results) {
		result = u.results[i]
	}

	var err error
	if i < len(u.errs) {
		err = u.errs[i]
	}

	return result, err
}

// fakeComparator returns scripted outcomes in call order.
type fakeComparator struct {
	mu       sync.Mutex
	outcomes []m.ValidationOutcome
	calls    int
}

func (c *fakeComparator) Validate(context.Context, string, m.Path) m.ValidationOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.calls
	c.calls++

	if i < len(c.outcomes) {
		return c.outcomes[i]
	}

	return m.ValidationOutcome{Passed: true, Status: m.StatusValid}
}
