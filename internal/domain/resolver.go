package domain

import (
	"context"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

// RepoContext carries the CI-event context the resolver needs.
type RepoContext struct {
	Event   m.EventKind
	BaseRef string
}

// CommitRangeResolver picks the "from" commit to diff against HEAD. The goal
// is always the smallest sufficient history window, so files already
// processed by a prior automated pass are not reprocessed. Resolution never
// fails: every query failure degrades along a fallback chain that terminates
// in the safe HEAD..HEAD range ("nothing to do").
type CommitRangeResolver interface {
	Resolve(ctx context.Context, rc RepoContext) m.DiffRange
}

type commitRangeResolver struct {
	history adapter.GitHistoryAdapter
}

// NewCommitRangeResolver constructs a CommitRangeResolver over the provided
// history adapter.
func NewCommitRangeResolver(history adapter.GitHistoryAdapter) CommitRangeResolver {
	return &commitRangeResolver{history: history}
}

// Resolve picks the diff range for the given context.
func (r *commitRangeResolver) Resolve(ctx context.Context, rc RepoContext) m.DiffRange {
	var from string

	if rc.Event == m.EventPullRequest {
		from = r.pullRequestFrom(ctx, rc)
	} else {
		from = r.pushFrom(ctx)
	}

	if from == "" {
		from = m.HeadRef
	}

	return m.DiffRange{From: from, To: m.HeadRef}
}

// pullRequestFrom prefers whichever of pr-base and last-automation-commit is
// closer to HEAD; ties favor the PR base.
func (r *commitRangeResolver) pullRequestFrom(ctx context.Context, rc RepoContext) string {
	prBase := r.prBaseCommit(ctx, rc)
	lastBot, _ := r.history.LastAutomationCommit(ctx)

	switch {
	case prBase != nil && lastBot != nil:
		if prBase.DistanceToHead <= lastBot.DistanceToHead {
			return prBase.SHA
		}

		return lastBot.SHA

	case prBase != nil:
		return prBase.SHA

	case lastBot != nil:
		return lastBot.SHA
	}

	oldest, err := r.history.OldestAvailableCommit(ctx)
	if err != nil {
		return ""
	}

	return oldest.SHA
}

// prBaseCommit walks the PR-base fallback chain: merge-base with the remote
// target ref, then the bare ref, then the boundary-commit search, then the
// oldest commit available in the clone.
func (r *commitRangeResolver) prBaseCommit(ctx context.Context, rc RepoContext) *m.CommitRef {
	if rc.BaseRef == "" {
		return nil
	}

	for _, ref := range []string{"origin/" + rc.BaseRef, rc.BaseRef} {
		base, err := r.history.MergeBase(ctx, ref)
		if err == nil && base != nil {
			return base
		}
	}

	if boundary, err := r.history.BoundaryCommit(ctx, rc.BaseRef); err == nil && boundary != nil {
		return boundary
	}

	if oldest, err := r.history.OldestAvailableCommit(ctx); err == nil {
		return &oldest
	}

	return nil
}

// pushFrom prefers whichever of oldest-available and last-automation-commit
// is closer to HEAD; ties favor the oldest available commit.
func (r *commitRangeResolver) pushFrom(ctx context.Context) string {
	lastBot, _ := r.history.LastAutomationCommit(ctx)

	oldest, err := r.history.OldestAvailableCommit(ctx)
	if err != nil {
		if lastBot != nil {
			return lastBot.SHA
		}

		return ""
	}

	if lastBot != nil && lastBot.DistanceToHead < oldest.DistanceToHead {
		return lastBot.SHA
	}

	return oldest.SHA
}
