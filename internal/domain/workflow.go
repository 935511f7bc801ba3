package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"golang.org/x/sync/errgroup"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	"autodoc.dev/pkg/autodoc/internal/controller"
	m "autodoc.dev/pkg/autodoc/internal/model"
	"autodoc.dev/pkg/autodoc/pkg"
)

// fullReprocessDiff stands in for a real commit diff when the user names
// files explicitly and the whole file should be considered changed.
const fullReprocessDiff = "full reprocessing requested"

// RunArgs carries per-invocation options for a pipeline run.
type RunArgs struct {
	Paths           []m.Path
	Exclude         []string
	Reports         m.Path
	Threads         int
	ShardIndex      int
	TotalShardCount int
	DryRun          bool
	CommitMessage   string
}

// Workflow orchestrates the docstring pipeline: resolve the commit window,
// enumerate changed files, process each one, persist reports and commit the
// accepted updates.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.RunSummary, error)
	ChangedFiles(ctx context.Context) (m.DiffRange, []m.Path, error)
	DiffStats(ctx context.Context) (m.DiffRange, []m.DiffStat, error)
	View(ctx context.Context, reports m.Path) error
	Merge(ctx context.Context, reports m.Path) error
}

type workflow struct {
	repo      RepoContext
	resolver  CommitRangeResolver
	history   adapter.GitHistoryAdapter
	git       adapter.GitWorktreeAdapter
	files     adapter.SourceFSAdapter
	processor FileProcessor
	store     adapter.ReportStore
	ui        controller.UI
}

// NewWorkflow wires the pipeline out of its collaborators.
func NewWorkflow(
	repo RepoContext,
	resolver CommitRangeResolver,
	history adapter.GitHistoryAdapter,
	git adapter.GitWorktreeAdapter,
	files adapter.SourceFSAdapter,
	processor FileProcessor,
	store adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		repo:      repo,
		resolver:  resolver,
		history:   history,
		git:       git,
		files:     files,
		processor: processor,
		store:     store,
		ui:        ui,
	}
}

// Run executes the pipeline and returns the aggregated summary.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.RunSummary, error) {
	if err := w.ui.Start(ctx); err != nil {
		return m.RunSummary{}, err
	}

	defer w.ui.Wait(ctx)
	defer w.ui.Close(ctx)

	rng, files, fixedDiff, err := w.collectFiles(ctx, args)
	if err != nil {
		return m.RunSummary{}, err
	}

	files, err = excludeFiles(files, args.Exclude)
	if err != nil {
		return m.RunSummary{}, err
	}

	files = shardFiles(files, args.ShardIndex, args.TotalShardCount)

	w.ui.DisplayRange(ctx, rng, len(files))

	if len(files) == 0 {
		return m.RunSummary{}, nil
	}

	spill, err := pkg.NewFileSpill[m.Report]("autodoc-reports-*")
	if err != nil {
		return m.RunSummary{}, err
	}

	defer func() {
		_ = spill.Close()
	}()

	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for _, file := range files {
		file := file

		group.Go(func() error {
			report := w.processFile(groupCtx, rng, file, fixedDiff)

			w.ui.DisplayFileResult(groupCtx, report)

			return spill.Append(report)
		})
	}

	if err := group.Wait(); err != nil {
		return m.RunSummary{}, err
	}

	reports := make([]m.Report, 0, spill.Len())

	if err := spill.Range(func(_ uint64, item m.Report) error {
		reports = append(reports, item)
		return nil
	}); err != nil {
		return m.RunSummary{}, err
	}

	if err := w.store.SaveReports(reportDir(args), reports); err != nil {
		return m.RunSummary{}, err
	}

	if err := w.commitUpdates(ctx, args); err != nil {
		return m.RunSummary{}, err
	}

	if err := w.ui.DisplaySummary(ctx, reports); err != nil {
		return m.RunSummary{}, err
	}

	return m.Summarize(reports), nil
}

// processFile runs one file through the processor and stages accepted
// updates.
func (w *workflow) processFile(ctx context.Context, rng m.DiffRange, file m.Path, fixedDiff string) m.Report {
	w.ui.DisplayFileStart(ctx, file)

	fileDiff := fixedDiff

	if fileDiff == "" {
		var err error

		fileDiff, err = w.git.FileDiff(ctx, rng, file)
		if err != nil {
			return m.Report{File: file, Err: fmt.Sprintf("file diff: %v", err)}
		}
	}

	report := w.processor.Process(ctx, file, fileDiff)

	switch {
	case report.Success && report.ChangesMade:
		if err := w.git.Stage(ctx, file); err != nil {
			slog.Warn("staging updated file failed", "file", file, "error", err)
		}

	case !report.Success:
		// Leave the working tree clean after a rejected edit.
		if err := w.git.Restore(ctx, file); err != nil {
			slog.Warn("restoring rejected file failed", "file", file, "error", err)
		}
	}

	return report
}

func (w *workflow) commitUpdates(ctx context.Context, args RunArgs) error {
	if args.DryRun || !w.git.HasStagedFiles(ctx) {
		return nil
	}

	message := args.CommitMessage
	if message == "" {
		message = "docs: update docstrings"
	}

	return w.git.Commit(ctx, message)
}

// collectFiles decides what to process. Explicit paths bypass range
// resolution entirely and are treated as fully changed.
func (w *workflow) collectFiles(ctx context.Context, args RunArgs) (m.DiffRange, []m.Path, string, error) {
	if len(args.Paths) > 0 {
		var files []m.Path

		for _, root := range args.Paths {
			err := w.files.WalkPythonFiles(root, true, func(path m.Path) error {
				files = append(files, path)
				return nil
			})
			if err != nil {
				return m.DiffRange{}, nil, "", fmt.Errorf("collect files under %s: %w", root, err)
			}
		}

		return m.DiffRange{From: m.HeadRef, To: m.HeadRef}, files, fullReprocessDiff, nil
	}

	rng := w.resolver.Resolve(ctx, w.repo)

	if w.shouldProcessAllFiles(ctx) {
		slog.Info("no prior automation commit found, processing all tracked files")

		files, err := w.git.TrackedPythonFiles(ctx)
		if err != nil {
			return rng, nil, "", err
		}

		return rng, files, fullReprocessDiff, nil
	}

	files, err := w.git.ChangedFiles(ctx, rng)
	if err != nil {
		return rng, nil, "", err
	}

	return rng, files, "", nil
}

// shouldProcessAllFiles reports whether the repo has no usable processing
// baseline: no prior automation commit, and for pull requests additionally
// no resolvable base ref.
func (w *workflow) shouldProcessAllFiles(ctx context.Context) bool {
	lastBot, err := w.history.LastAutomationCommit(ctx)
	if err == nil && lastBot != nil {
		return false
	}

	if w.repo.Event != m.EventPullRequest {
		return true
	}

	if w.repo.BaseRef == "" {
		return true
	}

	for _, ref := range []string{"origin/" + w.repo.BaseRef, w.repo.BaseRef} {
		if base, err := w.history.MergeBase(ctx, ref); err == nil && base != nil {
			return false
		}
	}

	return true
}

// ChangedFiles resolves the commit window and lists the files it touches.
func (w *workflow) ChangedFiles(ctx context.Context) (m.DiffRange, []m.Path, error) {
	rng := w.resolver.Resolve(ctx, w.repo)

	files, err := w.git.ChangedFiles(ctx, rng)
	if err != nil {
		return rng, nil, err
	}

	return rng, files, nil
}

// DiffStats resolves the commit window and computes per-file diff statistics.
func (w *workflow) DiffStats(ctx context.Context) (m.DiffRange, []m.DiffStat, error) {
	rng := w.resolver.Resolve(ctx, w.repo)

	raw, err := w.git.RawDiff(ctx, rng)
	if err != nil {
		return rng, nil, err
	}

	stats, err := parseDiffStats(raw)
	if err != nil {
		return rng, nil, err
	}

	return rng, stats, nil
}

// View loads a stored report set and renders it.
func (w *workflow) View(ctx context.Context, reports m.Path) error {
	loaded, err := w.store.LoadReports(reports)
	if err != nil {
		return err
	}

	return w.ui.DisplaySummary(ctx, loaded)
}

// Merge collects shard reports into a single report set and renders it.
func (w *workflow) Merge(ctx context.Context, reports m.Path) error {
	merged, err := w.store.LoadShardReports(reports)
	if err != nil {
		return err
	}

	if err := w.store.SaveReports(reports, merged); err != nil {
		return err
	}

	return w.ui.DisplaySummary(ctx, merged)
}

// reportDir places sharded runs in shard_<index> subdirectories so Merge can
// find them.
func reportDir(args RunArgs) m.Path {
	if args.TotalShardCount > 1 {
		return m.Path(filepath.Join(string(args.Reports), fmt.Sprintf("shard_%d", args.ShardIndex)))
	}

	return args.Reports
}

// excludeFiles drops files whose path matches any of the exclude patterns.
func excludeFiles(files []m.Path, patterns []string) ([]m.Path, error) {
	if len(patterns) == 0 {
		return files, nil
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		compiled = append(compiled, re)
	}

	var kept []m.Path

	for _, f := range files {
		excluded := false

		for _, re := range compiled {
			if re.MatchString(string(f)) {
				excluded = true
				break
			}
		}

		if !excluded {
			kept = append(kept, f)
		}
	}

	return kept, nil
}

// shardFiles keeps every total-th file starting at index. A total below two
// keeps everything.
func shardFiles(files []m.Path, index, total int) []m.Path {
	if total < 2 {
		return files
	}

	var kept []m.Path

	for i, f := range files {
		if i%total == index {
			kept = append(kept, f)
		}
	}

	return kept
}
