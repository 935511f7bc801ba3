package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	m "autodoc.dev/pkg/autodoc/internal/model"
)

// GitCommandTimeout bounds every git invocation. A timeout is reported as a
// failed query, never as a hang.
const GitCommandTimeout = 30 * time.Second

// ErrGitCommand is returned when a git invocation exits non-zero or times out.
var ErrGitCommand = errors.New("git command failed")

// Automation identity used for commits this tool creates. The author-pattern
// list exists because --author matching quotes brackets differently across
// git versions; patterns are tried in order and the first non-empty result
// wins.
const (
	AutomationAuthorName  = "github-actions[bot]"
	AutomationAuthorEmail = "41898282+github-actions[bot]@users.noreply.github.com"
)

var automationAuthorPatterns = []string{
	`github-actions\[bot\]`,
	"github-actions",
	AutomationAuthorEmail,
}

// GitHistoryAdapter answers read-only history questions. Implementations
// must not mutate the repository.
type GitHistoryAdapter interface {
	// LastAutomationCommit finds the most recent commit authored by the
	// automation identity. Returns nil when no such commit exists.
	LastAutomationCommit(ctx context.Context) (*m.CommitRef, error)

	// MergeBase finds the merge-base of HEAD and targetRef.
	MergeBase(ctx context.Context, targetRef string) (*m.CommitRef, error)

	// BoundaryCommit finds the oldest boundary marker of
	// HEAD...origin/<baseRef>^. Returns nil when none is found.
	BoundaryCommit(ctx context.Context, baseRef string) (*m.CommitRef, error)

	// OldestAvailableCommit finds the oldest commit reachable in the
	// (possibly shallow) clone, falling back to HEAD itself.
	OldestAvailableCommit(ctx context.Context) (m.CommitRef, error)

	// CountCommitsToHead counts commits between sha (exclusive) and HEAD
	// (inclusive). Returns MaxCommitDistance when the count fails.
	CountCommitsToHead(ctx context.Context, sha string) int
}

// GitWorktreeAdapter performs the file-level git operations the pipeline
// needs: diff enumeration, staging, and commit creation.
type GitWorktreeAdapter interface {
	ChangedFiles(ctx context.Context, rng m.DiffRange) ([]m.Path, error)
	TrackedPythonFiles(ctx context.Context) ([]m.Path, error)
	FileDiff(ctx context.Context, rng m.DiffRange, path m.Path) (string, error)
	RawDiff(ctx context.Context, rng m.DiffRange) (string, error)
	Stage(ctx context.Context, path m.Path) error
	Restore(ctx context.Context, path m.Path) error
	Commit(ctx context.Context, message string) error
	HasStagedFiles(ctx context.Context) bool
}

// LocalGitAdapter implements both git interfaces by shelling out to the git
// CLI in a fixed working directory.
type LocalGitAdapter struct {
	workDir string
	timeout time.Duration
}

// NewLocalGitAdapter constructs a LocalGitAdapter rooted at workDir. An empty
// workDir means the current directory.
func NewLocalGitAdapter(workDir string) *LocalGitAdapter {
	return &LocalGitAdapter{
		workDir: workDir,
		timeout: GitCommandTimeout,
	}
}

// run executes git with the given arguments and returns exit status, stdout
// and stderr. A non-zero exit or a timeout yields an error wrapping
// ErrGitCommand.
func (a *LocalGitAdapter) run(ctx context.Context, args ...string) (int, string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = a.workDir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exit := -1
	if cmd.ProcessState != nil {
		exit = cmd.ProcessState.ExitCode()
	}

	slog.Debug("git command completed",
		"args", strings.Join(args, " "),
		"exit", exit,
		"stdout_len", stdout.Len(),
		"stderr_len", stderr.Len())

	if ctx.Err() != nil {
		return -1, stdout.String(), stderr.String(),
			fmt.Errorf("%w: git %s timed out after %s", ErrGitCommand, args[0], a.timeout)
	}

	if err != nil {
		return exit, stdout.String(), stderr.String(),
			fmt.Errorf("%w: git %s: %s", ErrGitCommand, args[0], strings.TrimSpace(stderr.String()))
	}

	return 0, stdout.String(), stderr.String(), nil
}

// firstLine returns the first non-empty line of command output.
func firstLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}

	return ""
}

// LastAutomationCommit tries each author pattern until one matches.
func (a *LocalGitAdapter) LastAutomationCommit(ctx context.Context) (*m.CommitRef, error) {
	for _, pattern := range automationAuthorPatterns {
		_, stdout, _, err := a.run(ctx, "log", "--author="+pattern, "--format=%H", "-1")
		if err != nil {
			continue
		}

		sha := firstLine(stdout)
		if sha == "" {
			continue
		}

		return &m.CommitRef{SHA: sha, DistanceToHead: a.CountCommitsToHead(ctx, sha)}, nil
	}

	return nil, nil
}

// MergeBase finds the merge-base of HEAD and targetRef.
func (a *LocalGitAdapter) MergeBase(ctx context.Context, targetRef string) (*m.CommitRef, error) {
	_, stdout, _, err := a.run(ctx, "merge-base", "HEAD", targetRef)
	if err != nil {
		return nil, err
	}

	sha := firstLine(stdout)
	if sha == "" {
		return nil, fmt.Errorf("%w: merge-base with %s returned no commit", ErrGitCommand, targetRef)
	}

	return &m.CommitRef{SHA: sha, DistanceToHead: a.CountCommitsToHead(ctx, sha)}, nil
}

// BoundaryCommit scans rev-list --boundary output for the first boundary
// marker, the commit just outside the symmetric difference with the target
// branch's parent.
func (a *LocalGitAdapter) BoundaryCommit(ctx context.Context, baseRef string) (*m.CommitRef, error) {
	_, stdout, _, err := a.run(ctx, "rev-list", "--boundary", "HEAD...origin/"+baseRef+"^")
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") {
			sha := line[1:]
			return &m.CommitRef{SHA: sha, DistanceToHead: a.CountCommitsToHead(ctx, sha)}, nil
		}
	}

	return nil, nil
}

// OldestAvailableCommit walks the fallback chain: root commit, shallow-clone
// oldest, then HEAD itself.
func (a *LocalGitAdapter) OldestAvailableCommit(ctx context.Context) (m.CommitRef, error) {
	if _, stdout, _, err := a.run(ctx, "rev-list", "--max-parents=0", "HEAD"); err == nil {
		if sha := firstLine(stdout); sha != "" {
			return m.CommitRef{SHA: sha, DistanceToHead: a.CountCommitsToHead(ctx, sha)}, nil
		}
	}

	if _, stdout, _, err := a.run(ctx, "rev-list", "--max-count=1", "--reverse", "HEAD"); err == nil {
		if sha := firstLine(stdout); sha != "" {
			return m.CommitRef{SHA: sha, DistanceToHead: a.CountCommitsToHead(ctx, sha)}, nil
		}
	}

	_, stdout, _, err := a.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return m.CommitRef{}, err
	}

	return m.CommitRef{SHA: firstLine(stdout), DistanceToHead: 0}, nil
}

// CountCommitsToHead counts sha..HEAD, degrading to the sentinel distance on
// any failure so the commit loses every smaller-distance comparison.
func (a *LocalGitAdapter) CountCommitsToHead(ctx context.Context, sha string) int {
	_, stdout, _, err := a.run(ctx, "rev-list", "--count", sha+"..HEAD")
	if err != nil {
		return m.MaxCommitDistance
	}

	count, err := strconv.Atoi(firstLine(stdout))
	if err != nil {
		return m.MaxCommitDistance
	}

	return count
}

// ChangedFiles lists Python files changed in the range that still exist in
// the working tree.
func (a *LocalGitAdapter) ChangedFiles(ctx context.Context, rng m.DiffRange) ([]m.Path, error) {
	if !rng.HasDiff() {
		return nil, nil
	}

	_, stdout, _, err := a.run(ctx, "diff", "--name-only", rng.From, rng.To)
	if err != nil {
		return nil, err
	}

	return a.existingPythonFiles(stdout), nil
}

// TrackedPythonFiles lists every tracked Python file in the repository.
func (a *LocalGitAdapter) TrackedPythonFiles(ctx context.Context) ([]m.Path, error) {
	_, stdout, _, err := a.run(ctx, "ls-files", "*"+m.PythonFileExtension)
	if err != nil {
		return nil, err
	}

	return a.existingPythonFiles(stdout), nil
}

func (a *LocalGitAdapter) existingPythonFiles(out string) []m.Path {
	var files []m.Path

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasSuffix(line, m.PythonFileExtension) {
			continue
		}

		full := line
		if a.workDir != "" {
			full = a.workDir + string(os.PathSeparator) + line
		}

		if _, err := os.Stat(full); err != nil {
			continue
		}

		files = append(files, m.Path(line))
	}

	return files
}

// FileDiff returns the diff of one file over the range.
func (a *LocalGitAdapter) FileDiff(ctx context.Context, rng m.DiffRange, path m.Path) (string, error) {
	if !rng.HasDiff() {
		return "", nil
	}

	_, stdout, _, err := a.run(ctx, "diff", rng.From, rng.To, "--", string(path))
	if err != nil {
		return "", err
	}

	return stdout, nil
}

// RawDiff returns the full diff of the range.
func (a *LocalGitAdapter) RawDiff(ctx context.Context, rng m.DiffRange) (string, error) {
	if !rng.HasDiff() {
		return "", nil
	}

	_, stdout, _, err := a.run(ctx, "diff", rng.From, rng.To)
	if err != nil {
		return "", err
	}

	return stdout, nil
}

// Stage adds a single file to the index.
func (a *LocalGitAdapter) Stage(ctx context.Context, path m.Path) error {
	_, _, _, err := a.run(ctx, "add", string(path))
	return err
}

// Restore resets a file to its HEAD state.
func (a *LocalGitAdapter) Restore(ctx context.Context, path m.Path) error {
	_, _, _, err := a.run(ctx, "restore", string(path))
	return err
}

// Commit creates a commit of the staged files under the automation identity.
// A [skip ci] trailer prevents the commit from retriggering the pipeline.
func (a *LocalGitAdapter) Commit(ctx context.Context, message string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	full := message + "\n\n[skip ci] auto-generated by autodoc"

	cmd := exec.CommandContext(ctx, "git", "commit", "-m", full)
	cmd.Dir = a.workDir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+AutomationAuthorName,
		"GIT_AUTHOR_EMAIL="+AutomationAuthorEmail,
		"GIT_COMMITTER_NAME="+AutomationAuthorName,
		"GIT_COMMITTER_EMAIL="+AutomationAuthorEmail,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: git commit: %s", ErrGitCommand, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// HasStagedFiles reports whether anything is staged for commit.
func (a *LocalGitAdapter) HasStagedFiles(ctx context.Context) bool {
	code, stdout, _, err := a.run(ctx, "diff", "--staged", "--name-only")
	if err != nil || code != 0 {
		return false
	}

	return strings.TrimSpace(stdout) != ""
}
