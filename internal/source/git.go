package source

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// GitRunner shells out to the git binary for clone operations.
type GitRunner struct{}

// NewGitRunner creates a GitRunner.
func NewGitRunner() *GitRunner {
	return &GitRunner{}
}

// Clone performs a shallow clone of url into dest. When branch is
// non-empty the clone is pinned to that branch.
func (g *GitRunner) Clone(ctx context.Context, url, branch, dest string) error {
	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, dest)

	log.Info().Str("url", url).Str("branch", branch).Msg("cloning repository")
	return g.run(ctx, args...)
}

func (g *GitRunner) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %s", args[0], string(out))
	}
	return nil
}
