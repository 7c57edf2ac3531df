package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

type (
	// Repository is a git repository checked out at Ref (branch or tag).
	Repository struct {
		URL string
		Ref string
	}

	// Runner runs git with args.
	Runner func(ctx context.Context, args ...string) error

	Cloner struct {
		run    Runner
		logger *slog.Logger
	}
)

func NewCloner() *Cloner {
	return &Cloner{
		run:    runGit,
		logger: logger.Named("git_cloner"),
	}
}

// WithRunner replaces the git invocation.
func (c *Cloner) WithRunner(run Runner) *Cloner {
	c.run = run
	return c
}

// Clone makes a shallow clone of repo into dest. An existing checkout is
// left untouched.
func (c *Cloner) Clone(ctx context.Context, dest string, repo Repository) error {
	log := c.logger.With("url", repo.URL).With("ref", repo.Ref).With("path", dest)

	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		log.Info("repository already cloned, skipping")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	log.Info("cloning repository")
	if err := c.run(ctx, "clone", "--depth", "1", "--branch", repo.Ref, repo.URL, dest); err != nil {
		return fmt.Errorf("git clone of %s failed: %w", repo.URL, err)
	}

	log.Info("repository cloned successfully")
	return nil
}

func runGit(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
