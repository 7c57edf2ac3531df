package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloner_Clone(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "contracts", "pengolin")

	var got []string
	cloner := NewCloner().WithRunner(func(_ context.Context, args ...string) error {
		got = args
		return nil
	})

	err := cloner.Clone(context.Background(), dest, Repository{URL: "https://example.com/pengolin.git", Ref: "main"})
	require.NoError(t, err)
	assert.Equal(t, []string{"clone", "--depth", "1", "--branch", "main", "https://example.com/pengolin.git", dest}, got)
	assert.DirExists(t, filepath.Dir(dest))
}

func TestCloner_SkipsExistingCheckout(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dest, ".git"), 0755))

	cloner := NewCloner().WithRunner(func(context.Context, ...string) error {
		t.Fatal("git must not run for an existing checkout")
		return nil
	})

	require.NoError(t, cloner.Clone(context.Background(), dest, Repository{URL: "u", Ref: "main"}))
}

func TestCloner_PropagatesFailure(t *testing.T) {
	cloner := NewCloner().WithRunner(func(context.Context, ...string) error {
		return errors.New("exit status 128")
	})

	err := cloner.Clone(context.Background(), filepath.Join(t.TempDir(), "c"), Repository{URL: "https://example.com/x.git", Ref: "v1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 128")
}
