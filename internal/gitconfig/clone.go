package gitconfig

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/nordstat/prosjekt/internal/errs"
)

// templateProjectSubdir is where the template keeps the per-project files
// before substitution.
const templateProjectSubdir = "{{cookiecutter.project_name}}"

// templateClone is a scoped ephemeral checkout of the template repository.
// Close always removes the directory, normalizing permissions first so
// read-only objects left by the clone cannot block deletion.
type templateClone struct {
	dir string
}

// cloneTemplate clones templateURL into a temporary directory and checks out
// ref when given.
func cloneTemplate(ctx context.Context, templateURL, ref string) (*templateClone, error) {
	dir, err := os.MkdirTemp("", "prosjekt-template-")
	if err != nil {
		return nil, errs.NewIO("template-clone-dir", "Could not create a temporary directory for the template.", err)
	}

	clone := &templateClone{dir: dir}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: templateURL})
	if err != nil {
		clone.Close()
		return nil, errs.NewNetwork("template-clone",
			fmt.Sprintf("Could not clone the template repository %s.", templateURL), err)
	}

	if ref != "" {
		if err := checkout(repo, ref); err != nil {
			clone.Close()
			return nil, errs.NewNetwork("template-checkout",
				fmt.Sprintf("Could not check out template reference %q.", ref), err)
		}
	}

	return clone, nil
}

// checkout resolves ref (branch, tag or commit hash) and moves the worktree
// to it.
func checkout(repo *git.Repository, ref string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}

	return worktree.Checkout(&git.CheckoutOptions{Hash: *hash})
}

// ProjectFilePath returns the template's copy of name inside the clone.
func (c *templateClone) ProjectFilePath(name string) string {
	return filepath.Join(c.dir, templateProjectSubdir, name)
}

// Close removes the clone directory.
func (c *templateClone) Close() error {
	// Clones can leave read-only pack files behind; clear the bits so
	// removal works everywhere.
	_ = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = os.Chmod(path, 0o755)
		} else {
			_ = os.Chmod(path, 0o644)
		}
		return nil
	})

	return os.RemoveAll(c.dir)
}
