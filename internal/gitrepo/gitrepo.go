// Package gitrepo bootstraps the local git repository for a newly created
// project.
package gitrepo

import (
	"fmt"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/nordstat/prosjekt/internal/errs"
)

// InitAndCommit initializes a repository at dir on the main branch, stages
// everything and records the initial commit.
func InitAndCommit(dir, authorName, authorEmail string) (*git.Repository, error) {
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		return nil, errs.NewIO("git-init", "Could not initialize the local git repository.", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, errs.NewIO("git-init", "Could not open the repository worktree.", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, errs.NewIO("git-add", "Could not stage the project files.", err)
	}

	_, err = worktree.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, errs.NewIO("git-commit", "Could not record the initial commit.", err)
	}

	return repo, nil
}

// PushInitial pushes main to the remote at credentialURL, then leaves the
// repository's origin pointing at restoreURL so the embedded credential
// never persists in the project's configuration.
func PushInitial(repo *git.Repository, credentialURL, restoreURL string) error {
	remotes, err := repo.Remotes()
	if err != nil {
		return errs.NewIO("git-remote", "Could not list the repository remotes.", err)
	}
	for _, remote := range remotes {
		if err := repo.DeleteRemote(remote.Config().Name); err != nil {
			return errs.NewIO("git-remote", "Could not remove an existing remote.", err)
		}
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{credentialURL},
	}); err != nil {
		return errs.NewIO("git-remote", "Could not configure the temporary remote.", err)
	}

	pushErr := repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"refs/heads/main:refs/heads/main"},
	})

	// Restore origin regardless of the push outcome.
	if err := repo.DeleteRemote("origin"); err != nil {
		return errs.NewIO("git-remote", "Could not remove the temporary remote.", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{restoreURL},
	}); err != nil {
		return errs.NewIO("git-remote", "Could not restore the origin remote.", err)
	}

	if pushErr != nil {
		return errs.NewNetwork("git-push", "Could not push the initial commit to GitHub.", pushErr)
	}

	return nil
}

// MangleURL embeds name (a username or credential) into url's authority:
// https://github.com/... becomes https://name@github.com/...
func MangleURL(url, name string) string {
	idx := strings.Index(url, "//")
	if idx < 0 {
		return fmt.Sprintf("%s@%s", name, url)
	}
	split := idx + 2
	return url[:split] + name + "@" + url[split:]
}
