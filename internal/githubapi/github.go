// Package githubapi is a thin wrapper over the GitHub REST API: repository
// creation, branch protection and credential discovery. It is consumed by
// the create pipeline as a black box.
package githubapi

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/nordstat/prosjekt/internal/errs"
)

// RepoTopic is attached to every repository created by this tool.
const RepoTopic = "prosjekt"

// repoNamePattern accepts ASCII letters, digits, hyphens and underscores.
var repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// ValidRepoName reports whether name is suitable for a git repository:
// matching characters and at least 3 long.
func ValidRepoName(name string) bool {
	return len(name) >= 3 && repoNamePattern.MatchString(name)
}

// Client wraps an authenticated GitHub API client scoped to one
// organization.
type Client struct {
	gh  *github.Client
	org string
}

// NewClient builds a Client from a personal access token.
func NewClient(ctx context.Context, token, org string) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		gh:  github.NewClient(oauth2.NewClient(ctx, source)),
		org: org,
	}
}

// RepoExists reports whether a repository with the given name already exists
// in the organization.
func (c *Client) RepoExists(ctx context.Context, name string) (bool, error) {
	_, resp, err := c.gh.Repositories.Get(ctx, c.org, name)
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == 404 {
		return false, nil
	}
	if resp != nil && resp.StatusCode == 401 {
		return false, errs.NewValidation("github-credentials",
			"The provided GitHub credentials are invalid. Please check that your personal access token is not expired.")
	}
	return false, errs.NewNetwork("github-get-repo", "Could not query GitHub for the repository.", err)
}

// CreateRepo creates the repository in the organization and returns its
// clone URL.
func (c *Client) CreateRepo(ctx context.Context, name, visibility, description string) (string, error) {
	_, _, err := c.gh.Repositories.Create(ctx, c.org, &github.Repository{
		Name:        github.String(name),
		Description: github.String(description),
		Visibility:  github.String(visibility),
		AutoInit:    github.Bool(false),
	})
	if err != nil {
		return "", errs.NewNetwork("github-create-repo",
			"Error: Could not create the repository on GitHub. Check your credentials.", err)
	}

	repo, _, err := c.gh.Repositories.Get(ctx, c.org, name)
	if err != nil {
		return "", errs.NewNetwork("github-get-repo", "Could not fetch the newly created repository.", err)
	}

	if _, _, err := c.gh.Repositories.ReplaceAllTopics(ctx, c.org, name, []string{RepoTopic}); err != nil {
		return "", errs.NewNetwork("github-topics", "Could not tag the repository.", err)
	}

	return repo.GetCloneURL(), nil
}

// SetBranchProtection configures the default protection on main: pull
// requests require one approving review, and stale reviews are dismissed.
func (c *Client) SetBranchProtection(ctx context.Context, name string) error {
	_, _, err := c.gh.Repositories.UpdateBranchProtection(ctx, c.org, name, "main", &github.ProtectionRequest{
		RequiredPullRequestReviews: &github.PullRequestReviewsEnforcementRequest{
			RequiredApprovingReviewCount: 1,
			DismissStaleReviews:          true,
		},
	})
	if err != nil {
		return errs.NewNetwork("github-branch-protection",
			fmt.Sprintf("Could not set branch protection rules on %s/%s.", c.org, name), err)
	}
	return nil
}

// Login returns the authenticated user's login name.
func (c *Client) Login(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", errs.NewNetwork("github-user", "Could not resolve the authenticated GitHub user.", err)
	}
	return user.GetLogin(), nil
}
