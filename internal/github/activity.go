package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"omnirep/internal/domain"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// NormalizeUsername trims and lowercases u and checks it is a valid login.
func NormalizeUsername(u string) (string, error) {
	u = strings.ToLower(strings.TrimSpace(u))
	if u == "" {
		return "", ErrUsernameRequired
	}
	if !usernamePattern.MatchString(u) {
		return "", ErrInvalidUsername
	}
	return u, nil
}

// MockActivity is the demo GitHub profile.
var MockActivity = domain.GitHubActivity{
	Commits:       1847,
	PullRequests:  156,
	Issues:        89,
	Contributions: 2134,
	Repositories:  47,
	Stars:         892,
	Followers:     234,
	AccountAge:    1247,
}

// EstimateActivity derives activity counts from public profile data.
// GitHub has no public contributions API, so commits and pull requests are
// estimated from repository popularity.
func EstimateActivity(u *User, repos []Repo, now time.Time) domain.GitHubActivity {
	var commits, prs, issues, stars int
	for _, r := range repos {
		commits += max(1, r.StargazersCount)
		if r.ForksCount > 0 || r.StargazersCount > 5 {
			prs += ceilDiv(r.StargazersCount, 10)
		}
		issues += r.OpenIssuesCount
		stars += r.StargazersCount
	}

	accountAge := 0
	if !u.CreatedAt.IsZero() {
		accountAge = int(now.Sub(u.CreatedAt) / (24 * time.Hour))
	}

	return domain.GitHubActivity{
		Commits:       commits,
		PullRequests:  prs,
		Issues:        issues,
		Contributions: commits,
		Repositories:  u.PublicRepos,
		Stars:         stars,
		Followers:     u.Followers,
		AccountAge:    accountAge,
	}
}

// Activity fetches the profile and first page of repositories and estimates activity.
// Returns ErrUserNotFound if the account does not exist.
func (c *Client) Activity(ctx context.Context, username string, now time.Time) (domain.GitHubActivity, error) {
	u, err := c.User(ctx, username)
	if err != nil {
		return domain.GitHubActivity{}, fmt.Errorf("fetch user %s: %w", username, err)
	}

	repos, err := c.Repos(ctx, username, 1)
	if err != nil {
		return domain.GitHubActivity{}, fmt.Errorf("fetch repos for %s: %w", username, err)
	}

	return EstimateActivity(u, repos, now), nil
}

// IsUserNotFound reports whether err means the account does not exist.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
