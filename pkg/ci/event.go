// Package ci turns the GitHub Actions runtime context into the pull request
// context the actions run against.
package ci

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/asanalink/pkg/model"
	"github.com/sethvargo/go-githubactions"
)

// ErrNotPullRequest is returned when the triggering event carries no pull request.
var ErrNotPullRequest = errors.New("event payload has no pull_request")

// PullRequest reads the pull request body, number and head commit from the
// event payload, and the repository from GITHUB_REPOSITORY.
func PullRequest(gh *githubactions.GitHubContext) (model.PullRequest, error) {
	var pr model.PullRequest
	if gh == nil {
		return pr, ErrNotPullRequest
	}

	raw, ok := gh.Event["pull_request"].(map[string]any)
	if !ok {
		return pr, fmt.Errorf("%w (event %q)", ErrNotPullRequest, gh.EventName)
	}
	pr.Body, _ = raw["body"].(string)
	if n, ok := raw["number"].(float64); ok {
		pr.Number = int(n)
	}
	if head, ok := raw["head"].(map[string]any); ok {
		pr.HeadSHA, _ = head["sha"].(string)
	}

	pr.Owner, pr.Repo = repository(gh)
	return pr, nil
}

func repository(gh *githubactions.GitHubContext) (string, string) {
	if owner, repo, ok := strings.Cut(gh.Repository, "/"); ok {
		return owner, repo
	}
	repo, _ := gh.Event["repository"].(map[string]any)
	name, _ := repo["name"].(string)
	owner, _ := repo["owner"].(map[string]any)
	login, _ := owner["login"].(string)
	return login, name
}
