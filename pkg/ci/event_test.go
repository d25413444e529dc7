package ci

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-githubactions"
)

func TestPullRequest(t *testing.T) {
	gh := &githubactions.GitHubContext{
		EventName:  "pull_request",
		Repository: "octo/widgets",
		Event: map[string]any{
			"pull_request": map[string]any{
				"number": float64(42),
				"body":   "Fixes https://app.asana.com/0/123/456",
				"head":   map[string]any{"sha": "abc123"},
			},
		},
	}

	pr, err := PullRequest(gh)
	if err != nil {
		t.Fatalf("PullRequest failed: %v", err)
	}
	if pr.Number != 42 || pr.HeadSHA != "abc123" {
		t.Errorf("Expected #42 at abc123, got #%d at %s", pr.Number, pr.HeadSHA)
	}
	if pr.Body != "Fixes https://app.asana.com/0/123/456" {
		t.Errorf("unexpected body '%s'", pr.Body)
	}
	if pr.Owner != "octo" || pr.Repo != "widgets" {
		t.Errorf("Expected octo/widgets, got %s/%s", pr.Owner, pr.Repo)
	}
}

func TestPullRequestNullBody(t *testing.T) {
	gh := &githubactions.GitHubContext{
		Event: map[string]any{
			"pull_request": map[string]any{"body": nil, "head": map[string]any{"sha": "abc"}},
			"repository": map[string]any{
				"name":  "widgets",
				"owner": map[string]any{"login": "octo"},
			},
		},
	}

	pr, err := PullRequest(gh)
	if err != nil {
		t.Fatalf("PullRequest failed: %v", err)
	}
	if pr.Body != "" {
		t.Errorf("Expected empty body, got '%s'", pr.Body)
	}
	if pr.Owner != "octo" || pr.Repo != "widgets" {
		t.Errorf("Expected repository from payload, got %s/%s", pr.Owner, pr.Repo)
	}
}

func TestPullRequestMissing(t *testing.T) {
	gh := &githubactions.GitHubContext{EventName: "push", Event: map[string]any{}}
	if _, err := PullRequest(gh); !errors.Is(err, ErrNotPullRequest) {
		t.Errorf("Expected ErrNotPullRequest, got %v", err)
	}
	if _, err := PullRequest(nil); !errors.Is(err, ErrNotPullRequest) {
		t.Errorf("Expected ErrNotPullRequest for nil context, got %v", err)
	}
}

func TestPullRequestFromEventFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	payload := `{"pull_request": {"number": 7, "body": "Closes https://app.asana.com/0/1/2", "head": {"sha": "def456"}}}`
	if err := os.WriteFile(path, []byte(payload), 0600); err != nil {
		t.Fatal(err)
	}
	env := map[string]string{
		"GITHUB_EVENT_PATH": path,
		"GITHUB_EVENT_NAME": "pull_request",
		"GITHUB_REPOSITORY": "octo/widgets",
	}
	action := githubactions.New(githubactions.WithGetenv(func(k string) string { return env[k] }))

	gh, err := action.Context()
	if err != nil {
		t.Fatalf("Context failed: %v", err)
	}
	pr, err := PullRequest(gh)
	if err != nil {
		t.Fatalf("PullRequest failed: %v", err)
	}
	if pr.Number != 7 || pr.HeadSHA != "def456" || pr.Owner != "octo" {
		t.Errorf("unexpected pull request %+v", pr)
	}
}
