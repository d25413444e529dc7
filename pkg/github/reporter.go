package github

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/asanalink/pkg/auth"
	"github.com/harrisonrobin/asanalink/pkg/model"
	gogithub "github.com/google/go-github/v68/github"
)

const (
	// StatusContext names the commit status posted by assert-link.
	StatusContext = "asana-link-presence"
	// StatusDescription is the fixed description of that status.
	StatusDescription = "asana link not found"

	StateSuccess = "success"
	StateError   = "error"
)

// Reporter posts commit statuses to GitHub.
type Reporter struct {
	client *gogithub.Client
}

// NewReporter creates a Reporter authenticated with a GitHub token.
func NewReporter(ctx context.Context, token string) (*Reporter, error) {
	hc, err := auth.GetClient(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return NewReporterWithClient(gogithub.NewClient(hc)), nil
}

// NewReporterWithClient wraps an existing go-github client.
func NewReporterWithClient(client *gogithub.Client) *Reporter {
	return &Reporter{client: client}
}

// CreateStatus sets the link presence status on the pull request's head commit.
func (r *Reporter) CreateStatus(ctx context.Context, pr model.PullRequest, state string) error {
	status := &gogithub.RepoStatus{
		State:       gogithub.Ptr(state),
		Context:     gogithub.Ptr(StatusContext),
		Description: gogithub.Ptr(StatusDescription),
	}
	if _, _, err := r.client.Repositories.CreateStatus(ctx, pr.Owner, pr.Repo, pr.HeadSHA, status); err != nil {
		return fmt.Errorf("failed to create %s status on %s/%s@%s: %w", StatusContext, pr.Owner, pr.Repo, pr.HeadSHA, err)
	}
	return nil
}
