package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/harrisonrobin/asanalink/pkg/asana"
	"github.com/harrisonrobin/asanalink/pkg/ci"
	"github.com/harrisonrobin/asanalink/pkg/config"
	"github.com/harrisonrobin/asanalink/pkg/dispatch"
	"github.com/harrisonrobin/asanalink/pkg/github"
	"github.com/harrisonrobin/asanalink/pkg/logging"
	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	action := githubactions.New()
	if err := newRootCmd(action).ExecuteContext(context.Background()); err != nil {
		// Reported as a workflow error by the command.
		os.Exit(1)
	}
}

func newRootCmd(action *githubactions.Action) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "asanalink",
		Short: "Link pull requests to Asana tasks and keep the tasks in sync",
		Long: `asanalink finds Asana task links in the body of the pull request that
triggered the workflow and runs one action against the linked tasks:
assert-link, add-comment, remove-comment, complete-task, move-section or
update-status.

Inputs are read from the INPUT_* variables set by the Actions runner, or from
flags of the same name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(action, logging.LevelFromEnv(os.Getenv))
			if err := run(cmd.Context(), action, v, logger); err != nil {
				logger.Error(err.Error())
				return err
			}
			return nil
		},
	}
	if err := config.Bind(v, cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

func run(ctx context.Context, action *githubactions.Action, v *viper.Viper, logger *slog.Logger) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	action.AddMask(cfg.AsanaPAT)
	if cfg.GitHubToken != "" {
		action.AddMask(cfg.GitHubToken)
	}

	gh, err := action.Context()
	if err != nil {
		return fmt.Errorf("failed to read the workflow context: %w", err)
	}
	pr, err := ci.PullRequest(gh)
	if err != nil {
		return err
	}
	logger.Debug("pull request", "number", pr.Number, "sha", pr.HeadSHA, "repository", pr.Owner+"/"+pr.Repo)

	connect := func(ctx context.Context) (dispatch.TaskAPI, error) {
		client, err := asana.NewClient(ctx, cfg.AsanaPAT)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	reporter := func(ctx context.Context) (dispatch.StatusReporter, error) {
		r, err := github.NewReporter(ctx, cfg.GitHubToken)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	res, err := dispatch.New(cfg, pr, connect, reporter, logger).Run(ctx)
	if res != nil {
		setOutputs(action, res)
	}
	return err
}

func setOutputs(action *githubactions.Action, res *dispatch.Result) {
	action.SetOutput("task-ids", strings.Join(res.TaskIDs, ","))
	switch res.Action {
	case config.ActionAssertLink:
		action.SetOutput("status-state", res.State)
	case config.ActionAddComment:
		ids := make([]string, 0, len(res.Comments))
		for _, c := range res.Comments {
			ids = append(ids, c.GID)
		}
		action.SetOutput("comment-ids", strings.Join(ids, ","))
	case config.ActionRemoveComment:
		action.SetOutput("removed-comment-ids", strings.Join(res.RemovedCommentIDs, ","))
	default:
		action.SetOutput("updated-task-ids", strings.Join(res.UpdatedTaskIDs, ","))
	}
}
