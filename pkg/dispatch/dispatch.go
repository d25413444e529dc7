// Package dispatch runs one Asana synchronization action against the tasks
// linked from a pull request.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harrisonrobin/asanalink/pkg/asana"
	"github.com/harrisonrobin/asanalink/pkg/config"
	"github.com/harrisonrobin/asanalink/pkg/extract"
	"github.com/harrisonrobin/asanalink/pkg/model"
)

var (
	ErrUnlinked            = errors.New("this pull request is not linked to any asana task")
	ErrUnknownAction       = errors.New("unexpected action")
	ErrProjectNotFound     = errors.New("asana project not found")
	ErrSectionNotFound     = errors.New("asana section not found")
	ErrStatusFieldNotFound = errors.New(`asana custom field "Status" not found`)
	ErrStatusNotFound      = errors.New("asana status does not exist")
)

// TaskAPI is the subset of the Asana API the actions use.
type TaskAPI interface {
	GetTask(ctx context.Context, taskGID string) (*asana.Task, error)
	ListSections(ctx context.Context, projectGID string) ([]asana.Section, error)
	AddTaskToSection(ctx context.Context, sectionGID, taskGID string) error
	ListStories(ctx context.Context, taskGID string, limit int) ([]asana.Story, error)
	AddComment(ctx context.Context, taskGID string, comment asana.NewComment) (*asana.Story, error)
	DeleteStory(ctx context.Context, storyGID string) error
	UpdateTask(ctx context.Context, taskGID string, update asana.TaskUpdate) error
}

// StatusReporter posts the link presence status of a pull request.
type StatusReporter interface {
	CreateStatus(ctx context.Context, pr model.PullRequest, state string) error
}

// TaskClientFactory returns an authorized TaskAPI.
type TaskClientFactory func(ctx context.Context) (TaskAPI, error)

// ReporterFactory returns a StatusReporter. It is only called by assert-link.
type ReporterFactory func(ctx context.Context) (StatusReporter, error)

// Result describes what an action did.
type Result struct {
	Action string
	// TaskIDs are the task references found in the pull request body.
	TaskIDs []string
	// State is the commit status posted by assert-link.
	State string
	// Comments are the comments created by add-comment.
	Comments []asana.Story
	// RemovedCommentIDs are the stories deleted by remove-comment.
	RemovedCommentIDs []string
	// UpdatedTaskIDs are the tasks changed by complete-task, move-section and update-status.
	UpdatedTaskIDs []string
}

// Dispatcher selects and runs the configured action.
type Dispatcher struct {
	cfg      *config.Config
	pr       model.PullRequest
	connect  TaskClientFactory
	reporter ReporterFactory
	log      *slog.Logger
}

// New creates a Dispatcher for one invocation.
func New(cfg *config.Config, pr model.PullRequest, connect TaskClientFactory, reporter ReporterFactory, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{cfg: cfg, pr: pr, connect: connect, reporter: reporter, log: logger}
}

// Run extracts the linked tasks and runs the action over them. No remote call
// is made when the action is unknown or no task is linked.
//
// The returned Result is non-nil whenever the action started, including when
// it fails part way, so callers can report what was done.
func (d *Dispatcher) Run(ctx context.Context) (*Result, error) {
	run, ok := d.handlers()[d.cfg.Action]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, d.cfg.Action)
	}

	ex, err := extract.New(d.cfg.TriggerPhrase, d.log)
	if err != nil {
		return nil, err
	}
	ids := ex.TaskIDs(d.pr.Body)
	if len(ids) == 0 {
		return nil, ErrUnlinked
	}
	d.log.Info(fmt.Sprintf("found %d taskIds: %s", len(ids), strings.Join(ids, ",")))

	tasks, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Action: d.cfg.Action, TaskIDs: ids}
	d.log.Info("calling " + d.cfg.Action)
	return res, run(ctx, tasks, res)
}

type handler func(ctx context.Context, tasks TaskAPI, res *Result) error

func (d *Dispatcher) handlers() map[string]handler {
	return map[string]handler{
		config.ActionAssertLink:    d.assertLink,
		config.ActionAddComment:    d.addComment,
		config.ActionRemoveComment: d.removeComment,
		config.ActionCompleteTask:  d.completeTask,
		config.ActionMoveSection:   d.moveSection,
		config.ActionUpdateStatus:  d.updateStatus,
	}
}

// LinkState is the commit status state for a pull request with found task links.
func LinkState(linkRequired bool, found int) string {
	if !linkRequired || found > 0 {
		return "success"
	}
	return "error"
}

func (d *Dispatcher) assertLink(ctx context.Context, _ TaskAPI, res *Result) error {
	res.State = LinkState(d.cfg.LinkRequired, len(res.TaskIDs))
	if d.reporter == nil {
		return errors.New("no status reporter configured")
	}
	reporter, err := d.reporter(ctx)
	if err != nil {
		return err
	}
	d.log.Info(fmt.Sprintf("setting %s for %s", res.State, d.pr.HeadSHA))
	return reporter.CreateStatus(ctx, d.pr, res.State)
}

func (d *Dispatcher) completeTask(ctx context.Context, tasks TaskAPI, res *Result) error {
	word := "incomplete"
	if d.cfg.IsComplete {
		word = "complete"
	}
	for _, id := range res.TaskIDs {
		d.log.Info(fmt.Sprintf("marking task %s %s", id, word))
		if err := tasks.UpdateTask(ctx, id, asana.CompletedUpdate(d.cfg.IsComplete)); err != nil {
			d.log.Error(err.Error())
			continue
		}
		res.UpdatedTaskIDs = append(res.UpdatedTaskIDs, id)
	}
	return nil
}
