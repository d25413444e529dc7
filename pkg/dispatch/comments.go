package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrisonrobin/asanalink/pkg/asana"
)

// FindComment returns the first of a task's stories whose text contains
// marker, searching at most asana.StoryFetchLimit stories. It returns nil
// when none match.
func FindComment(ctx context.Context, tasks TaskAPI, taskID, marker string) (*asana.Story, error) {
	stories, err := tasks.ListStories(ctx, taskID, asana.StoryFetchLimit)
	if err != nil {
		return nil, err
	}
	for i := range stories {
		if strings.Contains(stories[i].Text, marker) {
			return &stories[i], nil
		}
	}
	return nil, nil
}

// CommentText appends the marker on its own line.
func CommentText(text, marker string) string {
	if marker == "" {
		return text
	}
	return text + "\n" + marker + "\n"
}

func (d *Dispatcher) addComment(ctx context.Context, tasks TaskAPI, res *Result) error {
	marker := d.cfg.CommentID
	comment := asana.NewComment{
		Text:     CommentText(d.cfg.Text, marker),
		IsPinned: d.cfg.IsPinned,
	}
	for _, id := range res.TaskIDs {
		if marker != "" {
			existing, err := FindComment(ctx, tasks, id, marker)
			if err != nil {
				return err
			}
			if existing != nil {
				d.log.Info(fmt.Sprintf("found existing comment %s on task %s", existing.GID, id))
				continue
			}
		}
		story, err := tasks.AddComment(ctx, id, comment)
		if err != nil {
			d.log.Error(err.Error())
			continue
		}
		res.Comments = append(res.Comments, *story)
	}
	return nil
}

func (d *Dispatcher) removeComment(ctx context.Context, tasks TaskAPI, res *Result) error {
	for _, id := range res.TaskIDs {
		story, err := FindComment(ctx, tasks, id, d.cfg.CommentID)
		if err != nil {
			return err
		}
		if story == nil {
			continue
		}
		d.log.Info(fmt.Sprintf("removing comment %s from task %s", story.GID, id))
		if err := tasks.DeleteStory(ctx, story.GID); err != nil {
			d.log.Error(err.Error())
			continue
		}
		res.RemovedCommentIDs = append(res.RemovedCommentIDs, story.GID)
	}
	return nil
}
