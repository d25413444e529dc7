package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/harrisonrobin/asanalink/pkg/asana"
	"github.com/harrisonrobin/asanalink/pkg/model"
)

var errMockRemote = errors.New("mock remote error")

// fakeTasks is an in-memory TaskAPI.
type fakeTasks struct {
	tasks    map[string]*asana.Task
	sections map[string][]asana.Section
	stories  map[string][]asana.Story
	nextGID  int

	updates     map[string][]asana.TaskUpdate
	sectionAdds []string
	deleted     []string
	storyLimits []int

	failGet     map[string]bool
	failUpdate  map[string]bool
	failStories map[string]bool
	failComment map[string]bool
	failDelete  map[string]bool
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{
		tasks:       make(map[string]*asana.Task),
		sections:    make(map[string][]asana.Section),
		stories:     make(map[string][]asana.Story),
		nextGID:     1000,
		updates:     make(map[string][]asana.TaskUpdate),
		failGet:     make(map[string]bool),
		failUpdate:  make(map[string]bool),
		failStories: make(map[string]bool),
		failComment: make(map[string]bool),
		failDelete:  make(map[string]bool),
	}
}

func (f *fakeTasks) updateCount() int {
	n := 0
	for _, u := range f.updates {
		n += len(u)
	}
	return n
}

func (f *fakeTasks) GetTask(_ context.Context, taskGID string) (*asana.Task, error) {
	if f.failGet[taskGID] {
		return nil, errMockRemote
	}
	t, ok := f.tasks[taskGID]
	if !ok {
		return &asana.Task{GID: taskGID}, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) ListSections(_ context.Context, projectGID string) ([]asana.Section, error) {
	return f.sections[projectGID], nil
}

func (f *fakeTasks) AddTaskToSection(_ context.Context, sectionGID, taskGID string) error {
	f.sectionAdds = append(f.sectionAdds, sectionGID+":"+taskGID)
	return nil
}

func (f *fakeTasks) ListStories(_ context.Context, taskGID string, limit int) ([]asana.Story, error) {
	f.storyLimits = append(f.storyLimits, limit)
	if f.failStories[taskGID] {
		return nil, errMockRemote
	}
	s := f.stories[taskGID]
	if len(s) > limit {
		s = s[:limit]
	}
	return append([]asana.Story(nil), s...), nil
}

func (f *fakeTasks) AddComment(_ context.Context, taskGID string, c asana.NewComment) (*asana.Story, error) {
	if f.failComment[taskGID] {
		return nil, errMockRemote
	}
	f.nextGID++
	story := asana.Story{GID: strconv.Itoa(f.nextGID), Text: c.Text, Type: "comment", IsPinned: c.IsPinned}
	f.stories[taskGID] = append(f.stories[taskGID], story)
	return &story, nil
}

func (f *fakeTasks) DeleteStory(_ context.Context, storyGID string) error {
	for task, stories := range f.stories {
		for i, s := range stories {
			if s.GID != storyGID {
				continue
			}
			if f.failDelete[task] {
				return errMockRemote
			}
			f.stories[task] = append(stories[:i:i], stories[i+1:]...)
			f.deleted = append(f.deleted, storyGID)
			return nil
		}
	}
	return fmt.Errorf("story %s: %w", storyGID, errMockRemote)
}

func (f *fakeTasks) UpdateTask(_ context.Context, taskGID string, u asana.TaskUpdate) error {
	if f.failUpdate[taskGID] {
		return errMockRemote
	}
	f.updates[taskGID] = append(f.updates[taskGID], u)
	return nil
}

// fakeReporter records posted statuses.
type fakeReporter struct {
	states []string
	prs    []model.PullRequest
	err    error
}

func (r *fakeReporter) CreateStatus(_ context.Context, pr model.PullRequest, state string) error {
	r.prs = append(r.prs, pr)
	r.states = append(r.states, state)
	return r.err
}
