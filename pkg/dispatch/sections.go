package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrisonrobin/asanalink/pkg/asana"
	"github.com/harrisonrobin/asanalink/pkg/config"
	"github.com/harrisonrobin/asanalink/pkg/model"
)

// statusField is the enum custom field update-status writes.
const statusField = "Status"

// moveSection moves every task into every target section. Targets are
// processed in order and a failing target does not stop the others; all
// failures are returned together once every task has been tried.
func (d *Dispatcher) moveSection(ctx context.Context, tasks TaskAPI, res *Result) error {
	var errs []error
	for _, id := range res.TaskIDs {
		task, err := tasks.GetTask(ctx, id)
		if err != nil {
			d.log.Error(err.Error())
			errs = append(errs, err)
			continue
		}

		moved := true
		for _, target := range d.cfg.Targets {
			if err := d.moveToTarget(ctx, tasks, task, target); err != nil {
				d.log.Error(err.Error())
				errs = append(errs, err)
				moved = false
			}
		}
		if moved {
			res.UpdatedTaskIDs = append(res.UpdatedTaskIDs, id)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) moveToTarget(ctx context.Context, tasks TaskAPI, task *asana.Task, target model.Target) error {
	project, ok := task.Project(target.Project)
	if !ok {
		return fmt.Errorf("%w: task %s is not in project %q", ErrProjectNotFound, task.GID, target.Project)
	}

	sections, err := tasks.ListSections(ctx, project.GID)
	if err != nil {
		return err
	}
	var section *asana.Section
	for i := range sections {
		if sections[i].Name == target.Section {
			section = &sections[i]
			break
		}
	}
	if section == nil {
		return fmt.Errorf("%w: %q in project %q", ErrSectionNotFound, target.Section, target.Project)
	}

	if err := tasks.AddTaskToSection(ctx, section.GID, task.GID); err != nil {
		return err
	}
	d.log.Info(fmt.Sprintf("Moved %s to: %s/%s", task.GID, target.Project, target.Section))
	return nil
}

type statusChange struct {
	taskID    string
	fieldGID  string
	optionGID string
}

// updateStatus sets the Status field of every task to the first target's
// status. Every task is resolved before any is written, so a missing field or
// option leaves all tasks untouched.
func (d *Dispatcher) updateStatus(ctx context.Context, tasks TaskAPI, res *Result) error {
	if len(d.cfg.Targets) == 0 {
		return fmt.Errorf("%w: no status target", config.ErrInvalidTargets)
	}
	status := d.cfg.Targets[0].Status

	changes := make([]statusChange, 0, len(res.TaskIDs))
	for _, id := range res.TaskIDs {
		task, err := tasks.GetTask(ctx, id)
		if err != nil {
			return err
		}
		field, ok := task.CustomField(statusField)
		if !ok {
			return fmt.Errorf("%w on task %s", ErrStatusFieldNotFound, id)
		}
		option, ok := field.Option(status)
		if !ok {
			return fmt.Errorf("%w: %q", ErrStatusNotFound, status)
		}
		changes = append(changes, statusChange{taskID: id, fieldGID: field.GID, optionGID: option.GID})
	}

	for _, c := range changes {
		if err := tasks.UpdateTask(ctx, c.taskID, asana.EnumUpdate(c.fieldGID, c.optionGID)); err != nil {
			return err
		}
		d.log.Info(fmt.Sprintf("Status of %s set to: %s", c.taskID, status))
		res.UpdatedTaskIDs = append(res.UpdatedTaskIDs, c.taskID)
	}
	return nil
}
