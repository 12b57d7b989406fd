package cli

import (
	"context"

	"github.com/taskweave/taskweave/pkg/engine"
	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/task"
)

// openForMutation opens a session with its graph state ready for task
// mutations: the saved snapshot when one exists, reconciled against a fresh
// scan, or a full rebuild on first use. Mutations skip the layout pass.
func (c *CLI) openForMutation(ctx context.Context) (*engine.Session, func(), error) {
	session, cleanup, err := c.newSession(ctx, false)
	if err != nil {
		return nil, nil, err
	}

	ok, err := session.Load(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if ok {
		err = session.Refresh(ctx)
	} else {
		err = session.Rebuild(ctx)
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return session, cleanup, nil
}

// resolveTarget returns the task named by id, or runs the interactive
// picker when id is empty.
func resolveTarget(session *engine.Session, id, pickTitle string) (task.Task, error) {
	tasks := session.Tasks()

	if id != "" {
		for _, t := range tasks {
			if t.ID == id {
				return t, nil
			}
		}
		return task.Task{}, errors.New(errors.ErrCodeTaskNotFound, "task %s not in graph", id)
	}

	t, ok, err := pickTask(pickTitle, tasks)
	if err != nil {
		return task.Task{}, err
	}
	if !ok {
		return task.Task{}, errors.New(errors.ErrCodeNotFound, "no task selected")
	}
	return t, nil
}
