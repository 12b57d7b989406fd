package cli

import (
	"github.com/spf13/cobra"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/task"
)

// statusCommand creates the status command for setting a task's status.
func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <todo|in_progress|done|canceled> [task-id]",
		Short: "Set a task's status",
		Long: `Set a task's status.

The status is written back into the task's document: the checklist status
character for inline tasks, the frontmatter status field for note tasks.
Without a task id an interactive picker opens.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := task.StatusFromName(args[0])
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "unknown status: %s", args[0])
			}

			ctx := cmd.Context()
			session, cleanup, err := c.openForMutation(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id := ""
			if len(args) == 2 {
				id = args[1]
			}
			target, err := resolveTarget(session, id, "Set Status")
			if err != nil {
				return err
			}

			if err := session.SetStatus(ctx, target.ID, status); err != nil {
				return err
			}
			printSuccess("%s is now %s", target.Summary, StyleHighlight.Render(string(status)))
			return nil
		},
	}
}
