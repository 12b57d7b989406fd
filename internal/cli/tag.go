package cli

import (
	"github.com/spf13/cobra"
)

// tagCommand creates the tag command with add/rm subcommands.
func (c *CLI) tagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add or remove task tags",
		Long: `Add or remove task tags.

Tags are written back into the task's document: a trailing #tag token for
inline tasks, a tags list entry for note tasks. Adding a tag that is
already present is a no-op.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <tag> [task-id]",
		Short: "Add a tag to a task",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTag(cmd, args, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <tag> [task-id]",
		Short: "Remove a tag from a task",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTag(cmd, args, false)
		},
	})
	return cmd
}

func (c *CLI) runTag(cmd *cobra.Command, args []string, add bool) error {
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
	title := "Add Tag"
	if !add {
		title = "Remove Tag"
	}
	target, err := resolveTarget(session, id, title)
	if err != nil {
		return err
	}

	tag := args[0]
	if add {
		err = session.AddTag(ctx, target.ID, tag)
	} else {
		err = session.RemoveTag(ctx, target.ID, tag)
	}
	if err != nil {
		return err
	}

	if add {
		printSuccess("tagged %s with %s", target.Summary, StyleHighlight.Render("#"+tag))
	} else {
		printSuccess("removed %s from %s", StyleHighlight.Render("#"+tag), target.Summary)
	}
	return nil
}
