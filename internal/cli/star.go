package cli

import (
	"github.com/spf13/cobra"
)

// starCommand creates the star command.
func (c *CLI) starCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "star [task-id]",
		Short: "Mark a task starred",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStar(cmd, args, true)
		},
	}
}

// unstarCommand creates the unstar command.
func (c *CLI) unstarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unstar [task-id]",
		Short: "Clear a task's star",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStar(cmd, args, false)
		},
	}
}

func (c *CLI) runStar(cmd *cobra.Command, args []string, starred bool) error {
	ctx := cmd.Context()
	session, cleanup, err := c.openForMutation(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	title := "Star Task"
	if !starred {
		title = "Unstar Task"
	}
	target, err := resolveTarget(session, id, title)
	if err != nil {
		return err
	}

	if starred {
		err = session.Star(ctx, target.ID)
	} else {
		err = session.Unstar(ctx, target.ID)
	}
	if err != nil {
		return err
	}

	if starred {
		printSuccess("starred %s", target.Summary)
	} else {
		printSuccess("unstarred %s", target.Summary)
	}
	return nil
}
