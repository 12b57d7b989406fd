package cli

import (
	"github.com/spf13/cobra"
)

// linkCommand creates the link command for adding a dependency.
func (c *CLI) linkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <blocking-id> <blocked-id>",
		Short: "Record that one task blocks another",
		Long: `Record that one task blocks another.

The dependency is written into the blocked task's document using the
configured marker dialect. When the blocking task has no identity marker
yet, a fresh six-character id is generated and written into its document
first. Note tasks get a blockedBy frontmatter entry instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, cleanup, err := c.openForMutation(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := session.AddDependency(ctx, args[0], args[1]); err != nil {
				return err
			}
			printSuccess("%s now blocks %s", args[0], args[1])
			return nil
		},
	}
}

// unlinkCommand creates the unlink command for removing a dependency.
func (c *CLI) unlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <blocking-id> <blocked-id>",
		Short: "Remove a dependency between two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, cleanup, err := c.openForMutation(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := session.RemoveDependency(ctx, args[0], args[1]); err != nil {
				return err
			}
			printSuccess("%s no longer blocks %s", args[0], args[1])
			return nil
		},
	}
}
