package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// scanCommand creates the scan command for listing vault tasks.
func (c *CLI) scanCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the vault and list every task",
		Long: `Scan the vault and list every task.

Each markdown document contributes its checklist lines as inline tasks; a
document whose frontmatter carries a status field is additionally a note
task. Tasks whose text is empty after marker stripping are filtered out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScan(cmd, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit tasks as JSON")
	return cmd
}

func (c *CLI) runScan(cmd *cobra.Command, asJSON bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	session, cleanup, err := c.newSession(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := newSpinnerWithContext(ctx, "Scanning vault...")
	spinner.Start()

	prog := newProgress(logger)
	tasks, err := session.Scan(ctx)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Scanned %d tasks", len(tasks)))

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}

	for _, t := range tasks {
		fmt.Println(renderTask(t))
		printDetail("%s", renderTaskRef(t))
	}
	if len(tasks) == 0 {
		printInfo("no tasks found in %s", c.Config.Vault)
		return nil
	}
	printNextStep("Build the graph", "taskweave graph")
	return nil
}
