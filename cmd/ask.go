package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/formatter"
)

var askCSV bool

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Run a single natural language request",
	Long: `Run one request and print the result. Requests that need more information
cannot be completed in one shot; use 'sqlpilot chat' for those.

Examples:
  sqlpilot ask "show all employees in marketing"
  sqlpilot ask --csv "list projects over budget 100000"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askCSV, "csv", false, "print SELECT results as CSV")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	resp := application.agent.Run(ctx, uuid.NewString(), strings.Join(args, " "))

	if resp.AwaitingInput() {
		fmt.Println(resp.FieldPrompt)
		return fmt.Errorf("request needs more information; continue it with 'sqlpilot chat'")
	}

	if resp.Result != nil && resp.Result.IsSelect {
		format := formatter.FormatTable
		if askCSV {
			format = formatter.FormatCSV
		}

		fmt.Println(formatter.NewFormatter().FormatResult(resp.Result, format))
	}

	fmt.Println(resp.Summary)

	for _, ve := range resp.ValidationErrors {
		fmt.Println("  !", ve)
	}

	return nil
}
