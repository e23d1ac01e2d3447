package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/formatter"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation with the database",
	Long: `Start a multi-turn conversation. When a request is missing required values,
sqlpilot asks for them one at a time; answer in place and the statement runs
once everything checks out.

Examples:
  sqlpilot chat
  sqlpilot chat --schema schemas/demo.yaml`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	threadID := uuid.NewString()
	format := formatter.NewFormatter()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Connected. Ask about your data, or type 'exit' to quit.")

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" {
			break
		}

		spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " thinking..."
		spin.Start()

		resp := application.agent.Run(ctx, threadID, line)

		spin.Stop()

		if resp.Result != nil && resp.Result.IsSelect {
			fmt.Println(format.FormatResult(resp.Result, formatter.FormatTable))
		}

		fmt.Println(resp.Summary)

		for _, ve := range resp.ValidationErrors {
			fmt.Println("  !", ve)
		}
	}

	return scanner.Err()
}
