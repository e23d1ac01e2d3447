package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var schemaJSON bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the registered table schemas",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "emit the schema as JSON")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	application, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if !schemaJSON {
		fmt.Print(application.registry.Describe())
		return nil
	}

	tables := make([]interface{}, 0)

	for _, name := range application.registry.Tables() {
		t, err := application.registry.Get(name)
		if err != nil {
			continue
		}

		tables = append(tables, t)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(map[string]interface{}{"tables": tables})
}
