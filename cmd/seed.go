package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/errors"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo tables with sample data",
	Long: `Create the employee and project demo tables in the configured database and
load a handful of sample rows, so chat and ask have something to work with
out of the box.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedStatements = []string{
	`CREATE TABLE IF NOT EXISTS employee (
		id INTEGER PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		department VARCHAR(50) NOT NULL,
		salary INTEGER NOT NULL,
		hire_date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS project (
		id INTEGER PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		budget INTEGER,
		deadline DATE
	)`,
	// Re-seeding replaces the sample rows.
	`DELETE FROM employee`,
	`DELETE FROM project`,
	`INSERT INTO employee (id, name, department, salary, hire_date) VALUES
		(1, 'Alice Chen', 'Engineering', 95000, '2021-03-15'),
		(2, 'Miguel Torres', 'Marketing', 62000, '2022-07-01'),
		(3, 'Priya Patel', 'Engineering', 88000, '2020-11-30'),
		(4, 'Dana Williams', 'Finance', 71000, '2023-01-09')`,
	`INSERT INTO project (id, title, budget, deadline) VALUES
		(1, 'Website Relaunch', 120000, '2026-10-01'),
		(2, 'Data Warehouse Migration', 250000, '2027-02-28'),
		(3, 'Brand Refresh', 45000, NULL)`,
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, stmt := range seedStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, errors.ErrTypeDatabase, "seeding failed")
		}
	}

	fmt.Println("Seeded employee and project tables with sample rows.")

	return nil
}
