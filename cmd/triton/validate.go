package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"automata-hq/triton/pkg/cli"
	"automata-hq/triton/pkg/config"
	"automata-hq/triton/pkg/rules/store"
)

var validateFlags struct {
	rulesPath string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate rule files",
	Long: `Validate rule files for syntax and semantic errors without starting
the server.

Every rule in every file is checked:
  - YAML syntax
  - Required fields (id, name, trigger_type, action_type)
  - Trigger and action type values
  - Condition shape for the rule's trigger type
  - Performer filter values and allow-list consistency

All errors are reported, not just the first one.

Examples:
  # Validate the rules path from the config file
  triton validate

  # Validate a specific file or directory
  triton validate --rules rules/production.yaml`,
	RunE: validateRules,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.rulesPath, "rules", "r", "", "rule file or directory (defaults to the configured rules path)")
}

func validateRules(cmd *cobra.Command, args []string) error {
	path := validateFlags.rulesPath
	if path == "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return cli.NewConfigError(cfgFile, err.Error())
		}
		if cfg.Rules.Backend != "file" {
			return cli.NewConfigError(cfgFile, "validate requires the file rules backend or an explicit --rules path")
		}
		path = cfg.Rules.Path
	}

	source := store.NewFileSource(path, slog.Default())
	errs := source.Lint(context.Background())
	if len(errs) == 0 {
		fmt.Printf("✓ Rules valid: %s\n", path)
		return nil
	}

	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
	}
	return cli.NewCommandError("validate", fmt.Errorf("%d validation error(s)", len(errs)))
}
