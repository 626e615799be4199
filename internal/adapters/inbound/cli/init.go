package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archlint/archlint/internal/domain"
)

const configFileName = ".archlint.yaml"

func newInitCmd() *cobra.Command {
	var (
		failOn string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .archlint.yaml configuration file",
		Long:  "Create a .archlint.yaml at the project root with the conventional layer mapping spelled out, ready to be tightened.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, configFileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
				}
			}

			threshold, err := domain.ParseFailOn(failOn)
			if err != nil {
				return err
			}

			if err := os.WriteFile(dest, []byte(generateConfig(threshold)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configFileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&failOn, "fail-on", "error", "Failure threshold to seed: error, warning, or none")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .archlint.yaml")

	return cmd
}

func generateConfig(failOn domain.FailOn) string {
	var b strings.Builder

	b.WriteString("# ArchLint configuration\n\n")
	fmt.Fprintf(&b, "fail_on: %s\n\n", failOn)

	b.WriteString("# Package-to-layer mapping, first match wins. Listed here is the\n")
	b.WriteString("# built-in convention; replace or reorder to fit the project.\n")
	b.WriteString("layers:\n")
	for _, r := range domain.DefaultLayerRules() {
		fmt.Fprintf(&b, "  - pattern: %s\n    layer: %s\n", r.Pattern, r.Layer)
	}
	b.WriteString("\n")

	b.WriteString(`# exclude_paths:
#   - generated
#   - src/test

# disabled_rules:
#   - naming-convention
`)

	return b.String()
}
