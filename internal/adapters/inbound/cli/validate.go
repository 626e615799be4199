package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/archlint/archlint/internal/adapters/outbound/config"
	"github.com/archlint/archlint/internal/adapters/outbound/gitinfo"
	"github.com/archlint/archlint/internal/adapters/outbound/parser"
	"github.com/archlint/archlint/internal/adapters/outbound/scanner"
	"github.com/archlint/archlint/internal/adapters/outbound/tui"
	"github.com/archlint/archlint/internal/application"
	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/rules"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		aspectName string
		jsonOutput bool
		failOn     string
		configFile string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a codebase against its declared architecture",
		Long:  "Scan a source tree, classify every module into layers and roles, and evaluate the architecture rules. Exits non-zero when the report crosses the failure threshold.",
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

			aspect, err := domain.ParseAspect(aspectName)
			if err != nil {
				return err
			}

			loader := config.New()
			var cfg domain.ProjectConfig
			if configFile != "" {
				cfg, err = loader.LoadFile(configFile)
			} else {
				cfg, err = loader.Load(absPath)
			}
			if err != nil {
				return err
			}

			if failOn != "" {
				threshold, err := domain.ParseFailOn(failOn)
				if err != nil {
					return err
				}
				cfg.FailOn = threshold
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			svc := application.NewValidateService(
				scanner.New(parser.New()),
				rules.Default(),
				gitinfo.New(),
			)

			report, err := svc.Validate(ctx, absPath, aspect, cfg)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report, absPath))
			}

			if report.Fails(cfg.EffectiveFailOn()) {
				return fmt.Errorf("%d error(s), %d warning(s)", report.ErrorCount, report.WarningCount)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&aspectName, "aspect", "all", "Aspect to validate: architecture, coverage, style, or all")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Failure threshold for the exit code: error, warning, or none")
	cmd.Flags().StringVar(&configFile, "config", "", "Config file to use instead of .archlint.yaml at the project root")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort validation after this duration (0 means no limit)")

	return cmd
}

func renderJSON(cmd *cobra.Command, report *domain.Report) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
