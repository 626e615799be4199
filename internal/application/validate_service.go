package application

import (
	"context"
	"fmt"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
	"github.com/archlint/archlint/internal/domain/rules"
)

// ValidateService orchestrates the validation pipeline:
// scan -> model -> graph -> rules -> report.
type ValidateService struct {
	scanner  domain.ProjectScanner
	registry *rules.Registry
	git      domain.GitInfo
}

func NewValidateService(
	scanner domain.ProjectScanner,
	registry *rules.Registry,
	git domain.GitInfo,
) *ValidateService {
	return &ValidateService{
		scanner:  scanner,
		registry: registry,
		git:      git,
	}
}

// Validate runs the full pipeline for one aspect and returns the report.
// Configuration problems and an unusable project root are fatal; parse
// failures and rule faults are carried in the report as diagnostics. When
// the context expires mid-run the report holds whatever was aggregated so
// far plus a truncation diagnostic.
func (s *ValidateService) Validate(ctx context.Context, projectPath string, aspect domain.Aspect, cfg domain.ProjectConfig) (*domain.Report, error) {
	// 1. Config sanity: a disabled rule must exist.
	for _, id := range cfg.DisabledRules {
		if _, ok := s.registry.Get(id); !ok {
			return nil, fmt.Errorf("unknown rule %q in disabled_rules", id)
		}
	}

	// 2. Scan and parse.
	scan, err := s.scanner.Scan(ctx, projectPath, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return s.truncated(nil, nil, "scan"), nil
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	diagnostics := scan.Failures

	// 3. Build the model.
	model := domain.BuildModel(*scan, cfg.EffectiveLayerRules())
	if ctx.Err() != nil {
		return s.truncated(nil, diagnostics, "model"), nil
	}

	// 4. Build the graph.
	g := graph.Build(model)

	// 5. Evaluate the selected rules.
	selected := s.registry.Select(aspect, cfg.IsRuleDisabled)
	violations, faults := rules.Evaluate(ctx, selected, model, g)
	diagnostics = append(diagnostics, faults...)
	if ctx.Err() != nil {
		return s.truncated(violations, diagnostics, "rules"), nil
	}

	// 6. Assemble the report.
	report := domain.NewReport(violations, diagnostics)
	s.stamp(&report, scan.RootPath)
	return &report, nil
}

// Inspect runs the pipeline up to the graph stage, for model and
// dependency introspection without rule evaluation.
func (s *ValidateService) Inspect(ctx context.Context, projectPath string, cfg domain.ProjectConfig) (*domain.ProjectModel, *graph.Graph, []domain.Diagnostic, error) {
	scan, err := s.scanner.Scan(ctx, projectPath, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scanning project: %w", err)
	}
	model := domain.BuildModel(*scan, cfg.EffectiveLayerRules())
	return model, graph.Build(model), scan.Failures, nil
}

func (s *ValidateService) truncated(violations []domain.Violation, diagnostics []domain.Diagnostic, stage string) *domain.Report {
	diagnostics = append(diagnostics, domain.Diagnostic{
		Kind:    domain.DiagTruncated,
		Message: fmt.Sprintf("run timed out during %s; results are incomplete", stage),
	})
	report := domain.NewReport(violations, diagnostics)
	return &report
}

func (s *ValidateService) stamp(report *domain.Report, rootPath string) {
	if s.git == nil {
		return
	}
	report.CommitHash = s.git.CommitHash(rootPath)
}
