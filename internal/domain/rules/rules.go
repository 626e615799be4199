package rules

import (
	"context"
	"fmt"
	"sync"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
)

// Category groups rules by the architectural concern they check.
type Category string

const (
	CategoryLayerDependency Category = "layer_dependency"
	CategoryDomainPurity    Category = "domain_purity"
	CategoryCQRSSeparation  Category = "cqrs_separation"
	CategoryPortAdapter     Category = "port_adapter"
	CategoryNaming          Category = "naming_convention"
)

// Rule is one named, pure evaluator. Rules are stateless and never observe
// each other's output, so evaluation order cannot affect results.
type Rule struct {
	ID       string
	Category Category
	Severity domain.Severity
	Evaluate func(model *domain.ProjectModel, g *graph.Graph) []domain.Violation
}

// Registry maps rule ids to rules. It is append-only with unique keys.
type Registry struct {
	order []string
	byID  map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Rule)}
}

// Register adds a rule; duplicate ids are rejected.
func (r *Registry) Register(rule Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id must not be empty")
	}
	if _, exists := r.byID[rule.ID]; exists {
		return fmt.Errorf("duplicate rule id %q", rule.ID)
	}
	r.byID[rule.ID] = rule
	r.order = append(r.order, rule.ID)
	return nil
}

// Get returns the rule registered under id.
func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// IDs returns all registered rule ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// aspectCategories maps each aspect to the rule categories it selects.
// Coverage has no rules in this core; external tooling owns that aspect.
var aspectCategories = map[domain.Aspect][]Category{
	domain.AspectArchitecture: {
		CategoryLayerDependency, CategoryDomainPurity,
		CategoryCQRSSeparation, CategoryPortAdapter,
	},
	domain.AspectStyle:    {CategoryNaming},
	domain.AspectCoverage: {},
	domain.AspectAll: {
		CategoryLayerDependency, CategoryDomainPurity,
		CategoryCQRSSeparation, CategoryPortAdapter, CategoryNaming,
	},
}

// Select returns the rules an aspect enables, in registration order, with
// disabled ids filtered out.
func (r *Registry) Select(aspect domain.Aspect, disabled func(id string) bool) []Rule {
	wanted := make(map[Category]bool)
	for _, c := range aspectCategories[aspect] {
		wanted[c] = true
	}
	var out []Rule
	for _, id := range r.order {
		rule := r.byID[id]
		if !wanted[rule.Category] {
			continue
		}
		if disabled != nil && disabled(id) {
			continue
		}
		out = append(out, rule)
	}
	return out
}

// Default returns the registry with every built-in rule registered.
func Default() *Registry {
	r := NewRegistry()
	for _, rule := range []Rule{
		LayerDependency(),
		DomainPurity(),
		CQRSSeparation(),
		PortAdapterCompliance(),
		NamingConvention(),
	} {
		// Built-in ids are unique by construction.
		_ = r.Register(rule)
	}
	return r
}

// Evaluate runs the selected rules concurrently and concatenates their
// violations. A panicking evaluator is isolated: it contributes one
// synthetic warning identifying itself plus a diagnostic, and the remaining
// rules still run. Output order is normalized by the caller's sort, so
// concurrency never changes the report.
func Evaluate(ctx context.Context, selected []Rule, model *domain.ProjectModel, g *graph.Graph) ([]domain.Violation, []domain.Diagnostic) {
	results := make([][]domain.Violation, len(selected))
	faults := make([]*domain.Diagnostic, len(selected))

	var wg sync.WaitGroup
	for i, rule := range selected {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, rule Rule) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					results[i] = []domain.Violation{{
						RuleID:   rule.ID,
						Severity: domain.SeverityWarning,
						Code:     CodeRuleEvaluationFault,
						Message:  fmt.Sprintf("rule %s failed to evaluate: %v", rule.ID, rec),
					}}
					faults[i] = &domain.Diagnostic{
						Kind:    domain.DiagRuleFault,
						Message: fmt.Sprintf("rule %s panicked: %v", rule.ID, rec),
					}
				}
			}()
			results[i] = rule.Evaluate(model, g)
		}(i, rule)
	}
	wg.Wait()

	var violations []domain.Violation
	var diagnostics []domain.Diagnostic
	for i := range selected {
		violations = append(violations, results[i]...)
		if faults[i] != nil {
			diagnostics = append(diagnostics, *faults[i])
		}
	}
	return violations, diagnostics
}

// Machine-readable violation codes.
const (
	CodeLayerInversion      = "LAYER_INVERSION"
	CodeLayerCross          = "LAYER_CROSS"
	CodeFrameworkMarker     = "DOMAIN_FRAMEWORK_MARKER"
	CodeFrameworkDependency = "DOMAIN_FRAMEWORK_DEPENDENCY"
	CodeCommandReturnsState = "COMMAND_RETURNS_STATE"
	CodeQueryMutatesState   = "QUERY_MUTATES_STATE"
	CodeAdapterWithoutPort  = "ADAPTER_WITHOUT_PORT"
	CodeControllerBypass    = "CONTROLLER_BYPASSES_APPLICATION"
	CodeTypeNameStyle       = "TYPE_NAME_STYLE"
	CodeRoleSuffixMismatch  = "ROLE_SUFFIX_MISMATCH"
	CodeRuleEvaluationFault = "RULE_EVALUATION_FAULT"
)
