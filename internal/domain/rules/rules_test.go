package rules_test

import (
	"context"
	"testing"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
	"github.com/archlint/archlint/internal/domain/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mod builds one module for rule tests. Tests rely on unique simple names,
// so references resolve without import bookkeeping.
func mod(path, name string, kind domain.TypeKind, layer domain.Layer, role domain.Role) *domain.Module {
	return &domain.Module{
		Path:  path,
		Name:  name,
		Kind:  kind,
		Layer: layer,
		Role:  role,
	}
}

func buildGraph(modules ...*domain.Module) (*domain.ProjectModel, *graph.Graph) {
	model := domain.NewProjectModel("/p", modules)
	return model, graph.Build(model)
}

func codesOf(vs []domain.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Code)
	}
	return out
}

// --- Registry ---

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := rules.NewRegistry()
	require.NoError(t, r.Register(rules.Rule{ID: "a", Category: rules.CategoryNaming}))

	rule, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", rule.ID)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RejectsEmptyID(t *testing.T) {
	err := rules.NewRegistry().Register(rules.Rule{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestRegistry_RejectsDuplicateID(t *testing.T) {
	r := rules.NewRegistry()
	require.NoError(t, r.Register(rules.Rule{ID: "a"}))
	err := r.Register(rules.Rule{ID: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate rule id "a"`)
}

func TestRegistry_IDsInRegistrationOrder(t *testing.T) {
	r := rules.NewRegistry()
	require.NoError(t, r.Register(rules.Rule{ID: "b"}))
	require.NoError(t, r.Register(rules.Rule{ID: "a"}))
	assert.Equal(t, []string{"b", "a"}, r.IDs())
}

func TestDefault_RegistersBuiltins(t *testing.T) {
	assert.Equal(t, []string{
		"layer-dependency",
		"domain-purity",
		"cqrs-separation",
		"port-adapter",
		"naming-convention",
	}, rules.Default().IDs())
}

// --- Selection ---

func TestSelect_ArchitectureAspect(t *testing.T) {
	selected := rules.Default().Select(domain.AspectArchitecture, nil)
	ids := make([]string, 0, len(selected))
	for _, r := range selected {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"layer-dependency", "domain-purity", "cqrs-separation", "port-adapter"}, ids)
}

func TestSelect_StyleAspect(t *testing.T) {
	selected := rules.Default().Select(domain.AspectStyle, nil)
	require.Len(t, selected, 1)
	assert.Equal(t, "naming-convention", selected[0].ID)
}

func TestSelect_CoverageAspectIsEmpty(t *testing.T) {
	assert.Empty(t, rules.Default().Select(domain.AspectCoverage, nil))
}

func TestSelect_AllAspect(t *testing.T) {
	assert.Len(t, rules.Default().Select(domain.AspectAll, nil), 5)
}

func TestSelect_FiltersDisabled(t *testing.T) {
	disabled := func(id string) bool { return id == "domain-purity" }
	selected := rules.Default().Select(domain.AspectAll, disabled)
	require.Len(t, selected, 4)
	for _, r := range selected {
		assert.NotEqual(t, "domain-purity", r.ID)
	}
}

// --- Evaluation ---

func TestEvaluate_CollectsAllRuleOutput(t *testing.T) {
	model, g := buildGraph(mod("a/A.java", "A", domain.KindClass, domain.LayerDomain, domain.RoleOther))
	selected := []rules.Rule{
		{ID: "one", Evaluate: func(*domain.ProjectModel, *graph.Graph) []domain.Violation {
			return []domain.Violation{{RuleID: "one", Code: "X"}}
		}},
		{ID: "two", Evaluate: func(*domain.ProjectModel, *graph.Graph) []domain.Violation {
			return []domain.Violation{{RuleID: "two", Code: "Y"}, {RuleID: "two", Code: "Z"}}
		}},
	}

	violations, diags := rules.Evaluate(context.Background(), selected, model, g)
	assert.Len(t, violations, 3)
	assert.Empty(t, diags)
}

func TestEvaluate_IsolatesPanickingRule(t *testing.T) {
	model, g := buildGraph(mod("a/A.java", "A", domain.KindClass, domain.LayerDomain, domain.RoleOther))
	selected := []rules.Rule{
		{ID: "broken", Evaluate: func(*domain.ProjectModel, *graph.Graph) []domain.Violation {
			panic("boom")
		}},
		{ID: "fine", Evaluate: func(*domain.ProjectModel, *graph.Graph) []domain.Violation {
			return []domain.Violation{{RuleID: "fine", Code: "OK"}}
		}},
	}

	violations, diags := rules.Evaluate(context.Background(), selected, model, g)

	require.Len(t, violations, 2)
	assert.Equal(t, rules.CodeRuleEvaluationFault, violations[0].Code)
	assert.Equal(t, "broken", violations[0].RuleID)
	assert.Equal(t, domain.SeverityWarning, violations[0].Severity)
	assert.Equal(t, "OK", violations[1].Code)

	require.Len(t, diags, 1)
	assert.Equal(t, domain.DiagRuleFault, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "broken")
	assert.Contains(t, diags[0].Message, "boom")
}

func TestEvaluate_CancelledContextRunsNothing(t *testing.T) {
	model, g := buildGraph(mod("a/A.java", "A", domain.KindClass, domain.LayerDomain, domain.RoleOther))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	selected := []rules.Rule{
		{ID: "one", Evaluate: func(*domain.ProjectModel, *graph.Graph) []domain.Violation {
			called = true
			return nil
		}},
	}

	violations, diags := rules.Evaluate(ctx, selected, model, g)
	assert.False(t, called)
	assert.Empty(t, violations)
	assert.Empty(t, diags)
}

func TestEvaluate_NoRules(t *testing.T) {
	model, g := buildGraph()
	violations, diags := rules.Evaluate(context.Background(), nil, model, g)
	assert.Empty(t, violations)
	assert.Empty(t, diags)
}
