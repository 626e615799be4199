package rules

import (
	"fmt"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
)

// DomainPurity checks that Domain-layer modules stay free of framework
// coupling: no framework-classified metadata marker on the module or any of
// its members, and no structural dependency on a framework-classified
// external target. A single tainted field fails the whole module.
func DomainPurity() Rule {
	return Rule{
		ID:       "domain-purity",
		Category: CategoryDomainPurity,
		Severity: domain.SeverityError,
		Evaluate: evaluateDomainPurity,
	}
}

func evaluateDomainPurity(model *domain.ProjectModel, g *graph.Graph) []domain.Violation {
	var out []domain.Violation
	for _, path := range model.Paths() {
		m := model.Module(path)
		if m.Layer != domain.LayerDomain {
			continue
		}

		for _, mk := range m.Markers {
			if mk.Class != domain.MarkerFramework {
				continue
			}
			subject := "module"
			if mk.Member != "" {
				subject = fmt.Sprintf("member %s", mk.Member)
			}
			out = append(out, domain.Violation{
				RuleID:     "domain-purity",
				Severity:   domain.SeverityError,
				ModulePath: path,
				Locator:    domain.Locator(mk.Member, mk.Line),
				Code:       CodeFrameworkMarker,
				Message: fmt.Sprintf("domain %s carries framework marker @%s",
					subject, markerDisplay(mk)),
			})
		}

		// Markers already reported above; annotation edges would duplicate
		// them, so only non-annotation framework dependencies are flagged.
		for _, e := range g.Edges(path) {
			if !e.External() || e.Kind == domain.RefAnnotation {
				continue
			}
			if e.Target != domain.MarkerFramework {
				continue
			}
			out = append(out, domain.Violation{
				RuleID:     "domain-purity",
				Severity:   domain.SeverityError,
				ModulePath: path,
				Locator:    domain.Locator(e.Member, e.Line),
				Code:       CodeFrameworkDependency,
				Message: fmt.Sprintf("domain module depends on framework type %s via %s",
					edgeDisplay(e), e.Kind),
			})
		}
	}
	return out
}

func markerDisplay(mk domain.Marker) string {
	if mk.Qualifier != "" {
		return mk.Qualifier
	}
	return mk.Name
}

func edgeDisplay(e graph.Edge) string {
	if e.Qualifier != "" {
		return e.Qualifier
	}
	return e.Symbol
}
