package rules

import (
	"fmt"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
)

// PortAdapterCompliance checks the hexagonal wiring: every concrete
// Infrastructure repository or client must implement a port contract
// defined in Application or Domain, and an Api controller must reach state
// through the application layer rather than touching repositories or
// clients directly.
func PortAdapterCompliance() Rule {
	return Rule{
		ID:       "port-adapter",
		Category: CategoryPortAdapter,
		Severity: domain.SeverityError,
		Evaluate: evaluatePortAdapter,
	}
}

func evaluatePortAdapter(model *domain.ProjectModel, g *graph.Graph) []domain.Violation {
	var out []domain.Violation

	out = append(out, adaptersWithoutPorts(model, g)...)
	out = append(out, controllersBypassing(model, g)...)

	return out
}

func adaptersWithoutPorts(model *domain.ProjectModel, g *graph.Graph) []domain.Violation {
	var out []domain.Violation
	for _, role := range []domain.Role{domain.RoleRepository, domain.RoleClient} {
		for _, path := range model.ByRole(role) {
			m := model.Module(path)
			if m.Layer != domain.LayerInfrastructure || m.Kind != domain.KindClass {
				continue
			}
			if implementsPort(model, g, path) {
				continue
			}
			out = append(out, domain.Violation{
				RuleID:     "port-adapter",
				Severity:   domain.SeverityError,
				ModulePath: path,
				Code:       CodeAdapterWithoutPort,
				Message: fmt.Sprintf("infrastructure %s %s implements no port contract in application or domain",
					role, m.Name),
			})
		}
	}
	return out
}

// implementsPort reports whether the module has an implements edge to an
// interface-kind module in the application or domain layer.
func implementsPort(model *domain.ProjectModel, g *graph.Graph, path string) bool {
	for _, e := range g.Edges(path) {
		if e.Kind != domain.RefImplements || e.External() {
			continue
		}
		target := model.Module(e.To)
		if target.Kind != domain.KindInterface {
			continue
		}
		if target.Layer == domain.LayerApplication || target.Layer == domain.LayerDomain {
			return true
		}
	}
	return false
}

func controllersBypassing(model *domain.ProjectModel, g *graph.Graph) []domain.Violation {
	var out []domain.Violation
	for _, path := range model.ByRole(domain.RoleController) {
		m := model.Module(path)
		if m.Layer != domain.LayerApi {
			continue
		}
		for _, e := range g.Edges(path) {
			if e.External() || e.Kind == domain.RefAnnotation {
				continue
			}
			switch model.Module(e.To).Role {
			case domain.RoleRepository, domain.RoleRepositoryPort, domain.RoleClient:
			default:
				continue
			}
			out = append(out, domain.Violation{
				RuleID:     "port-adapter",
				Severity:   domain.SeverityError,
				ModulePath: path,
				Locator:    domain.Locator(e.Member, e.Line),
				Code:       CodeControllerBypass,
				Message: fmt.Sprintf("controller depends on %s %s directly; route through an application handler",
					model.Module(e.To).Role, e.Symbol),
			})
		}
	}
	return out
}
