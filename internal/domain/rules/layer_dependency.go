package rules

import (
	"fmt"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
)

// layerRank orders layers from innermost outwards. Infrastructure and Api
// share the outermost rank; they are peers and may not depend on each other.
var layerRank = map[domain.Layer]int{
	domain.LayerDomain:         0,
	domain.LayerApplication:    1,
	domain.LayerInfrastructure: 2,
	domain.LayerApi:            2,
}

// LayerDependency checks every module-to-module edge against the allowed
// dependency order: Domain depends on nothing else in-project, Application
// only on Domain, Infrastructure and Api on Application and Domain but
// never on each other. Edges touching an unknown layer are skipped.
func LayerDependency() Rule {
	return Rule{
		ID:       "layer-dependency",
		Category: CategoryLayerDependency,
		Severity: domain.SeverityError,
		Evaluate: evaluateLayerDependency,
	}
}

func evaluateLayerDependency(model *domain.ProjectModel, g *graph.Graph) []domain.Violation {
	var out []domain.Violation
	for _, e := range g.InternalEdges() {
		from := model.Module(e.From)
		to := model.Module(e.To)
		if from.Layer == domain.LayerUnknown || to.Layer == domain.LayerUnknown {
			continue
		}
		if from.Layer == to.Layer {
			continue
		}

		fromRank, toRank := layerRank[from.Layer], layerRank[to.Layer]
		switch {
		case fromRank < toRank:
			out = append(out, domain.Violation{
				RuleID:     "layer-dependency",
				Severity:   domain.SeverityError,
				ModulePath: e.From,
				Locator:    domain.Locator(e.Member, e.Line),
				Code:       CodeLayerInversion,
				Message: fmt.Sprintf("%s layer module depends on %s layer module %s via %s",
					from.Layer, to.Layer, e.To, e.Kind),
			})
		case fromRank == toRank:
			// Infrastructure ↔ Api.
			out = append(out, domain.Violation{
				RuleID:     "layer-dependency",
				Severity:   domain.SeverityError,
				ModulePath: e.From,
				Locator:    domain.Locator(e.Member, e.Line),
				Code:       CodeLayerCross,
				Message: fmt.Sprintf("%s layer module depends on peer %s layer module %s via %s",
					from.Layer, to.Layer, e.To, e.Kind),
			})
		}
	}
	return out
}
