package rules

import (
	"fmt"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
)

// CQRSSeparation keeps the write and read sides apart: a CommandHandler's
// public operations may return nothing or a minimal acknowledgement (an
// identifier-like value), never state; a QueryHandler may not invoke a
// mutating call on a repository or client dependency.
func CQRSSeparation() Rule {
	return Rule{
		ID:       "cqrs-separation",
		Category: CategoryCQRSSeparation,
		Severity: domain.SeverityError,
		Evaluate: evaluateCQRSSeparation,
	}
}

func evaluateCQRSSeparation(model *domain.ProjectModel, g *graph.Graph) []domain.Violation {
	var out []domain.Violation

	for _, path := range model.ByRole(domain.RoleCommandHandler) {
		m := model.Module(path)
		for _, op := range m.Operations {
			if allowedAcknowledgement(op) {
				continue
			}
			out = append(out, domain.Violation{
				RuleID:     "cqrs-separation",
				Severity:   domain.SeverityError,
				ModulePath: path,
				Locator:    domain.Locator(op.Name, op.Line),
				Code:       CodeCommandReturnsState,
				Message: fmt.Sprintf("command handler operation %s returns %s; commands must return void or an identifier",
					op.Name, op.ReturnType),
			})
		}
	}

	for _, path := range model.ByRole(domain.RoleQueryHandler) {
		for _, e := range g.Edges(path) {
			if e.Kind != domain.RefCallSite || e.External() {
				continue
			}
			switch model.Module(e.To).Role {
			case domain.RoleRepository, domain.RoleRepositoryPort, domain.RoleClient:
			default:
				continue
			}
			if !domain.IsMutationCall(e.Call) {
				continue
			}
			out = append(out, domain.Violation{
				RuleID:     "cqrs-separation",
				Severity:   domain.SeverityError,
				ModulePath: path,
				Locator:    domain.Locator(e.Member, e.Line),
				Code:       CodeQueryMutatesState,
				Message: fmt.Sprintf("query handler calls mutating %s.%s; queries must not change state",
					e.Symbol, e.Call),
			})
		}
	}

	return out
}

// allowedAcknowledgement reports whether a command handler operation's
// return shape is acceptable: void always, identifier-like values as a
// creation acknowledgement. Entity returns and in-project data carriers
// fail; unresolvable external types get the benefit of the doubt.
func allowedAcknowledgement(op domain.Operation) bool {
	switch op.Returns {
	case domain.ReturnVoid:
		return true
	case domain.ReturnEntity:
		return false
	case domain.ReturnValue:
		return domain.IsIdentifierLike(op.ReturnType)
	default:
		return true
	}
}
