package rules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
)

// markerSuffixes pairs a role-defining marker with the suffix the type
// name is conventionally expected to carry.
var markerSuffixes = []struct {
	Marker string
	Suffix string
}{
	{"Repository", "Repository"},
	{"RestController", "Controller"},
	{"Controller", "Controller"},
}

// NamingConvention is the style aspect's slice of this core: type names
// must be UpperCamelCase, and marker-defined roles should carry their
// conventional suffix. Findings are warnings, never errors.
func NamingConvention() Rule {
	return Rule{
		ID:       "naming-convention",
		Category: CategoryNaming,
		Severity: domain.SeverityWarning,
		Evaluate: evaluateNaming,
	}
}

func evaluateNaming(model *domain.ProjectModel, _ *graph.Graph) []domain.Violation {
	var out []domain.Violation
	for _, path := range model.Paths() {
		m := model.Module(path)

		if !isUpperCamel(m.Name) {
			out = append(out, domain.Violation{
				RuleID:     "naming-convention",
				Severity:   domain.SeverityWarning,
				ModulePath: path,
				Code:       CodeTypeNameStyle,
				Message:    fmt.Sprintf("type name %s is not UpperCamelCase", m.Name),
			})
		}

		for _, ms := range markerSuffixes {
			if !m.HasMarker(ms.Marker) {
				continue
			}
			if strings.HasSuffix(m.Name, ms.Suffix) {
				continue
			}
			out = append(out, domain.Violation{
				RuleID:     "naming-convention",
				Severity:   domain.SeverityWarning,
				ModulePath: path,
				Code:       CodeRoleSuffixMismatch,
				Message: fmt.Sprintf("type %s carries @%s but lacks the %s suffix",
					m.Name, ms.Marker, ms.Suffix),
			})
			break
		}
	}
	return out
}

func isUpperCamel(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "_-") {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}
