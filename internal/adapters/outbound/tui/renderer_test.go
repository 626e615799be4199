package tui_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archlint/archlint/internal/adapters/outbound/tui"
	"github.com/archlint/archlint/internal/domain"
)

func sampleReport() *domain.Report {
	r := domain.NewReport(
		[]domain.Violation{
			{
				RuleID:     "layer-dependency",
				Severity:   domain.SeverityError,
				ModulePath: "src/main/java/com/shop/domain/PricingService.java",
				Locator:    "pricing:9",
				Code:       "LAYER_INVERSION",
				Message:    "domain module PricingService depends on infrastructure module LegacyPricingClient",
			},
			{
				RuleID:     "domain-purity",
				Severity:   domain.SeverityError,
				ModulePath: "src/main/java/com/shop/domain/Order.java",
				Locator:    ":3",
				Code:       "DOMAIN_FRAMEWORK_MARKER",
				Message:    "domain module Order carries framework marker @jakarta.persistence.Entity",
			},
			{
				RuleID:     "naming-convention",
				Severity:   domain.SeverityWarning,
				ModulePath: "src/main/java/com/shop/api/orderController.java",
				Code:       "TYPE_NAME_STYLE",
				Message:    "type name orderController is not UpperCamelCase",
			},
		},
		[]domain.Diagnostic{
			{
				Kind:    domain.DiagParseFailure,
				Path:    "src/main/java/com/shop/Broken.java",
				Message: "parsing src/main/java/com/shop/Broken.java: source contains syntax errors",
			},
		},
	)
	r.CommitHash = "0123456789abcdef0123456789abcdef01234567"
	return &r
}

func TestRenderReport_FailedVerdict(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	assert.Contains(t, output, "FAILED")
	assert.Contains(t, output, "2 errors")
	assert.Contains(t, output, "1 warnings")
}

func TestRenderReport_PassedVerdict(t *testing.T) {
	clean := domain.NewReport(nil, nil)
	output := tui.RenderReport(&clean, "demo/shop")
	assert.Contains(t, output, "PASSED")
	assert.Contains(t, output, "No violations found.")
}

func TestRenderReport_GroupsByModulePath(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	controller := strings.Index(output, "api/orderController.java")
	order := strings.Index(output, "domain/Order.java")
	pricing := strings.Index(output, "domain/PricingService.java")
	assert.True(t, controller >= 0 && order >= 0 && pricing >= 0)
	assert.True(t, controller < order, "module groups should be in path order")
	assert.True(t, order < pricing, "module groups should be in path order")
}

func TestRenderReport_ShowsCodes(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	assert.Contains(t, output, "LAYER_INVERSION")
	assert.Contains(t, output, "DOMAIN_FRAMEWORK_MARKER")
	assert.Contains(t, output, "TYPE_NAME_STYLE")
}

func TestRenderReport_ShowsLocators(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	assert.Contains(t, output, "pricing:9")
	assert.Contains(t, output, ":3")
}

func TestRenderReport_ShowsMessages(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	assert.Contains(t, output, "depends on infrastructure module LegacyPricingClient")
	assert.Contains(t, output, "@jakarta.persistence.Entity")
	assert.Contains(t, output, "not UpperCamelCase")
}

func TestRenderReport_ShowsSeverityTags(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	assert.Contains(t, output, "error")
	assert.Contains(t, output, "warn")
}

func TestRenderReport_ShortensCommitHash(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	assert.Contains(t, output, "0123456")
	assert.NotContains(t, output, "0123456789abcdef")
}

func TestRenderReport_ShowsDiagnostics(t *testing.T) {
	output := tui.RenderReport(sampleReport(), "demo/shop")
	assert.Contains(t, output, "Diagnostics")
	assert.Contains(t, output, "parse_failure")
	assert.Contains(t, output, "src/main/java/com/shop/Broken.java")
	assert.Contains(t, output, "syntax errors")
}

func TestRenderReport_OmitsDiagnosticsSectionWhenClean(t *testing.T) {
	clean := domain.NewReport(nil, nil)
	output := tui.RenderReport(&clean, "demo/shop")
	assert.NotContains(t, output, "Diagnostics")
}
