package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/archlint/archlint/internal/domain"
)

// registerResources registers all ArchLint MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. archlint://report - current conformance report
	s.AddResource(
		mcplib.NewResource(
			"archlint://report",
			"Validation Report",
			mcplib.WithResourceDescription("Current architecture conformance report for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(projectPath),
	)

	// 2. archlint://graph - dependency graph
	s.AddResource(
		mcplib.NewResource(
			"archlint://graph",
			"Dependency Graph",
			mcplib.WithResourceDescription("Module dependency graph with layer traffic and cycles"),
			mcplib.WithMIMEType("application/json"),
		),
		handleGraphResource(projectPath),
	)

	// 3. archlint://modules/{name} - per-type classification (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"archlint://modules/{name}",
			"Module Detail",
			mcplib.WithTemplateDescription("Classification, markers, and operations of the modules matching a type name"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleModuleResource(projectPath),
	)
}

func handleReportResource(projectPath string) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := loadConfig(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		report, err := newService().Validate(ctx, projectPath, domain.AspectAll, cfg)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "archlint://report",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleGraphResource(projectPath string) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := loadConfig(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		_, g, _, err := newService().Inspect(ctx, projectPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}

		data, err := json.MarshalIndent(dumpGraph(g), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling graph: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "archlint://graph",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

type moduleDetail struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Package    string   `json:"package"`
	Kind       string   `json:"kind"`
	Layer      string   `json:"layer"`
	Role       string   `json:"role"`
	Markers    []string `json:"markers"`
	Operations []string `json:"operations"`
}

func handleModuleResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		// Extract the type name from the arguments (populated by template matching)
		moduleName, ok := request.Params.Arguments["name"].(string)
		if !ok || moduleName == "" {
			return nil, fmt.Errorf("module name is required")
		}

		cfg, err := loadConfig(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		model, _, _, err := newService().Inspect(ctx, projectPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}

		// Simple names are not unique across packages, so this returns
		// every module carrying the requested name.
		var matches []moduleDetail
		for _, m := range model.Modules() {
			if m.Name != moduleName {
				continue
			}
			detail := moduleDetail{
				Path:       m.Path,
				Name:       m.Name,
				Package:    m.Package,
				Kind:       string(m.Kind),
				Layer:      string(m.Layer),
				Role:       string(m.Role),
				Markers:    []string{},
				Operations: []string{},
			}
			for _, mk := range m.Markers {
				detail.Markers = append(detail.Markers, "@"+mk.Name)
			}
			for _, op := range m.Operations {
				detail.Operations = append(detail.Operations, operationSignature(op))
			}
			matches = append(matches, detail)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no module named %q in project", moduleName)
		}

		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling module detail: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
