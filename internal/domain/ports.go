package domain

import "context"

// ProjectScanner walks a project tree and parses every recognized source
// file into its structural form.
type ProjectScanner interface {
	Scan(ctx context.Context, projectPath string, cfg ProjectConfig) (*ScanResult, error)
}

// LanguageParser parses one source file into its structural form. Path is
// the slash-relative module path recorded on the result.
type LanguageParser interface {
	Parse(ctx context.Context, path string, src []byte) (*SourceFile, error)
	Extensions() []string
}

// ConfigLoader resolves project configuration from disk. Load falls back
// to defaults when the project carries no config file; LoadFile requires
// the named file to exist.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
	LoadFile(path string) (ProjectConfig, error)
}

// GitInfo reads version-control metadata for report stamping.
type GitInfo interface {
	CommitHash(projectPath string) string
}
