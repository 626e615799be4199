package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/archlint/archlint/internal/domain"
)

var skipDirs = map[string]bool{
	".git":         true,
	".idea":        true,
	"target":       true,
	"build":        true,
	"out":          true,
	"node_modules": true,
}

// FileScanner implements domain.ProjectScanner: it walks the project tree,
// parses every recognized source file on a bounded worker pool, and
// assembles the result once after all workers have finished. One file's
// parse failure never aborts the scan of the others.
type FileScanner struct {
	parser domain.LanguageParser
}

func New(parser domain.LanguageParser) *FileScanner {
	return &FileScanner{parser: parser}
}

func (s *FileScanner) Scan(ctx context.Context, projectPath string, cfg domain.ProjectConfig) (*domain.ScanResult, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", absPath)
	}

	extensions := make(map[string]bool)
	for _, ext := range s.parser.Extensions() {
		extensions[ext] = true
	}
	excludes := normalizeExcludes(cfg.ExcludePaths)

	var paths []string
	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(absPath, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (skipDirs[d.Name()] || excluded(rel, excludes)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !extensions[filepath.Ext(d.Name())] || excluded(rel, excludes) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absPath, err)
	}
	sort.Strings(paths)

	result := &domain.ScanResult{RootPath: absPath}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(absPath, filepath.FromSlash(rel)))
			if err != nil {
				mu.Lock()
				result.Failures = append(result.Failures, domain.Diagnostic{
					Kind:    domain.DiagParseFailure,
					Path:    rel,
					Message: err.Error(),
				})
				mu.Unlock()
				return nil
			}
			file, err := s.parser.Parse(gctx, rel, data)
			if err != nil {
				mu.Lock()
				result.Failures = append(result.Failures, domain.Diagnostic{
					Kind:    domain.DiagParseFailure,
					Path:    rel,
					Message: err.Error(),
				})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			result.Files = append(result.Files, *file)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Workers finish in arbitrary order; normalize so a fixed tree always
	// yields an identical result.
	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})
	return result, nil
}

func normalizeExcludes(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.Trim(filepath.ToSlash(p), "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// excluded matches a relative path against configured excludes, either as
// an exact path, a path prefix, or a bare directory name anywhere in the
// tree (the latter mirrors plain names like "generated").
func excluded(rel string, excludes []string) bool {
	for _, ex := range excludes {
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
		if !strings.Contains(ex, "/") {
			for _, seg := range strings.Split(rel, "/") {
				if seg == ex {
					return true
				}
			}
		}
	}
	return false
}
