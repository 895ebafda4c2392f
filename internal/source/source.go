package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Directories that never hold project documentation.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"build":        true,
	"dist":         true,
	"target":       true,
	"__pycache__":  true,
}

// Directories that conventionally hold documentation. Files under these
// are surfaced ahead of the rest of the tree.
var docDirs = map[string]bool{
	"docs":          true,
	"doc":           true,
	"documentation": true,
	"guides":        true,
	"guide":         true,
	"examples":      true,
	"tutorials":     true,
	"wiki":          true,
}

// Provider fetches a documentation tree and discovers the files in it.
type Provider struct {
	extensions map[string]bool
	git        *GitRunner
}

// NewProvider creates a Provider that recognizes files with the given
// extensions (with leading dot, e.g. ".md").
func NewProvider(extensions []string) *Provider {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[strings.ToLower(e)] = true
	}
	return &Provider{extensions: exts, git: NewGitRunner()}
}

// Fetch makes the documentation tree for input available on local disk
// and returns its root directory. Local directories are used in place;
// remote repositories are shallow-cloned under workDir.
func (p *Provider) Fetch(ctx context.Context, input, workDir string) (string, error) {
	repo, err := Classify(input)
	if err != nil {
		return "", err
	}

	if repo.Kind == KindLocal {
		abs, err := filepath.Abs(repo.URL)
		if err != nil {
			return "", fmt.Errorf("resolving path %q: %w", repo.URL, err)
		}
		return abs, nil
	}

	repo.ResolveBranch(ctx)

	dest := filepath.Join(workDir, repo.Name)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	if err := p.git.Clone(ctx, repo.URL, repo.Branch, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Discover walks root and returns documentation files matching the
// configured extensions. Files under conventional documentation
// directories come first; within each group paths are sorted.
func (p *Provider) Discover(root string) ([]string, error) {
	var inDocs, rest []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] || (strings.HasPrefix(d.Name(), ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		if !p.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if underDocDir(root, path) {
			inDocs = append(inDocs, path)
		} else {
			rest = append(rest, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(inDocs)
	sort.Strings(rest)
	return append(inDocs, rest...), nil
}

func underDocDir(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if docDirs[strings.ToLower(part)] {
			return true
		}
	}
	return false
}
