// Package source acquires the documentation tree for a run: it classifies
// the input (local path, GitHub or GitLab URL), resolves the repository's
// default branch through the hosting API, shallow-clones when needed, and
// discovers documentation files by extension with documentation-directory
// prioritization.
package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v68/github"
	"github.com/rs/zerolog/log"
	gitlab "github.com/xanzy/go-gitlab"
)

// Kind classifies where a documentation tree comes from.
type Kind string

const (
	KindLocal  Kind = "local"
	KindGitHub Kind = "github"
	KindGitLab Kind = "gitlab"
)

// Repo describes a classified documentation source.
type Repo struct {
	Kind   Kind
	URL    string // clone URL for remote kinds, absolute path for local
	Owner  string
	Name   string
	Branch string // empty until resolved
}

// Classify inspects the input: an existing local directory stays local;
// github.com and gitlab.com URLs are decomposed into owner, name, and an
// optional /tree/<branch> segment. Anything else is an error, which aborts
// the run.
func Classify(input string) (*Repo, error) {
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return &Repo{Kind: KindLocal, URL: input}, nil
	}

	parsed, err := url.Parse(input)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("not a directory or repository URL: %q", input)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("repository URL %q has no owner/name path", input)
	}

	repo := &Repo{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}
	if len(parts) >= 4 && parts[2] == "tree" {
		repo.Branch = parts[3]
	}

	switch {
	case strings.HasSuffix(parsed.Host, "github.com"):
		repo.Kind = KindGitHub
	case strings.HasSuffix(parsed.Host, "gitlab.com"):
		repo.Kind = KindGitLab
	default:
		return nil, fmt.Errorf("unsupported repository host: %s", parsed.Host)
	}

	repo.URL = fmt.Sprintf("https://%s/%s/%s.git", parsed.Host, repo.Owner, repo.Name)
	return repo, nil
}

// ResolveBranch fills in the default branch for remote repositories that
// did not name one, asking the hosting API. API failure degrades to
// "main" with a warning rather than aborting.
func (r *Repo) ResolveBranch(ctx context.Context) {
	if r.Kind == KindLocal || r.Branch != "" {
		return
	}

	branch, err := defaultBranch(ctx, r)
	if err != nil {
		log.Warn().Err(err).
			Str("repo", r.Owner+"/"+r.Name).
			Msg("could not resolve default branch, assuming main")
		branch = "main"
	}
	r.Branch = branch
}

func defaultBranch(ctx context.Context, r *Repo) (string, error) {
	switch r.Kind {
	case KindGitHub:
		client := github.NewClient(nil)
		repo, _, err := client.Repositories.Get(ctx, r.Owner, r.Name)
		if err != nil {
			return "", fmt.Errorf("github repository lookup: %w", err)
		}
		if repo.GetDefaultBranch() == "" {
			return "", fmt.Errorf("github reported no default branch")
		}
		return repo.GetDefaultBranch(), nil

	case KindGitLab:
		client, err := gitlab.NewClient("")
		if err != nil {
			return "", fmt.Errorf("gitlab client: %w", err)
		}
		project, _, err := client.Projects.GetProject(r.Owner+"/"+r.Name, nil, gitlab.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("gitlab project lookup: %w", err)
		}
		if project.DefaultBranch == "" {
			return "", fmt.Errorf("gitlab reported no default branch")
		}
		return project.DefaultBranch, nil

	default:
		return "", fmt.Errorf("no hosting API for kind %q", r.Kind)
	}
}
