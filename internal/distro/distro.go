// Package distro resolves the installed TeX distribution: which packages
// and document classes are available on this machine. Resolution is
// expensive and runs at most once per process, behind a deferred value.
package distro

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies a resolution failure for user-facing reporting.
type Kind int

const (
	// KindNotInstalled means no TeX distribution was found on PATH.
	KindNotInstalled Kind = iota
	// KindUnsupported means a distribution exists but could not be queried.
	KindUnsupported
	// KindCorrupt means the distribution's file database is unusable.
	KindCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindNotInstalled:
		return "no TeX distribution installed"
	case KindUnsupported:
		return "unsupported TeX distribution"
	default:
		return "corrupt TeX installation"
	}
}

// Error is a classified resolution failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Resolver knows the component files of the installed distribution. It is
// immutable after construction and safe for concurrent reads.
type Resolver struct {
	packages []string
	classes  []string
	known    map[string]bool
}

// Empty returns the degraded fallback resolver with no known components.
func Empty() *Resolver {
	return &Resolver{known: make(map[string]bool)}
}

// Packages lists the available package names, sorted.
func (r *Resolver) Packages() []string { return r.packages }

// Classes lists the available document class names, sorted.
func (r *Resolver) Classes() []string { return r.classes }

// Knows reports whether name is an available package or class.
func (r *Resolver) Knows(name string) bool { return r.known[name] }

// Load resolves the distribution by querying kpsewhich for the texmf root
// and walking it for style and class files.
func Load(ctx context.Context) (*Resolver, error) {
	kpsewhich, err := exec.LookPath("kpsewhich")
	if err != nil {
		return nil, &Error{Kind: KindNotInstalled, Err: err}
	}

	output, err := exec.CommandContext(ctx, kpsewhich, "--var-value", "TEXMFDIST").Output()
	if err != nil {
		return nil, &Error{Kind: KindUnsupported, Err: err}
	}
	root := strings.TrimSpace(string(output))
	if root == "" {
		return nil, &Error{Kind: KindUnsupported, Err: fmt.Errorf("empty TEXMFDIST")}
	}
	if _, err := os.Stat(root); err != nil {
		return nil, &Error{Kind: KindCorrupt, Err: err}
	}

	resolver, err := scan(root)
	if err != nil {
		return nil, &Error{Kind: KindCorrupt, Err: err}
	}
	return resolver, nil
}

// scan walks the texmf tree collecting component file basenames.
func scan(root string) (*Resolver, error) {
	resolver := Empty()

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return walkError(entry)
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		switch filepath.Ext(name) {
		case ".sty":
			if !resolver.known[base] {
				resolver.packages = append(resolver.packages, base)
			}
		case ".cls":
			if !resolver.known[base] {
				resolver.classes = append(resolver.classes, base)
			}
		default:
			return nil
		}
		resolver.known[base] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(resolver.known) == 0 {
		return nil, fmt.Errorf("no components under %s", root)
	}

	sort.Strings(resolver.packages)
	sort.Strings(resolver.classes)
	return resolver, nil
}

// walkError decides how the scan continues after a walk error. Unreadable
// directories are skipped as a whole; an error on a single entry must not
// discard the rest of its directory.
func walkError(entry fs.DirEntry) error {
	if entry != nil && entry.IsDir() {
		return fs.SkipDir
	}
	return nil
}
