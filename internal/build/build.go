// Package build compiles documents by invoking the configured external
// build tool on the root of the include hierarchy.
package build

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"vellum/internal/workspace"
)

var log = commonlog.GetLogger("vellum.build")

// Kind classifies a build failure.
type Kind int

const (
	// KindToolMissing means the configured executable is not on PATH.
	KindToolMissing Kind = iota
	// KindNotLocal means the document has no filesystem path to build.
	KindNotLocal
)

func (k Kind) String() string {
	switch k {
	case KindToolMissing:
		return "build tool not found"
	default:
		return "document is not a local file"
	}
}

// Error is a classified failure that prevented the tool from running at
// all. A tool that runs and exits non-zero is not an Error; it is a Result
// with Success false.
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

// Config selects the build tool. Zero values fall back to latexmk with its
// conventional batch flags.
type Config struct {
	Executable string
	Args       []string

	ForwardSearchExecutable string
	ForwardSearchArgs       []string
}

func (c Config) executable() string {
	if c.Executable == "" {
		return "latexmk"
	}
	return c.Executable
}

func (c Config) args() []string {
	if c.Args == nil {
		return []string{"-pdf", "-interaction=nonstopmode", "-synctex=1", "%f"}
	}
	return c.Args
}

// Result is the outcome of a tool run.
type Result struct {
	Success bool
	Log     string
}

// Runner builds documents. Every build targets the parent root of the
// requested document, so compiling from a child file builds the whole
// hierarchy.
type Runner struct {
	Workspace *workspace.Workspace
	Config    Config

	// OnProgress, when set, receives a short status line before and after
	// each run.
	OnProgress func(message string)
}

func NewRunner(ws *workspace.Workspace, config Config) *Runner {
	return &Runner{Workspace: ws, Config: config}
}

// Build compiles the hierarchy containing docURI. The returned Result
// carries the tool's combined output; a non-zero exit is reported through
// Result.Success, not through the error.
func (r *Runner) Build(ctx context.Context, docURI string) (Result, error) {
	root := r.Workspace.FindParent(docURI)
	path, ok := workspace.Path(root.URI)
	if !ok {
		return Result{}, &Error{Kind: KindNotLocal}
	}

	executable, err := exec.LookPath(r.Config.executable())
	if err != nil {
		return Result{}, &Error{Kind: KindToolMissing, Err: err}
	}

	args := substitute(r.Config.args(), path, 0)
	r.progress(fmt.Sprintf("building %s", filepath.Base(path)))
	log.Infof("running %s %s", executable, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Dir = filepath.Dir(path)
	output, err := cmd.CombinedOutput()

	result := Result{Success: err == nil, Log: string(output)}
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, isExit := err.(*exec.ExitError); !isExit {
			return result, fmt.Errorf("running %s: %w", executable, err)
		}
		r.progress("build failed")
		return result, nil
	}

	r.progress("build finished")
	return result, nil
}

// ForwardSearch asks the configured viewer to jump to the given line of the
// compiled document. It is a no-op when no viewer is configured.
func (r *Runner) ForwardSearch(ctx context.Context, docURI string, line uint32) error {
	if r.Config.ForwardSearchExecutable == "" {
		return nil
	}

	path, ok := workspace.Path(docURI)
	if !ok {
		return &Error{Kind: KindNotLocal}
	}

	executable, err := exec.LookPath(r.Config.ForwardSearchExecutable)
	if err != nil {
		return &Error{Kind: KindToolMissing, Err: err}
	}

	args := substitute(r.Config.ForwardSearchArgs, path, line)
	log.Infof("forward search: %s %s", executable, strings.Join(args, " "))
	return exec.CommandContext(ctx, executable, args...).Run()
}

// substitute expands the placeholders understood in configured argument
// lists: %f is the source path, %p the compiled PDF next to it, %l the
// one-based line number.
func substitute(args []string, path string, line uint32) []string {
	pdf := strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
	expanded := make([]string, len(args))
	for i, arg := range args {
		arg = strings.ReplaceAll(arg, "%f", path)
		arg = strings.ReplaceAll(arg, "%p", pdf)
		arg = strings.ReplaceAll(arg, "%l", strconv.FormatUint(uint64(line+1), 10))
		expanded[i] = arg
	}
	return expanded
}

func (r *Runner) progress(message string) {
	if r.OnProgress != nil {
		r.OnProgress(message)
	}
}
