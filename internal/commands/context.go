package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/archive"
	"github.com/vos-cloud/vshell/internal/expand"
	"github.com/vos-cloud/vshell/internal/store"
)

// JSRunner executes a JavaScript source string and returns its console
// output. Implemented by internal/runtime.
type JSRunner interface {
	RunScript(ctx context.Context, name, source string) (string, error)
}

// HTTPFetcher performs an outbound HTTP request on behalf of curl.
type HTTPFetcher interface {
	Fetch(ctx context.Context, method, url string, headers map[string]string, body string) (status int, respBody string, err error)
}

// Context carries everything a command needs for one invocation. Commands
// never mutate it; state changes (cd, export) are handled by the
// interpreter before dispatch.
type Context struct {
	Ctx     context.Context
	Project string
	Cwd     string
	Env     map[string]string
	Stdin   string

	Store   store.Store
	Expand  *expand.Expander
	Archive *archive.Codec
	JS      JSRunner
	HTTP    HTTPFetcher

	Log *zap.Logger
}

// Func is one command implementation. It returns the command's stdout; a
// non-nil error becomes the stage's stderr and exit code.
type Func func(cx *Context, argv []string) (string, error)

// Set maps command names to implementations.
type Set map[string]Func

// DefaultSet returns the full built-in command table.
func DefaultSet() Set {
	s := Set{}
	registerBasic(s)
	registerFS(s)
	registerText(s)
	registerArchive(s)
	registerNet(s)
	registerRuntime(s)
	return s
}

// expandArgs glob-expands every operand against the store. A pattern that
// matches nothing passes through verbatim so the command can report it.
func expandArgs(cx *Context, args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		matches, err := cx.Expand.Expand(cx.Ctx, cx.Cwd, a)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			out = append(out, a)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}
