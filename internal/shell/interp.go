package shell

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/archive"
	"github.com/vos-cloud/vshell/internal/commands"
	"github.com/vos-cloud/vshell/internal/expand"
	"github.com/vos-cloud/vshell/internal/session"
	"github.com/vos-cloud/vshell/internal/store"
	"github.com/vos-cloud/vshell/internal/vpath"
)

// Result is the outcome of one command line: the last stage's stdout, every
// stage's stderr concatenated, and the last stage's exit code.
type Result struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Code   int    `json:"exit_code"`
}

// Interpreter executes command lines against a project's virtual filesystem.
// It is safe for concurrent use across sessions; per-session serialization is
// the session's job.
type Interpreter struct {
	router *Router
	cmds   commands.Set
	store  store.Store
	js     commands.JSRunner
	http   commands.HTTPFetcher
	log    *zap.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithJSRunner wires the JavaScript runtime behind the node command.
func WithJSRunner(js commands.JSRunner) Option {
	return func(i *Interpreter) { i.js = js }
}

// WithHTTPFetcher wires outbound HTTP behind the curl command.
func WithHTTPFetcher(h commands.HTTPFetcher) Option {
	return func(i *Interpreter) { i.http = h }
}

// WithExtensions plugs host commands into routing.
func WithExtensions(ext ExtensionRegistry) Option {
	return func(i *Interpreter) { i.router = NewRouter(ext) }
}

func NewInterpreter(st store.Store, log *zap.Logger, opts ...Option) *Interpreter {
	i := &Interpreter{
		router: NewRouter(nil),
		cmds:   commands.DefaultSet(),
		store:  st,
		log:    log,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Router exposes the interpreter's routing table.
func (i *Interpreter) Router() *Router { return i.router }

// Run executes one command line in the session. Pipelines continue past a
// failing stage: the failure's diagnostic goes to stderr and the next stage
// reads empty stdin. Cancellation of ctx stops between stages with code 130.
func (i *Interpreter) Run(ctx context.Context, sess *session.Session, line string) Result {
	start := time.Now()
	res := i.run(ctx, sess, line)
	i.log.Debug("command line executed",
		zap.String("session_id", sess.ID),
		zap.String("project_id", sess.ProjectID),
		zap.Int("exit_code", res.Code),
		zap.Duration("duration", time.Since(start)),
	)
	return res
}

func (i *Interpreter) run(ctx context.Context, sess *session.Session, line string) Result {
	line = strings.TrimSpace(line)
	if line == "" {
		return Result{}
	}

	segments := SplitPipes(line)
	var stderr strings.Builder
	stdin, stdout := "", ""
	code := 0

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			stderr.WriteString("interrupted\n")
			return Result{Stderr: stderr.String(), Code: 130}
		}
		tokens := Tokenize(seg)
		if len(tokens) == 0 {
			return Result{Stderr: "syntax error near unexpected token `|'\n", Code: commands.CodeUsage}
		}

		out, errText, c := i.runSegment(ctx, sess, tokens, stdin)
		stdout, code = out, c
		if errText != "" {
			stderr.WriteString(errText)
			if !strings.HasSuffix(errText, "\n") {
				stderr.WriteString("\n")
			}
		}
		if code != 0 {
			stdin = ""
		} else {
			stdin = stdout
		}
	}
	return Result{Stdout: stdout, Stderr: stderr.String(), Code: code}
}

func (i *Interpreter) runSegment(ctx context.Context, sess *session.Session, tokens []string, stdin string) (string, string, int) {
	name, argv := tokens[0], tokens[1:]

	switch i.router.Categorize(name) {
	case CategoryExtension:
		out, err := i.router.ext.Execute(ctx, name, argv, stdin)
		if err != nil {
			return out, err.Error(), commands.ExitCode(err)
		}
		return out, "", 0

	case CategoryBuiltin:
		switch strings.ToLower(name) {
		case "cd":
			return i.builtinCd(ctx, sess, argv)
		case "export":
			return builtinExport(sess, argv)
		case "which":
			return i.builtinWhich(argv)
		case "sh":
			return i.builtinSh(ctx, sess, argv)
		}
		return i.dispatch(ctx, sess, name, argv, stdin)

	case CategoryUnix:
		return i.dispatch(ctx, sess, name, argv, stdin)

	case CategoryRuntime:
		if _, ok := i.cmds[strings.ToLower(name)]; ok {
			return i.dispatch(ctx, sess, name, argv, stdin)
		}
		return "", name + ": runtime not configured", 1

	case CategoryTool:
		if _, ok := i.cmds[strings.ToLower(name)]; ok {
			return i.dispatch(ctx, sess, name, argv, stdin)
		}
		return "", name + ": tool not configured", 1

	default:
		return "", "Command not found", commands.CodeNotFound
	}
}

// dispatch runs a command from the table with a fresh invocation context.
func (i *Interpreter) dispatch(ctx context.Context, sess *session.Session, name string, argv []string, stdin string) (string, string, int) {
	fn, ok := i.cmds[strings.ToLower(name)]
	if !ok {
		return "", "Command not found", commands.CodeNotFound
	}
	exp := expand.New(i.store, sess.ProjectID)
	cx := &commands.Context{
		Ctx:     ctx,
		Project: sess.ProjectID,
		Cwd:     sess.Cwd,
		Env:     sess.Env,
		Stdin:   stdin,
		Store:   i.store,
		Expand:  exp,
		Archive: archive.New(i.store, exp, sess.ProjectID),
		JS:      i.js,
		HTTP:    i.http,
		Log:     i.log,
	}
	out, err := fn(cx, argv)
	if err != nil {
		return out, err.Error(), commands.ExitCode(err)
	}
	return out, "", 0
}

func (i *Interpreter) builtinCd(ctx context.Context, sess *session.Session, argv []string) (string, string, int) {
	target := vpath.Root
	if len(argv) > 0 {
		target = vpath.Resolve(sess.Cwd, argv[0])
	}
	if !vpath.IsRoot(target) {
		f, err := i.store.GetByPath(ctx, sess.ProjectID, target)
		if err != nil {
			return "", "cd: " + err.Error(), 1
		}
		if f != nil && !f.IsDir() {
			return "", "cd: " + argv[0] + ": Not a directory", 1
		}
		if f == nil {
			kids, err := i.store.ListByPrefix(ctx, sess.ProjectID, target)
			if err != nil {
				return "", "cd: " + err.Error(), 1
			}
			if len(kids) == 0 {
				return "", "cd: " + argv[0] + ": No such file or directory", 1
			}
		}
	}
	sess.Cwd = target
	return "", "", 0
}

// builtinExport sets K=V pairs in the session environment. A bare name is
// accepted and ignored, matching interactive shells closely enough.
func builtinExport(sess *session.Session, argv []string) (string, string, int) {
	if len(argv) == 0 {
		keys := make([]string, 0, len(sess.Env))
		for k := range sess.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			b.WriteString("export " + k + "=" + sess.Env[k] + "\n")
		}
		return b.String(), "", 0
	}
	for _, a := range argv {
		if k, v, ok := strings.Cut(a, "="); ok && k != "" {
			sess.Env[k] = v
		}
	}
	return "", "", 0
}

func (i *Interpreter) builtinWhich(argv []string) (string, string, int) {
	if len(argv) == 0 {
		return "", "which: missing argument", commands.CodeUsage
	}
	var b strings.Builder
	code := 0
	for _, name := range argv {
		info, ok := i.router.CommandInfo(name)
		if !ok {
			b.WriteString("which: no " + name + "\n")
			code = 1
			continue
		}
		if info.Category == CategoryBuiltin {
			b.WriteString(info.Name + ": shell built-in command\n")
		} else {
			b.WriteString("/usr/bin/" + info.Name + "\n")
		}
	}
	return b.String(), "", code
}

// builtinSh replays a stored script line by line. Blank lines and # comments
// are skipped; the script's exit code is its last line's.
func (i *Interpreter) builtinSh(ctx context.Context, sess *session.Session, argv []string) (string, string, int) {
	if len(argv) == 0 {
		return "", "sh: missing script operand", commands.CodeUsage
	}
	path := vpath.Resolve(sess.Cwd, argv[0])
	f, err := i.store.GetByPath(ctx, sess.ProjectID, path)
	if err != nil {
		return "", "sh: " + err.Error(), 1
	}
	if f == nil {
		return "", "sh: " + argv[0] + ": No such file or directory", 127
	}
	if f.IsDir() {
		return "", "sh: " + argv[0] + ": Is a directory", 1
	}

	var stdout, stderr strings.Builder
	code := 0
	for _, raw := range strings.Split(f.Content, "\n") {
		lineText := strings.TrimSpace(raw)
		if lineText == "" || strings.HasPrefix(lineText, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			stderr.WriteString("interrupted\n")
			return stdout.String(), stderr.String(), 130
		}
		res := i.run(ctx, sess, lineText)
		stdout.WriteString(res.Stdout)
		stderr.WriteString(res.Stderr)
		code = res.Code
	}
	return stdout.String(), stderr.String(), code
}
