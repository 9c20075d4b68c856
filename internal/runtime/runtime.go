// Package runtime executes JavaScript for the node command inside a
// sandboxed goja VM. Scripts get a console and nothing else: no require, no
// process, no timers.
package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// Config bounds one script execution.
type Config struct {
	Timeout      time.Duration
	MaxCallStack int
}

func DefaultConfig() Config {
	return Config{Timeout: 5 * time.Second, MaxCallStack: 1024}
}

// JS runs scripts in fresh VMs. A new VM per script keeps executions
// isolated and makes the runner safe for concurrent use.
type JS struct {
	config Config
}

func NewJS(config Config) *JS {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxCallStack <= 0 {
		config.MaxCallStack = DefaultConfig().MaxCallStack
	}
	return &JS{config: config}
}

// RunScript executes source and returns the captured console output. The
// final expression value, when not undefined, is appended as a trailing
// line the way a REPL would print it.
func (j *JS) RunScript(ctx context.Context, name, source string) (string, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(j.config.MaxCallStack)

	var console strings.Builder
	if err := setupGlobals(vm, &console); err != nil {
		return "", err
	}

	timer := time.NewTimer(j.config.Timeout)
	defer timer.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("interrupted")
		case <-done:
		}
	}()

	val, err := vm.RunScript(name, source)
	if err != nil {
		return console.String(), fmt.Errorf("%s: %w", name, err)
	}

	out := console.String()
	if val != nil && !goja.IsUndefined(val) && !goja.IsNull(val) {
		out += val.String() + "\n"
	}
	return out, nil
}

// setupGlobals installs the console and strips node-isms.
func setupGlobals(vm *goja.Runtime, console *strings.Builder) error {
	vm.Set("require", goja.Undefined())
	vm.Set("process", goja.Undefined())
	vm.Set("module", goja.Undefined())
	vm.Set("exports", goja.Undefined())
	vm.Set("setTimeout", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	vm.Set("setInterval", func(goja.FunctionCall) goja.Value { return goja.Undefined() })

	obj := vm.NewObject()
	write := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		console.WriteString(strings.Join(parts, " ") + "\n")
		return goja.Undefined()
	}
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := obj.Set(level, write); err != nil {
			return err
		}
	}
	return vm.Set("console", obj)
}
