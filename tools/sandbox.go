package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/agentchat/agentchat/llmwire"
)

const sandboxTimeout = 5 * time.Second

// ExecuteJSTool runs model-supplied JavaScript inside an isolated goja
// runtime: a fresh ECMAScript realm per call with no host state, no network,
// and no filesystem. Console output is captured into a buffer, the code body
// runs inside a strict-mode function wrapper, and the {output, result,
// hadError} triple comes back over a one-shot channel. A hard wall-clock
// bound interrupts the runtime and tears it down on the timeout path.
//
// The sandbox is illustrative, not hardened against a determined adversary.
type ExecuteJSTool struct {
	timeout time.Duration
}

// NewExecuteJSTool creates an ExecuteJSTool with the standard 5 second bound.
func NewExecuteJSTool() *ExecuteJSTool {
	return &ExecuteJSTool{timeout: sandboxTimeout}
}

func (t *ExecuteJSTool) Name() string { return "execute_javascript" }

func (t *ExecuteJSTool) Spec() llmwire.ToolSpec {
	return llmwire.ToolSpec{
		Name:        "execute_javascript",
		Description: "Execute JavaScript code securely in a sandbox and return results",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "The JavaScript code to execute",
				},
			},
			"required": []string{"code"},
		},
	}
}

type executeJSArgs struct {
	Code string `json:"code"`
}

// jsOutcome is the one-shot message from the executing goroutine.
type jsOutcome struct {
	output   string
	result   any
	hasValue bool
	hadError bool
}

func (t *ExecuteJSTool) Execute(ctx context.Context, args json.RawMessage) string {
	var in executeJSArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return mustJSON(map[string]any{
			"output":  "",
			"error":   "invalid arguments: " + err.Error(),
			"success": false,
		})
	}

	vm := goja.New()
	done := make(chan jsOutcome, 1)

	go runSandboxed(vm, in.Code, done)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.hadError {
			return mustJSON(map[string]any{
				"output":  out.output,
				"error":   "Code execution failed",
				"success": false,
			})
		}
		payload := map[string]any{
			"output":  out.output,
			"success": true,
		}
		if out.hasValue {
			payload["result"] = out.result
		}
		return mustJSON(payload)

	case <-ctx.Done():
		vm.Interrupt("cancelled")
		return mustJSON(map[string]any{
			"output":  "",
			"error":   "Code execution cancelled",
			"success": false,
		})

	case <-timer.C:
		// Interrupt unwinds the runtime; the goroutine exits and the realm
		// is discarded with it.
		vm.Interrupt("execution timed out")
		return mustJSON(map[string]any{
			"output":  "",
			"error":   "Code execution timeout (5 seconds)",
			"success": false,
		})
	}
}

// runSandboxed executes code inside vm and delivers exactly one outcome.
// Nothing in here touches host state: the realm sees only the console shim.
func runSandboxed(vm *goja.Runtime, code string, done chan<- jsOutcome) {
	var buf strings.Builder
	installConsole(vm, &buf)

	value, err := vm.RunString("(function() {\n\"use strict\";\n" + code + "\n})()")
	if err != nil {
		if _, interrupted := err.(*goja.InterruptedError); interrupted {
			// Caller already settled on the timeout path.
			return
		}
		buf.WriteString("EXECUTION ERROR: " + exceptionMessage(err) + "\n")
		done <- jsOutcome{output: TruncateOutput(strings.TrimSpace(buf.String()), defaultOutputLimit), hadError: true}
		return
	}

	out := jsOutcome{output: TruncateOutput(strings.TrimSpace(buf.String()), defaultOutputLimit)}
	if out.output == "" {
		out.output = "no output"
	}
	if value != nil && !goja.IsUndefined(value) && !goja.IsNull(value) {
		out.result = exportValue(value)
		out.hasValue = true
	}
	done <- out
}

// installConsole replaces the realm's console with one that writes into buf.
func installConsole(vm *goja.Runtime, buf *strings.Builder) {
	write := func(prefix string) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = formatValue(arg)
			}
			buf.WriteString(prefix + strings.Join(parts, " ") + "\n")
			return goja.Undefined()
		}
	}

	console := vm.NewObject()
	console.Set("log", write(""))
	console.Set("error", write("ERROR: "))
	console.Set("warn", write("WARN: "))
	console.Set("info", write("INFO: "))
	vm.Set("console", console)
}

// formatValue renders a value the way the console shim prints it: objects and
// arrays as indented JSON, everything else via its string conversion.
func formatValue(v goja.Value) string {
	switch exported := v.Export().(type) {
	case map[string]any, []any:
		if b, err := json.MarshalIndent(exported, "", "  "); err == nil {
			return string(b)
		}
		_ = exported
	}
	return v.String()
}

// exportValue converts a realm value into something JSON-marshalable,
// falling back to the string conversion for exotic exports (functions,
// symbols).
func exportValue(v goja.Value) any {
	exported := v.Export()
	if _, err := json.Marshal(exported); err != nil {
		return v.String()
	}
	return exported
}

// exceptionMessage extracts the thrown value's message from a goja error.
func exceptionMessage(err error) string {
	if ex, ok := err.(*goja.Exception); ok {
		return ex.Value().String()
	}
	return err.Error()
}
