// Package tools implements the tool catalog behind the reasoning loop: a
// name-to-handler registry plus the three built-in handlers (web search, a
// simulated AI pipeline, and sandboxed JavaScript execution).
//
// Every handler absorbs its own failures: instead of returning an error it
// produces a JSON payload with a top-level "error" key and the echoed input
// fields, so a single tool failure degrades into transcript information the
// model can react to rather than aborting the run. The only error the
// registry itself surfaces is UnknownToolError for names outside the catalog.
package tools
