// Package errors provides structured, actionable error values for Loom.
//
// Every fatal engine condition carries an error code (e.g., "E001") that
// maps to a short message, a detailed explanation, and a documentation URL.
// Contract breaches inside the engine panic with a *LoomError so the code,
// the offending node, and the hook slot index survive into crash reports.
//
// # Error Categories
//
// Errors are organized into categories:
//   - runtime: engine contract breaches (hook order, missing store entries)
//   - protocol: devtools frame and archive errors
//   - config: loom.yaml loading and validation errors
//   - cli: command-line usage errors
//
// # Usage
//
//	err := errors.New("E001").
//	    WithNode(uint64(id)).
//	    WithSlot(3).
//	    WithSuggestion("Move the hook call out of the if statement")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Hook order changed between renders
//	//
//	//   node 42, hook slot 3
//	//
//	//   A component called a different number or sequence of hooks ...
//	//
//	//   Hint: Move the hook call out of the if statement
//	//
//	//   Learn more: https://loom.dev/docs/errors/E001
package errors
