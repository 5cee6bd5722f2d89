// Package sheetwise executes structured spreadsheet action plans.
//
// Usage:
//
//	import "github.com/sheetwise-org/sheetwise/engine"
//
//	e := engine.New(
//	    engine.WithCleaningKeywords("clean", "tidy"),
//	)
//	result, err := e.Run(ds, p)
//
// The engine takes an action plan (produced by an external planner) and a
// Dataset, and returns a result bundle: the final rows, a human-readable
// summary, any scalar formula result, resolved chart selections, and a
// trace report of what changed.
//
// Plan generation is not part of this module. The engine never calls any
// external service — execution is local and deterministic.
package sheetwise
