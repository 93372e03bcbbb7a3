// Package planner builds branch expiration plans.
//
// A Plan maps a project path to the branches slated for deletion and the
// timestamp of each branch's last commit. Plans are built from a stale-branch
// inventory, reviewed as YAML or JSON files, and later executed by the engine.
//
// Key responsibilities:
//   - Hold the Plan value with idempotent branch registration
//   - Fold inventory results into a Plan (Builder)
//   - Provide deterministic iteration order for display and execution
package planner
