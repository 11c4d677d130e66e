// Package query holds the closed set of predicate tags a condition can
// carry, the dispatch tables that turn a multi-predicate condition into a
// descent/scan plan, and the "like" pattern cache. It intentionally knows
// nothing about node storage or tree traversal — that lives in the root
// bptree package's planner.go/executor.go, which import these tables to
// decide where to descend and which leaves to walk.
package query
