package bptree

import (
	"github.com/KilimcininKorOglu/bptree/query"
)

// plan is the result of compiling a query.Condition into a concrete scan:
// which predicate drives the descent and termination, everything else
// applied as a post-filter over what the driver yields.
type plan[V any] struct {
	driver     query.Tag
	hasDriver  bool
	rule       query.Rule
	target     V
	set        []V
	predicate  query.Predicate[V]
	postFilter []query.Predicate[V]
}

// compilePlan chooses a driver predicate by query.Driver's fixed
// precedence and packages the remaining predicates as a post-filter. A
// condition with no predicates compiles to a full forward scan.
func compilePlan[V any](cond query.Condition[V]) plan[V] {
	driver, ok := query.Driver(cond)
	if !ok {
		return plan[V]{
			hasDriver: false,
			rule:      query.Rule{Start: query.StartLeftmostLeaf, End: query.EndNone, Direction: 1},
		}
	}

	pred, _ := cond.Get(driver)
	p := plan[V]{
		driver:     driver,
		hasDriver:  true,
		rule:       query.RuleFor(driver),
		predicate:  pred,
		postFilter: query.PostFilter(cond, driver),
	}

	switch p.rule.Start {
	case query.StartLowestOfSetFull, query.StartLowestOfSetPrimary:
		if set, ok := pred.Arg.([]V); ok {
			p.set = set
		}
	case query.StartLeftmostLeaf:
		// Like and the negation tags scan the whole chain; no descent target.
	default:
		if v, ok := pred.Arg.(V); ok {
			p.target = v
		}
	}

	return p
}
