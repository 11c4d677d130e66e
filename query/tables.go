package query

import (
	"regexp"

	"github.com/KilimcininKorOglu/bptree/ordering"
)

// StartKind says how the executor should choose its descent point for a
// given predicate's argument.
type StartKind int

const (
	// StartDescendFull descends via the insertion/equality descent (full
	// order, left-biased on ties) to the predicate's scalar argument.
	StartDescendFull StartKind = iota
	// StartDescendPrimary descends via the primary-only descent to the
	// predicate's scalar argument.
	StartDescendPrimary
	// StartDescendPrimaryRightmost descends via the rightmost-primary
	// descent, used by lte/primaryLte to find the high end of a backward
	// scan.
	StartDescendPrimaryRightmost
	// StartLeftmostLeaf starts from the leftmost leaf of the whole chain.
	StartLeftmostLeaf
	// StartLowestOfSetFull descends to the lowest-by-full-order member of
	// an Or argument set.
	StartLowestOfSetFull
	// StartLowestOfSetPrimary descends to the lowest-by-primary member of
	// a PrimaryOr argument set.
	StartLowestOfSetPrimary
)

// EndKind says how the executor should compute an (optional) terminator
// leaf bounding the scan.
type EndKind int

const (
	// EndNone means the scan walks to the end of the leaf chain (or the
	// beginning, for a backward scan).
	EndNone EndKind = iota
	// EndEqualRun bounds the contiguous run of values equal to Equal's
	// argument.
	EndEqualRun
	// EndPrimaryRun bounds the leaf just past the rightmost-primary match
	// for PrimaryEqual's argument.
	EndPrimaryRun
	// EndHighestOfSetFull is computed from the highest (full order) member
	// of an Or argument set.
	EndHighestOfSetFull
	// EndHighestOfSetPrimary is computed from the highest (primary order)
	// member of a PrimaryOr argument set.
	EndHighestOfSetPrimary
)

// Rule is the pure, tag-keyed metadata the spec calls the startNode,
// endNode, direction, and earlyTerminate tables, plus the condition
// priority used by ChooseDriver. It carries no functions — only the four
// (five, with Priority) facts the planner needs per tag — so it really is
// the "pure data, constant once initialized" the design notes ask for.
type Rule struct {
	Start          StartKind
	End            EndKind
	Direction      int // +1 forward (next), -1 backward (prev)
	EarlyTerminate bool
	Priority       int
}

// rules is built once at package init and never mutated.
var rules = map[Tag]Rule{
	PrimaryEqual:    {Start: StartDescendPrimary, End: EndPrimaryRun, Direction: 1, EarlyTerminate: true, Priority: 100},
	Equal:           {Start: StartDescendFull, End: EndEqualRun, Direction: 1, EarlyTerminate: true, Priority: 100},
	Gt:              {Start: StartDescendFull, End: EndNone, Direction: 1, Priority: 50},
	Gte:             {Start: StartDescendFull, End: EndNone, Direction: 1, Priority: 50},
	Lt:              {Start: StartDescendPrimaryRightmost, End: EndNone, Direction: -1, Priority: 50},
	Lte:             {Start: StartDescendPrimaryRightmost, End: EndNone, Direction: -1, Priority: 50},
	PrimaryGt:       {Start: StartDescendPrimary, End: EndNone, Direction: 1, Priority: 50},
	PrimaryGte:      {Start: StartDescendPrimary, End: EndNone, Direction: 1, Priority: 50},
	PrimaryLt:       {Start: StartDescendPrimaryRightmost, End: EndNone, Direction: -1, Priority: 50},
	PrimaryLte:      {Start: StartDescendPrimaryRightmost, End: EndNone, Direction: -1, Priority: 50},
	Like:            {Start: StartLeftmostLeaf, End: EndNone, Direction: 1, Priority: 30},
	NotEqual:        {Start: StartLeftmostLeaf, End: EndNone, Direction: 1, Priority: 10},
	PrimaryNotEqual: {Start: StartLeftmostLeaf, End: EndNone, Direction: 1, Priority: 10},
	Or:              {Start: StartLowestOfSetFull, End: EndHighestOfSetFull, Direction: 1, Priority: 80},
	PrimaryOr:       {Start: StartLowestOfSetPrimary, End: EndHighestOfSetPrimary, Direction: 1, Priority: 80},
}

// RuleFor returns the dispatch rule for tag. Every Tag in the closed set
// has an entry; a caller passing a Tag outside that set is a programming
// error (the panic surfaces it immediately rather than silently doing
// nothing).
func RuleFor(tag Tag) Rule {
	r, ok := rules[tag]
	if !ok {
		panic("query: no dispatch rule for tag " + tag.String())
	}
	return r
}

// DriverPrecedence is the tie-break order §4.6 specifies for picking the
// single driver predicate out of a multi-predicate condition.
var DriverPrecedence = []Tag{
	PrimaryEqual, Equal, Gt, Gte, Lt, Lte,
	PrimaryGt, PrimaryGte, PrimaryLt, PrimaryLte,
	Like, NotEqual, PrimaryNotEqual, Or, PrimaryOr,
}

// VerifierTable builds the tag-keyed verifier functions for a concrete
// value type V. Built fresh per call (Go does not allow a generic
// package-level var), but callers instantiate it once per tree and reuse
// it for the tree's lifetime, which is where the "constant once
// initialized" property actually matters.
func VerifierTable[V any]() map[Tag]func(cmp ordering.Comparator[V], candidate V, arg any) bool {
	return map[Tag]func(ordering.Comparator[V], V, any) bool{
		Equal:           func(c ordering.Comparator[V], v V, arg any) bool { return ordering.IsSame(c, v, arg.(V)) },
		NotEqual:        func(c ordering.Comparator[V], v V, arg any) bool { return !ordering.IsSame(c, v, arg.(V)) },
		Gt:              func(c ordering.Comparator[V], v V, arg any) bool { return ordering.IsHigher(c, v, arg.(V)) },
		Gte:             func(c ordering.Comparator[V], v V, arg any) bool { return !ordering.IsLower(c, v, arg.(V)) },
		Lt:              func(c ordering.Comparator[V], v V, arg any) bool { return ordering.IsLower(c, v, arg.(V)) },
		Lte:             func(c ordering.Comparator[V], v V, arg any) bool { return !ordering.IsHigher(c, v, arg.(V)) },
		Or: func(c ordering.Comparator[V], v V, arg any) bool {
			for _, candidate := range arg.([]V) {
				if ordering.IsSame(c, v, candidate) {
					return true
				}
			}
			return false
		},
		PrimaryEqual:    func(c ordering.Comparator[V], v V, arg any) bool { return ordering.IsPrimarySame(c, v, arg.(V)) },
		PrimaryNotEqual: func(c ordering.Comparator[V], v V, arg any) bool { return !ordering.IsPrimarySame(c, v, arg.(V)) },
		PrimaryGt:       func(c ordering.Comparator[V], v V, arg any) bool { return ordering.IsPrimaryHigher(c, v, arg.(V)) },
		PrimaryGte:      func(c ordering.Comparator[V], v V, arg any) bool { return !ordering.IsPrimaryLower(c, v, arg.(V)) },
		PrimaryLt:       func(c ordering.Comparator[V], v V, arg any) bool { return ordering.IsPrimaryLower(c, v, arg.(V)) },
		PrimaryLte:      func(c ordering.Comparator[V], v V, arg any) bool { return !ordering.IsPrimaryHigher(c, v, arg.(V)) },
		PrimaryOr: func(c ordering.Comparator[V], v V, arg any) bool {
			for _, candidate := range arg.([]V) {
				if ordering.IsPrimarySame(c, v, candidate) {
					return true
				}
			}
			return false
		},
		Like: func(c ordering.Comparator[V], v V, arg any) bool {
			pattern := arg.(*regexp.Regexp)
			return pattern.MatchString(c.Match(v))
		},
	}
}
