package query

// Driver picks the single predicate that determines a condition's descent
// point, scan direction, and termination, by the precedence order
// DriverPrecedence. Remaining tags form the post-filter. Returns the zero
// Tag and false if the condition carries no predicates.
func Driver[V any](c Condition[V]) (Tag, bool) {
	for _, tag := range DriverPrecedence {
		if _, ok := c.Get(tag); ok {
			return tag, true
		}
	}
	return 0, false
}

// PostFilter returns every predicate in c other than the driver tag.
func PostFilter[V any](c Condition[V], driver Tag) []Predicate[V] {
	var out []Predicate[V]
	for _, tag := range c.Tags() {
		if tag == driver {
			continue
		}
		p, _ := c.Get(tag)
		out = append(out, p)
	}
	return out
}

// conditionPriority is the maximum RuleFor(tag).Priority over a
// condition's predicates, used by ChooseDriver to score candidates.
func conditionPriority[V any](c Condition[V]) int {
	best := -1
	for _, tag := range c.Tags() {
		if p := RuleFor(tag).Priority; p > best {
			best = p
		}
	}
	return best
}

// Candidate pairs an opaque tree identifier with the condition that would
// be run against it, for cross-tree arbitration (spec.md §4.8).
type Candidate[V any] struct {
	Tree      any
	Condition Condition[V]
}

// ChooseDriver scores each candidate by conditionPriority and returns the
// index of the highest-scoring one. Ties break to the first candidate.
// Returns -1, false for an empty candidate list.
func ChooseDriver[V any](candidates []Candidate[V]) (int, bool) {
	if len(candidates) == 0 {
		return -1, false
	}

	best := 0
	bestScore := conditionPriority(candidates[0].Condition)
	for i := 1; i < len(candidates); i++ {
		score := conditionPriority(candidates[i].Condition)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, true
}
