package ordering

// Func is a Comparator built from caller-supplied closures, for composite
// value types where the primary ordering, the tie-break ordering, and the
// pattern-match projection are each derived from a different field (spec
// scenario S7: a country record ordered by its integer key, matched by
// name).
type Func[V any] struct {
	AscFn        func(a, b V) int
	PrimaryAscFn func(a, b V) int
	MatchFn      func(v V) string
}

func (f Func[V]) Asc(a, b V) int { return f.AscFn(a, b) }

func (f Func[V]) PrimaryAsc(a, b V) int {
	if f.PrimaryAscFn == nil {
		return f.AscFn(a, b)
	}
	return f.PrimaryAscFn(a, b)
}

func (f Func[V]) Match(v V) string {
	if f.MatchFn == nil {
		return ""
	}
	return f.MatchFn(v)
}
