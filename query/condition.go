package query

// Tag identifies one predicate from the closed set a Condition may carry.
type Tag int

const (
	Equal Tag = iota
	NotEqual
	Gt
	Gte
	Lt
	Lte
	Or
	PrimaryEqual
	PrimaryNotEqual
	PrimaryGt
	PrimaryGte
	PrimaryLt
	PrimaryLte
	PrimaryOr
	Like

	tagCount
)

func (t Tag) String() string {
	switch t {
	case Equal:
		return "equal"
	case NotEqual:
		return "notEqual"
	case Gt:
		return "gt"
	case Gte:
		return "gte"
	case Lt:
		return "lt"
	case Lte:
		return "lte"
	case Or:
		return "or"
	case PrimaryEqual:
		return "primaryEqual"
	case PrimaryNotEqual:
		return "primaryNotEqual"
	case PrimaryGt:
		return "primaryGt"
	case PrimaryGte:
		return "primaryGte"
	case PrimaryLt:
		return "primaryLt"
	case PrimaryLte:
		return "primaryLte"
	case PrimaryOr:
		return "primaryOr"
	case Like:
		return "like"
	default:
		return "unknown"
	}
}

// Order selects ascending or descending result order.
type Order int

const (
	Asc Order = iota
	Desc
)

// Predicate is one tag/argument pair within a Condition. Arg's dynamic
// type depends on Tag: a scalar V for Equal/NotEqual/Gt/Gte/Lt/Lte and
// their primary- variants, a []V for Or/PrimaryOr, and a string for Like.
type Predicate[V any] struct {
	Tag Tag
	Arg any
}

// Condition is a multi-predicate query: the set of predicates from the
// closed tag set (spec.md §4.6) that must all hold for a (K,V) pair to be
// yielded. Predicates are keyed by Tag — a Condition carries at most one
// predicate per tag, mirroring the tag-keyed map the spec describes,
// while keeping the representation statically typed.
type Condition[V any] struct {
	predicates map[Tag]Predicate[V]
}

// NewCondition builds a Condition from the given predicates.
func NewCondition[V any](preds ...Predicate[V]) Condition[V] {
	c := Condition[V]{predicates: make(map[Tag]Predicate[V], len(preds))}
	for _, p := range preds {
		c.predicates[p.Tag] = p
	}
	return c
}

// With returns a copy of c with predicate p added (or replacing any
// existing predicate for the same tag).
func (c Condition[V]) With(p Predicate[V]) Condition[V] {
	out := Condition[V]{predicates: make(map[Tag]Predicate[V], len(c.predicates)+1)}
	for k, v := range c.predicates {
		out.predicates[k] = v
	}
	out.predicates[p.Tag] = p
	return out
}

// Get returns the predicate for tag, if present.
func (c Condition[V]) Get(tag Tag) (Predicate[V], bool) {
	p, ok := c.predicates[tag]
	return p, ok
}

// Tags returns every tag present in c, in driver-precedence order (see
// DriverPrecedence) to keep plan selection and post-filter construction
// deterministic.
func (c Condition[V]) Tags() []Tag {
	var tags []Tag
	for _, t := range DriverPrecedence {
		if _, ok := c.predicates[t]; ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// Empty reports whether the condition carries no predicates.
func (c Condition[V]) Empty() bool { return len(c.predicates) == 0 }

// EqualP builds an Equal predicate.
func EqualP[V any](v V) Predicate[V] { return Predicate[V]{Tag: Equal, Arg: v} }

// NotEqualP builds a NotEqual predicate.
func NotEqualP[V any](v V) Predicate[V] { return Predicate[V]{Tag: NotEqual, Arg: v} }

// GtP builds a Gt predicate.
func GtP[V any](v V) Predicate[V] { return Predicate[V]{Tag: Gt, Arg: v} }

// GteP builds a Gte predicate.
func GteP[V any](v V) Predicate[V] { return Predicate[V]{Tag: Gte, Arg: v} }

// LtP builds a Lt predicate.
func LtP[V any](v V) Predicate[V] { return Predicate[V]{Tag: Lt, Arg: v} }

// LteP builds a Lte predicate.
func LteP[V any](v V) Predicate[V] { return Predicate[V]{Tag: Lte, Arg: v} }

// OrP builds an Or (set membership) predicate.
func OrP[V any](vs ...V) Predicate[V] { return Predicate[V]{Tag: Or, Arg: vs} }

// PrimaryEqualP builds a PrimaryEqual predicate.
func PrimaryEqualP[V any](v V) Predicate[V] { return Predicate[V]{Tag: PrimaryEqual, Arg: v} }

// PrimaryNotEqualP builds a PrimaryNotEqual predicate.
func PrimaryNotEqualP[V any](v V) Predicate[V] { return Predicate[V]{Tag: PrimaryNotEqual, Arg: v} }

// PrimaryGtP builds a PrimaryGt predicate.
func PrimaryGtP[V any](v V) Predicate[V] { return Predicate[V]{Tag: PrimaryGt, Arg: v} }

// PrimaryGteP builds a PrimaryGte predicate.
func PrimaryGteP[V any](v V) Predicate[V] { return Predicate[V]{Tag: PrimaryGte, Arg: v} }

// PrimaryLtP builds a PrimaryLt predicate.
func PrimaryLtP[V any](v V) Predicate[V] { return Predicate[V]{Tag: PrimaryLt, Arg: v} }

// PrimaryLteP builds a PrimaryLte predicate.
func PrimaryLteP[V any](v V) Predicate[V] { return Predicate[V]{Tag: PrimaryLte, Arg: v} }

// PrimaryOrP builds a PrimaryOr (set membership over primary order)
// predicate.
func PrimaryOrP[V any](vs ...V) Predicate[V] { return Predicate[V]{Tag: PrimaryOr, Arg: vs} }

// LikeP builds a Like (SQL-style pattern match) predicate. pattern is
// matched against comparator.Match(value).
func LikeP[V any](pattern string) Predicate[V] { return Predicate[V]{Tag: Like, Arg: pattern} }
