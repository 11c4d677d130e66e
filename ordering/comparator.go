// Package ordering defines the comparator contract the B+ tree engine uses
// to order values, and a couple of ready-made comparators for the common
// cases (natural order, caller-supplied closures).
package ordering

// Comparator defines the ordering over a tree's value type V. Asc is the
// primary, queryable ordering; PrimaryAsc is the tie-break ordering used to
// resolve values that compare equal under Asc into a total order (storage
// order and range-scan order both follow Asc-then-PrimaryAsc). Match
// projects a value to a string for the "like" predicate; for scalar string
// values it is simply the value itself.
//
// A strict weak ordering is required of both Asc and PrimaryAsc: the
// engine assumes reflexivity, transitivity, and antisymmetry of the
// induced equality.
type Comparator[V any] interface {
	// Asc returns a negative number if a sorts before b, zero if they are
	// primary-equal, and a positive number if a sorts after b.
	Asc(a, b V) int

	// PrimaryAsc compares two values that are Asc-equal, resolving them
	// into a total order. May equal Asc for simple scalar types.
	PrimaryAsc(a, b V) int

	// Match projects v to a string for pattern matching.
	Match(v V) string
}

// IsSame reports whether a and b are Asc-equal.
func IsSame[V any](c Comparator[V], a, b V) bool { return c.Asc(a, b) == 0 }

// IsLower reports whether a sorts before b under Asc.
func IsLower[V any](c Comparator[V], a, b V) bool { return c.Asc(a, b) < 0 }

// IsHigher reports whether a sorts after b under Asc.
func IsHigher[V any](c Comparator[V], a, b V) bool { return c.Asc(a, b) > 0 }

// IsPrimarySame reports whether a and b are PrimaryAsc-equal.
func IsPrimarySame[V any](c Comparator[V], a, b V) bool { return c.PrimaryAsc(a, b) == 0 }

// IsPrimaryLower reports whether a sorts before b under PrimaryAsc.
func IsPrimaryLower[V any](c Comparator[V], a, b V) bool { return c.PrimaryAsc(a, b) < 0 }

// IsPrimaryHigher reports whether a sorts after b under PrimaryAsc.
func IsPrimaryHigher[V any](c Comparator[V], a, b V) bool { return c.PrimaryAsc(a, b) > 0 }

// Full compares a and b under the full order: Asc first, PrimaryAsc as the
// tie-break. This is the order leaves and insertion descent use.
func Full[V any](c Comparator[V], a, b V) int {
	if cmp := c.Asc(a, b); cmp != 0 {
		return cmp
	}
	return c.PrimaryAsc(a, b)
}
