package ordering

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// naturalComparator orders values of any constraints.Ordered type by their
// built-in <, and uses the same order as the tie-break since such values
// already form a total order on their own.
type naturalComparator[V constraints.Ordered] struct{}

// Natural returns a Comparator that orders V by its built-in comparison
// operators. Suitable for any scalar type with a natural total order
// (integers, floats, strings).
func Natural[V constraints.Ordered]() Comparator[V] {
	return naturalComparator[V]{}
}

func (naturalComparator[V]) Asc(a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (c naturalComparator[V]) PrimaryAsc(a, b V) int { return c.Asc(a, b) }

func (naturalComparator[V]) Match(v V) string { return fmt.Sprint(v) }
