package ordering_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/bptree/ordering"
)

func TestNaturalOrdering(t *testing.T) {
	cmp := ordering.Natural[int]()

	require.True(t, ordering.IsLower(cmp, 1, 2))
	require.True(t, ordering.IsHigher(cmp, 2, 1))
	require.True(t, ordering.IsSame(cmp, 3, 3))
	require.Equal(t, 0, ordering.Full(cmp, 5, 5))
}

func TestFuncComparatorFallsBackToAsc(t *testing.T) {
	c := ordering.Func[int]{
		AscFn: func(a, b int) int { return a - b },
	}

	require.Equal(t, c.Asc(1, 2), c.PrimaryAsc(1, 2))
	require.Equal(t, "", c.Match(7))
}
