package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/bptree/query"
)

func TestDriverPicksHighestPrecedenceTag(t *testing.T) {
	cond := query.NewCondition(query.GtP(5), query.EqualP(10))

	driver, ok := query.Driver(cond)
	require.True(t, ok)
	require.Equal(t, query.Equal, driver)

	post := query.PostFilter(cond, driver)
	require.Len(t, post, 1)
	require.Equal(t, query.Gt, post[0].Tag)
}

func TestDriverOnEmptyCondition(t *testing.T) {
	cond := query.NewCondition[int]()
	_, ok := query.Driver(cond)
	require.False(t, ok)
}

func TestChooseDriverPicksHighestPriorityCandidate(t *testing.T) {
	low := query.Candidate[int]{Tree: "low", Condition: query.NewCondition(query.NotEqualP(1))}
	high := query.Candidate[int]{Tree: "high", Condition: query.NewCondition(query.EqualP(1))}

	idx, ok := query.ChooseDriver([]query.Candidate[int]{low, high})
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestChooseDriverEmptyCandidates(t *testing.T) {
	_, ok := query.ChooseDriver([]query.Candidate[int](nil))
	require.False(t, ok)
}

func TestPatternCacheTranslatesLikeSyntax(t *testing.T) {
	pc := query.NewPatternCache(8)

	re, err := pc.Compile("al%e")
	require.NoError(t, err)
	require.True(t, re.MatchString("alice"))
	require.False(t, re.MatchString("bob"))

	// second compile should hit the cache and return an equivalent matcher
	re2, err := pc.Compile("al%e")
	require.NoError(t, err)
	require.True(t, re2.MatchString("alice"))
}
