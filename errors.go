package bptree

import "errors"

// Tree errors, named in the teacher's style (KilimcininKorOglu/oba's
// btree.ErrTreeNotInitialized and friends): a flat var block of sentinel
// errors rather than a custom error type hierarchy.
var (
	ErrNotInitialized  = errors.New("bptree: tree not initialized, call Init first")
	ErrAlreadyInit     = errors.New("bptree: tree already initialized")
	ErrInvalidOrder    = errors.New("bptree: order must be >= 3")
	ErrMissingHead     = errors.New("bptree: head record missing, call Init first")
	ErrStructural      = errors.New("bptree: structural inconsistency")
	ErrInvalidDir      = errors.New("bptree: invalid scan direction")
	ErrInvalidTag      = errors.New("bptree: condition predicate outside the closed tag set")
	ErrEmptyCandidates = errors.New("bptree: no candidates to choose a driver from")
)
