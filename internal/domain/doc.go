// Package domain contains the core entities of the flashcard trainer: decks,
// cards, their spaced-repetition schedules and the append-only review log.
// It is independent of any storage or delivery mechanism.
//
// Scheduling arithmetic lives in the srs subpackage; this package only
// defines the shapes it operates on and their invariants.
package domain
