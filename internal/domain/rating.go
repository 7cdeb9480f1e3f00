package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rating is the recall grade a user gives a card.
type Rating int

// Ratings in ascending order of recall quality.
const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// Ratings lists every valid rating, lowest first.
var Ratings = [...]Rating{Again, Hard, Good, Easy}

var ratingNames = map[Rating]string{
	Again: "again",
	Hard:  "hard",
	Good:  "good",
	Easy:  "easy",
}

// IsValid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// ParseRating accepts either the numeric form ("1".."4") or a rating
// name ("again", "hard", "good", "easy"), case-insensitively.
func ParseRating(s string) (Rating, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		r := Rating(n)
		if !r.IsValid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidRating, n)
		}
		return r, nil
	}
	for r, name := range ratingNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// MarshalJSON encodes the rating as its integer value.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return json.Marshal(int(r))
}

// UnmarshalJSON accepts an integer 1-4.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRating, string(data))
	}
	v := Rating(n)
	if !v.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidRating, n)
	}
	*r = v
	return nil
}
