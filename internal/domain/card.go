package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Limits on card content.
const (
	MaxCardSideLength = 10000
	MaxCardTags       = 20
	MaxCardTagLength  = 50
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card has no question side.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card has no answer side.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrCardContentTooLong is returned when either side exceeds MaxCardSideLength.
	ErrCardContentTooLong = errors.New("card content is too long")

	// ErrCardTagsInvalid is returned for too many, empty or overlong tags.
	ErrCardTagsInvalid = errors.New("card tags are invalid")
)

// Card is a single flashcard inside a deck. Ownership is inherited from the deck.
type Card struct {
	ID        uuid.UUID `json:"id"`
	DeckID    uuid.UUID `json:"deck_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardContent is the user-editable part of a card.
type CardContent struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
}

// NewCard creates a new Card in deckID with the given content.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, content CardContent) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	card.apply(content)

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	if utf8.RuneCountInString(c.Front) > MaxCardSideLength ||
		utf8.RuneCountInString(c.Back) > MaxCardSideLength {
		return ErrCardContentTooLong
	}

	if len(c.Tags) > MaxCardTags {
		return ErrCardTagsInvalid
	}
	for _, tag := range c.Tags {
		if tag == "" || utf8.RuneCountInString(tag) > MaxCardTagLength {
			return ErrCardTagsInvalid
		}
	}

	return nil
}

// UpdateContent replaces the card's content and updates the UpdatedAt timestamp.
// The original content is kept if the new content is invalid.
func (c *Card) UpdateContent(content CardContent) error {
	orig := c.Content()
	c.apply(content)

	if err := c.Validate(); err != nil {
		c.apply(orig)
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Content returns a copy of the card's editable fields.
func (c *Card) Content() CardContent {
	return CardContent{
		Front: c.Front,
		Back:  c.Back,
		Tags:  append([]string(nil), c.Tags...),
	}
}

func (c *Card) apply(content CardContent) {
	c.Front = normalizeText(content.Front)
	c.Back = normalizeText(content.Back)
	c.Tags = normalizeTags(content.Tags)
}

// normalizeText trims s and puts it in Unicode NFC, so that visually equal
// strings compare equal.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(normalizeText(tag))
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
