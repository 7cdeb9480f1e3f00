package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Limits on deck fields.
const (
	MaxDeckNameLength        = 200
	MaxDeckDescriptionLength = 2000
)

// Deck-specific validation errors
var (
	ErrDeckIDEmpty            = errors.New("deck ID cannot be empty")
	ErrDeckUserIDEmpty        = errors.New("deck user ID cannot be empty")
	ErrDeckNameEmpty          = errors.New("deck name cannot be empty")
	ErrDeckNameTooLong        = errors.New("deck name is too long")
	ErrDeckDescriptionTooLong = errors.New("deck description is too long")
)

// Deck is a named collection of cards owned by one user.
type Deck struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck creates a validated deck for userID.
func NewDeck(userID uuid.UUID, name, description string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        normalizeText(name),
		Description: normalizeText(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if d.UserID == uuid.Nil {
		return ErrDeckUserIDEmpty
	}

	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckNameEmpty
	}

	if utf8.RuneCountInString(d.Name) > MaxDeckNameLength {
		return ErrDeckNameTooLong
	}

	if utf8.RuneCountInString(d.Description) > MaxDeckDescriptionLength {
		return ErrDeckDescriptionTooLong
	}

	return nil
}

// Rename changes name and description, restoring the old values if the
// result does not validate.
func (d *Deck) Rename(name, description string) error {
	origName, origDescription := d.Name, d.Description
	d.Name = normalizeText(name)
	d.Description = normalizeText(description)

	if err := d.Validate(); err != nil {
		d.Name, d.Description = origName, origDescription
		return err
	}

	d.UpdatedAt = time.Now().UTC()
	return nil
}
