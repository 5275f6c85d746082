// Package entities contains domain entities used across the application.
package entities

import (
	"errors"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category identifies one learnable set of signs.
type Category string

const (
	CategoryAlphabet  Category = "alphabet"
	CategoryNumbers   Category = "numbers"
	CategoryColours   Category = "colours"
	CategoryAnimals   Category = "animals"
	CategoryGreetings Category = "greetings"
)

// Categories returns every category in menu order.
func Categories() []Category {
	return []Category{
		CategoryAlphabet,
		CategoryNumbers,
		CategoryColours,
		CategoryAnimals,
		CategoryGreetings,
	}
}

// ParseCategory converts user or storage input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable title, e.g. "Alphabet".
func (c Category) DisplayName() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Badge returns the badge awarded for finishing the category's flashcards.
func (c Category) Badge() string {
	return c.DisplayName() + " Ace Badge"
}
