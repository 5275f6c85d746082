package entities

import (
	"errors"
	"fmt"
)

// MinBankSize is the smallest bank that can produce a full set of options.
const MinBankSize = OptionsPerQuestion

var (
	ErrBankTooSmall   = errors.New("item bank has fewer than 4 distinct items")
	ErrDuplicateItem  = errors.New("duplicate item id in bank")
	ErrItemNotFound   = errors.New("item not found")
	ErrEmptyItemLabel = errors.New("item id must not be empty")
)

// Item is a single learnable sign: its label and the demonstration clip.
type Item struct {
	ID       string `json:"id"`        // label shown to the learner, e.g. "A" or "Dog"
	MediaRef string `json:"media_ref"` // clip path relative to the media directory
}

// ItemBank is the ordered, immutable list of items for one category.
type ItemBank struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`

	index map[string]int
}

// NewItemBank validates items and builds the lookup index.
func NewItemBank(category Category, items []Item) (*ItemBank, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	index := make(map[string]int, len(items))
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("%s[%d]: %w", category, i, ErrEmptyItemLabel)
		}
		if _, ok := index[it.ID]; ok {
			return nil, fmt.Errorf("%s: %w: %q", category, ErrDuplicateItem, it.ID)
		}
		index[it.ID] = i
	}

	if len(index) < MinBankSize {
		return nil, fmt.Errorf("%s: %w", category, ErrBankTooSmall)
	}

	return &ItemBank{
		Category: category,
		Items:    append([]Item(nil), items...),
		index:    index,
	}, nil
}

// Len returns the number of items.
func (b *ItemBank) Len() int {
	return len(b.Items)
}

// At returns the item at position i.
func (b *ItemBank) At(i int) Item {
	return b.Items[i]
}

// IndexOf returns the position of id, or -1 when it is not in the bank.
func (b *ItemBank) IndexOf(id string) int {
	if i, ok := b.index[id]; ok {
		return i
	}
	return -1
}

// Contains reports whether id belongs to the bank.
func (b *ItemBank) Contains(id string) bool {
	return b.IndexOf(id) >= 0
}

// Get returns the item with the given id.
func (b *ItemBank) Get(id string) (Item, error) {
	i := b.IndexOf(id)
	if i < 0 {
		return Item{}, ErrItemNotFound
	}
	return b.Items[i], nil
}
