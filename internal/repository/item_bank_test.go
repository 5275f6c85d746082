package repository

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

func TestNewItemBankRepository_Embedded(t *testing.T) {
	repo, err := NewItemBankRepository("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sizes := map[entities.Category]int{
		entities.CategoryAlphabet:  26,
		entities.CategoryNumbers:   20,
		entities.CategoryColours:   10,
		entities.CategoryAnimals:   10,
		entities.CategoryGreetings: 8,
	}

	for c, want := range sizes {
		t.Run(string(c), func(t *testing.T) {
			bank, err := repo.GetBank(c)
			if err != nil {
				t.Fatalf("GetBank(%s): %v", c, err)
			}
			if bank.Len() != want {
				t.Errorf("expected %d items, got %d", want, bank.Len())
			}
			for i := 0; i < bank.Len(); i++ {
				if bank.At(i).MediaRef == "" {
					t.Errorf("item %q has no media reference", bank.At(i).ID)
				}
			}
		})
	}

	if got := len(repo.Categories()); got != len(sizes) {
		t.Errorf("expected %d categories, got %d", len(sizes), got)
	}
}

func TestGetBank_Unknown(t *testing.T) {
	repo, err := NewItemBankRepository("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.GetBank("shapes"); !errors.Is(err, ErrBankNotFound) {
		t.Errorf("expected ErrBankNotFound, got %v", err)
	}
}

func TestLoadItemBanks_Invalid(t *testing.T) {
	valid := `{"items":[{"id":"a"},{"id":"b"},{"id":"c"},{"id":"d"}]}`

	tests := []struct {
		name     string
		override string
		wantErr  error
	}{
		{"too small", `{"items":[{"id":"a"},{"id":"b"},{"id":"c"}]}`, entities.ErrBankTooSmall},
		{"duplicate", `{"items":[{"id":"a"},{"id":"b"},{"id":"c"},{"id":"a"}]}`, entities.ErrDuplicateItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for _, c := range entities.Categories() {
				fsys[string(c)+".json"] = &fstest.MapFile{Data: []byte(valid)}
			}
			fsys["colours.json"] = &fstest.MapFile{Data: []byte(tt.override)}

			_, err := LoadItemBanks(fsys)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
