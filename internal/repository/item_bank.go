package repository

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

var ErrBankNotFound = errors.New("item bank not found")

//go:embed data/*.json
var bankData embed.FS

// bankFile is the on-disk shape of a category's item bank.
type bankFile struct {
	Category string          `json:"category"`
	Items    []entities.Item `json:"items"`
}

// ItemBankRepository provides the static item banks of every category.
// Banks are loaded once and never change afterwards.
type ItemBankRepository struct {
	banks map[entities.Category]*entities.ItemBank
}

// NewItemBankRepository loads the embedded banks, or the banks under dir when
// dir is not empty. Every category must have a bank.
func NewItemBankRepository(dir string) (*ItemBankRepository, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(bankData, "data")
		if err != nil {
			return nil, fmt.Errorf("open embedded banks: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	return LoadItemBanks(fsys)
}

// LoadItemBanks reads <category>.json for each category from fsys.
func LoadItemBanks(fsys fs.FS) (*ItemBankRepository, error) {
	banks := make(map[entities.Category]*entities.ItemBank, len(entities.Categories()))

	for _, c := range entities.Categories() {
		bank, err := loadBank(fsys, c)
		if err != nil {
			return nil, err
		}
		banks[c] = bank
	}

	return &ItemBankRepository{banks: banks}, nil
}

// GetBank returns the bank of the given category.
func (r *ItemBankRepository) GetBank(category entities.Category) (*entities.ItemBank, error) {
	bank, ok := r.banks[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBankNotFound, category)
	}
	return bank, nil
}

// Categories returns the categories that have a bank, in display order.
func (r *ItemBankRepository) Categories() []entities.Category {
	out := make([]entities.Category, 0, len(r.banks))
	for _, c := range entities.Categories() {
		if _, ok := r.banks[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func loadBank(fsys fs.FS, c entities.Category) (*entities.ItemBank, error) {
	data, err := fs.ReadFile(fsys, string(c)+".json")
	if err != nil {
		return nil, fmt.Errorf("read %s bank: %w", c, err)
	}

	var f bankFile
	if err = json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s bank JSON: %w", c, err)
	}

	if f.Category != "" && f.Category != string(c) {
		return nil, fmt.Errorf("bank file %s.json declares category %q", c, f.Category)
	}

	bank, err := entities.NewItemBank(c, f.Items)
	if err != nil {
		return nil, fmt.Errorf("build %s bank: %w", c, err)
	}

	return bank, nil
}
