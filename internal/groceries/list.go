// Package groceries keeps the weekly shopping list. It is persisted as its own
// document next to the main store and never touches the store document.
package groceries

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Category string

const (
	FruitVeg  Category = "Fruit & Veg"
	Meat      Category = "Meat"
	Fish      Category = "Fish"
	Dairy     Category = "Dairy"
	Freezer   Category = "Freezer"
	Cupboard  Category = "Cupboard"
	Snacks    Category = "Snacks"
	Drinks    Category = "Drinks"
	Household Category = "Household"
	Pet       Category = "Pet"
	Other     Category = "Other"
)

// Categories in display order.
var Categories = []Category{FruitVeg, Meat, Fish, Dairy, Freezer, Cupboard, Snacks, Drinks, Household, Pet, Other}

func (c Category) IsValid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// DefaultShop is used when the meta has no shop.
const DefaultShop = "Tesco"

var (
	ErrEmptyName      = errors.New("grocery name cannot be empty")
	ErrDuplicate      = errors.New("item is already on the list")
	ErrNotFound       = errors.New("grocery item not found")
	ErrNegativeBudget = errors.New("budget cannot be negative")
)

// Item is one line of the list. CreatedAt and UpdatedAt are epoch millis.
type Item struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	Bought    bool     `json:"bought"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt,omitempty"`
}

type Meta struct {
	Shop   string  `json:"shop"`
	Budget float64 `json:"budget"`
}

// UnmarshalJSON accepts the budget as a number or as a string; the browser
// build stored the raw input text, with "" meaning no budget.
func (m *Meta) UnmarshalJSON(b []byte) error {
	var raw struct {
		Shop   string          `json:"shop"`
		Budget json.RawMessage `json:"budget"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.Shop = strings.TrimSpace(raw.Shop)
	if m.Shop == "" {
		m.Shop = DefaultShop
	}
	m.Budget = parseBudget(raw.Budget)
	return nil
}

func parseBudget(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		s = strings.TrimSpace(str)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	f, _ := d.Round(2).Float64()
	return f
}

// List is the persisted grocery document.
type List struct {
	Meta  Meta   `json:"meta"`
	Items []Item `json:"items"`
}

func NewList() List {
	return List{Meta: Meta{Shop: DefaultShop}, Items: []Item{}}
}

// normName trims and collapses inner whitespace.
func normName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normCategory(c Category) Category {
	if c.IsValid() {
		return c
	}
	return Other
}

func (l List) find(id string) int {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// duplicate reports whether an unbought item with the same name and category
// is already listed. Names compare case-insensitively.
func (l List) duplicate(name string, c Category) bool {
	for _, it := range l.Items {
		if !it.Bought && it.Category == c && strings.EqualFold(it.Name, name) {
			return true
		}
	}
	return false
}

// Active returns the unbought item count.
func (l List) Active() int {
	n := 0
	for _, it := range l.Items {
		if !it.Bought {
			n++
		}
	}
	return n
}

type SortMode string

const (
	SortRecent   SortMode = "recent"
	SortAlpha    SortMode = "alpha"
	SortCategory SortMode = "category"
)

func sortItems(items []Item, mode SortMode) {
	switch mode {
	case SortAlpha:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
	case SortCategory:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Category != items[j].Category {
				return items[i].Category < items[j].Category
			}
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt > items[j].CreatedAt })
	}
}

// Sorted returns unbought items ordered by mode, followed by bought items,
// newest first. A non-empty category narrows the unbought part only.
func (l List) Sorted(mode SortMode, category Category) []Item {
	var active, bought []Item
	for _, it := range l.Items {
		switch {
		case it.Bought:
			bought = append(bought, it)
		case category == "" || it.Category == category:
			active = append(active, it)
		}
	}
	sortItems(active, mode)
	sortItems(bought, SortRecent)
	return append(active, bought...)
}
