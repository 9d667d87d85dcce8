package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Winner is the three-valued outcome of comparing one category between two devices
type Winner string

const (
	WinnerSideA Winner = "A"
	WinnerSideB Winner = "B"
	WinnerTie   Winner = "Tie"
)

// Valid reports whether w is one of the known outcomes
func (w Winner) Valid() bool {
	switch w {
	case WinnerSideA, WinnerSideB, WinnerTie:
		return true
	}
	return false
}

// Direction states whether a larger magnitude is better or worse
type Direction int

const (
	HigherIsBetter Direction = iota + 1
	LowerIsBetter
)

// DirectionFromBool maps the higher_is_better flag used in configuration and spec definitions
func DirectionFromBool(higherIsBetter bool) Direction {
	if higherIsBetter {
		return HigherIsBetter
	}
	return LowerIsBetter
}

func (d Direction) String() string {
	switch d {
	case HigherIsBetter:
		return "higher_is_better"
	case LowerIsBetter:
		return "lower_is_better"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Category names a comparison dimension
type Category string

const (
	CategoryBattery    Category = "battery"
	CategoryResolution Category = "resolution"
	CategoryRAM        Category = "ram"
)

// CategoryRule binds a category to the spec key it reads and its comparison direction
type CategoryRule struct {
	Category  Category
	SpecKey   string
	Direction Direction
}

// CategoryTable is the ordered set of categories evaluated for a comparison
type CategoryTable []CategoryRule

// DefaultCategoryTable returns the built-in categories. All are higher-is-better.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		{Category: CategoryBattery, SpecKey: "battery_capacity_mah", Direction: HigherIsBetter},
		{Category: CategoryResolution, SpecKey: "resolution", Direction: HigherIsBetter},
		{Category: CategoryRAM, SpecKey: "ram_size", Direction: HigherIsBetter},
	}
}

// Validate checks the table for empty names, empty spec keys, unknown directions and duplicates
func (t CategoryTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no categories configured", ErrInvalidCategoryTable)
	}
	seen := make(map[Category]bool, len(t))
	for i, rule := range t {
		if rule.Category == "" {
			return fmt.Errorf("%w: entry %d has no category name", ErrInvalidCategoryTable, i)
		}
		if rule.SpecKey == "" {
			return fmt.Errorf("%w: category %q has no spec key", ErrInvalidCategoryTable, rule.Category)
		}
		if rule.Direction != HigherIsBetter && rule.Direction != LowerIsBetter {
			return fmt.Errorf("%w: category %q has %s", ErrInvalidCategoryTable, rule.Category, rule.Direction)
		}
		if seen[rule.Category] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCategoryTable, rule.Category)
		}
		seen[rule.Category] = true
	}
	return nil
}

// CategoryVerdict is one entry of a VerdictMap
type CategoryVerdict struct {
	Category Category
	Winner   Winner
}

// VerdictMap is the ordered category -> winner result of a comparison.
// It serializes to a JSON object whose keys keep table order.
type VerdictMap []CategoryVerdict

// Get returns the winner for a category
func (v VerdictMap) Get(category Category) (Winner, bool) {
	for _, entry := range v {
		if entry.Category == category {
			return entry.Winner, true
		}
	}
	return "", false
}

// Len returns the number of categories
func (v VerdictMap) Len() int {
	return len(v)
}

// Wins counts the categories won by the given outcome
func (v VerdictMap) Wins(w Winner) int {
	n := 0
	for _, entry := range v {
		if entry.Winner == w {
			n++
		}
	}
	return n
}

// MarshalJSON writes the verdicts as an ordered JSON object
func (v VerdictMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(entry.Category))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(string(entry.Winner))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an ordered JSON object back into a VerdictMap
func (v *VerdictMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("verdicts: expected object, got %v", tok)
	}

	result := VerdictMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("verdicts: expected string key, got %v", keyTok)
		}
		var winner string
		if err := dec.Decode(&winner); err != nil {
			return fmt.Errorf("verdicts: category %q: %w", key, err)
		}
		if !Winner(winner).Valid() {
			return fmt.Errorf("verdicts: category %q: unknown winner %q", key, winner)
		}
		result = append(result, CategoryVerdict{Category: Category(key), Winner: Winner(winner)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*v = result
	return nil
}
