package queries

import (
	"errors"
	"fmt"
	"strings"
)

// QuickTag names a predefined set of filter fragments for a common place
// category.
type QuickTag string

const (
	Restaurant     QuickTag = "restaurant"
	FoodCourt      QuickTag = "food_court"
	Cafe           QuickTag = "cafe"
	FastFood       QuickTag = "fast_food"
	Bar            QuickTag = "bar"
	Pub            QuickTag = "pub"
	IceCream       QuickTag = "ice_cream"
	Biergarten     QuickTag = "biergarten"
	OutdoorSeating QuickTag = "outdoor_seating"
	// AllFood is the union of every other quick tag.
	AllFood QuickTag = "all_food"
)

var quickTagOrder = []QuickTag{
	Restaurant, FoodCourt, Cafe, FastFood, Bar, Pub, IceCream, Biergarten, OutdoorSeating, AllFood,
}

var quickTagFragments = map[QuickTag][]string{
	Restaurant:     {"[amenity=restaurant]"},
	FoodCourt:      {"[amenity=food_court]"},
	Cafe:           {"[amenity=cafe]"},
	FastFood:       {"[amenity=fast_food]"},
	Bar:            {"[amenity=bar]"},
	Pub:            {"[amenity=pub]"},
	IceCream:       {"[amenity=ice_cream]"},
	Biergarten:     {"[amenity=biergarten]"},
	OutdoorSeating: {"[leisure=outdoor_seating]"},
}

func init() {
	var all []string
	for _, t := range quickTagOrder {
		all = append(all, quickTagFragments[t]...)
	}
	quickTagFragments[AllFood] = all
}

// ErrUnknownQuickTag matches any UnknownQuickTagError with errors.Is.
var ErrUnknownQuickTag = errors.New("unknown quick tag")

// UnknownQuickTagError reports a quick tag name outside the catalog.
type UnknownQuickTagError struct {
	Name string
}

func (e *UnknownQuickTagError) Error() string {
	return fmt.Sprintf("unknown quick tag %q", e.Name)
}

// Is lets errors.Is match ErrUnknownQuickTag.
func (e *UnknownQuickTagError) Is(target error) bool {
	return target == ErrUnknownQuickTag
}

// QuickTags returns the catalog in its canonical order.
func QuickTags() []QuickTag {
	return append([]QuickTag(nil), quickTagOrder...)
}

// ParseQuickTag resolves a quick tag by name, ignoring case. Spaces and
// hyphens are read as underscores, so "All Food" and "ALL_FOOD" both
// resolve to AllFood.
func ParseQuickTag(name string) (QuickTag, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	t := QuickTag(key)
	if !t.Valid() {
		return "", &UnknownQuickTagError{Name: name}
	}
	return t, nil
}

// Valid reports whether t is in the catalog.
func (t QuickTag) Valid() bool {
	_, ok := quickTagFragments[t]
	return ok
}

func (t QuickTag) String() string {
	return string(t)
}

// Fragments returns the bracket expressions t expands to. It returns nil
// for a tag outside the catalog.
func (t QuickTag) Fragments() []string {
	return append([]string(nil), quickTagFragments[t]...)
}

// Filter returns t as a TagFilter.
func (t QuickTag) Filter() TagFilter {
	return Fragments(t.Fragments()...)
}
