// Package category defines the closed set of device categories an autotest
// manifest can be tagged for, and resolves user selectors into them.
package category

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSelection is returned when a selector does not name any category.
var ErrInvalidSelection = errors.New("invalid category selection")

// Category is one device form factor.
type Category struct {
	Ordinal int    `json:"ordinal" yaml:"ordinal"` // 1-based menu position
	Tag     string `json:"tag" yaml:"tag"`         // value written into manifest labels
	Name    string `json:"name" yaml:"name"`       // value shown to the user
}

func (c Category) String() string { return c.Name }

// The tag and display name only diverge for 2in1, which users know as "pc".
var all = []Category{
	{Ordinal: 1, Tag: "phone", Name: "phone"},
	{Ordinal: 2, Tag: "car", Name: "car"},
	{Ordinal: 3, Tag: "tv", Name: "tv"},
	{Ordinal: 4, Tag: "watch", Name: "watch"},
	{Ordinal: 5, Tag: "tablet", Name: "tablet"},
	{Ordinal: 6, Tag: "2in1", Name: "pc"},
}

// All returns every category in menu order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Select resolves a selector to a category. A selector is the menu ordinal
// ("1".."6"), the internal tag, or the display name, case-insensitively.
func Select(input string) (Category, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return Category{}, fmt.Errorf("%w: empty selector (%s)", ErrInvalidSelection, choices())
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(all) {
			return all[n-1], nil
		}
		return Category{}, fmt.Errorf("%w: %q is out of range (%s)", ErrInvalidSelection, input, choices())
	}

	for _, c := range all {
		if s == c.Tag || s == c.Name {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q (%s)", ErrInvalidSelection, input, choices())
}

// choices renders the valid selectors for error messages.
func choices() string {
	parts := make([]string, len(all))
	for i, c := range all {
		parts[i] = fmt.Sprintf("%d:%s", c.Ordinal, c.Name)
	}
	return "choose " + strings.Join(parts, " ")
}
