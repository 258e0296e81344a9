// Package catalog holds the fixed category taxonomy components are
// filed under, plus the translation from a selected category + search
// term into listing query parameters. The taxonomy is ordered the way
// the gallery sidebar presents it; "All" is a pseudo-category meaning
// "no category constraint" and is never stored on a component.
package catalog

import "net/url"

// All is the pseudo-category selecting every category at once.
const All = "All"

// Category pairs a stored key with its display label. Wide marks the
// two categories whose previews need a wider grid cell; that is purely
// a layout hint and never part of a query.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Wide  bool   `json:"wide"`
}

// Categories is the full ordered taxonomy, "All" first.
var Categories = []Category{
	{Key: All, Label: "All Elements"},
	{Key: "Button", Label: "Buttons"},
	{Key: "Checkboxes", Label: "Checkboxes"},
	{Key: "ToggleSwitch", Label: "Toggle switches"},
	{Key: "Card", Label: "Cards", Wide: true},
	{Key: "Loader", Label: "Loaders"},
	{Key: "Input", Label: "Inputs"},
	{Key: "RadioButton", Label: "Radio buttons"},
	{Key: "Forms", Label: "Forms", Wide: true},
	{Key: "Tooltips", Label: "Tooltips"},
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[c.Key] = c
	}
	return m
}()

// Valid reports whether key names a real stored category. "All" is not
// a valid value for a component's category column.
func Valid(key string) bool {
	_, ok := byKey[key]
	return ok && key != All
}

// Wide reports whether key's previews use the wide layout.
func Wide(key string) bool { return byKey[key].Wide }

// Resolve translates a selected category and search term into the query
// parameters of GET /v1/components. "All" and "" both mean no category
// constraint, so neither emits a category parameter; an empty search
// term emits no search parameter.
func Resolve(category, search string) url.Values {
	v := url.Values{}
	if category != "" && category != All {
		v.Set("category", category)
	}
	if search != "" {
		v.Set("search", search)
	}
	return v
}
