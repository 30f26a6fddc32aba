// Package sku converts between structured TF2 item objects and their compact
// string identifiers ("5021;6", "200;11;australium;kt-3", ...).
package sku

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unresolved marks a defindex or quality that could not be determined.
const Unresolved = -1

// ErrMalformed is returned when an identifier string cannot be parsed.
var ErrMalformed = errors.New("malformed sku")

// Item is the structured form of an identifier. Optional attributes are nil
// when absent so that they encode as JSON null.
type Item struct {
	Defindex      int  `json:"defindex"`
	Quality       int  `json:"quality"`
	Craftable     bool `json:"craftable"`
	Tradable      bool `json:"tradable"`
	Killstreak    int  `json:"killstreak"`
	Australium    bool `json:"australium"`
	Effect        *int `json:"effect"`
	Festive       bool `json:"festive"`
	Paintkit      *int `json:"paintkit"`
	Wear          *int `json:"wear"`
	Quality2      *int `json:"quality2"`
	Craftnumber   *int `json:"craftnumber"`
	Crateseries   *int `json:"crateseries"`
	Target        *int `json:"target"`
	Output        *int `json:"output"`
	OutputQuality *int `json:"outputQuality"`
	Paint         *int `json:"paint"`
}

// New returns an item with nothing resolved and the default flags set.
func New() Item {
	return Item{
		Defindex:  Unresolved,
		Quality:   Unresolved,
		Craftable: true,
		Tradable:  true,
	}
}

// Int returns a pointer to v, for filling optional attributes.
func Int(v int) *int {
	return &v
}

// Resolved reports whether both required fields are known.
func (it Item) Resolved() bool {
	return it.Defindex >= 0 && it.Quality >= 0
}

type itemJSON Item

// UnmarshalJSON applies the default flags before decoding so that omitted
// craftable/tradable fields mean true.
func (it *Item) UnmarshalJSON(b []byte) error {
	v := itemJSON(New())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*it = Item(v)
	return nil
}

// MarshalJSON encodes unresolved defindex/quality as null.
func (it Item) MarshalJSON() ([]byte, error) {
	type wire struct {
		Defindex *int `json:"defindex"`
		Quality  *int `json:"quality"`
		itemJSON
	}
	w := wire{itemJSON: itemJSON(it)}
	if it.Defindex >= 0 {
		w.Defindex = Int(it.Defindex)
	}
	if it.Quality >= 0 {
		w.Quality = Int(it.Quality)
	}
	return json.Marshal(w)
}

// String encodes the item. Unresolved required fields render as "null".
func (it Item) String() string {
	var b strings.Builder
	b.WriteString(field(it.Defindex))
	b.WriteByte(';')
	b.WriteString(field(it.Quality))

	if it.Effect != nil && *it.Effect != 0 {
		fmt.Fprintf(&b, ";u%d", *it.Effect)
	}
	if it.Australium {
		b.WriteString(";australium")
	}
	if !it.Craftable {
		b.WriteString(";uncraftable")
	}
	if !it.Tradable {
		b.WriteString(";untradable")
	}
	if it.Wear != nil && *it.Wear != 0 {
		fmt.Fprintf(&b, ";w%d", *it.Wear)
	}
	if it.Paintkit != nil {
		fmt.Fprintf(&b, ";pk%d", *it.Paintkit)
	}
	if it.Quality2 != nil && *it.Quality2 == 11 {
		b.WriteString(";strange")
	}
	if it.Killstreak != 0 {
		fmt.Fprintf(&b, ";kt-%d", it.Killstreak)
	}
	if it.Target != nil && *it.Target != 0 {
		fmt.Fprintf(&b, ";td-%d", *it.Target)
	}
	if it.Festive {
		b.WriteString(";festive")
	}
	if it.Craftnumber != nil && *it.Craftnumber != 0 {
		fmt.Fprintf(&b, ";n%d", *it.Craftnumber)
	}
	if it.Crateseries != nil && *it.Crateseries != 0 {
		fmt.Fprintf(&b, ";c%d", *it.Crateseries)
	}
	if it.Output != nil && *it.Output != 0 {
		fmt.Fprintf(&b, ";od-%d", *it.Output)
	}
	if it.OutputQuality != nil && *it.OutputQuality != 0 {
		fmt.Fprintf(&b, ";oq-%d", *it.OutputQuality)
	}
	if it.Paint != nil && *it.Paint != 0 {
		fmt.Fprintf(&b, ";p%d", *it.Paint)
	}
	return b.String()
}

func field(v int) string {
	if v < 0 {
		return "null"
	}
	return strconv.Itoa(v)
}

// numeric attribute prefixes, longest first so "pk" wins over "p".
var numericAttrs = []struct {
	prefix string
	set    func(*Item, int)
}{
	{"pk", func(it *Item, v int) { it.Paintkit = Int(v) }},
	{"kt", func(it *Item, v int) { it.Killstreak = v }},
	{"td", func(it *Item, v int) { it.Target = Int(v) }},
	{"od", func(it *Item, v int) { it.Output = Int(v) }},
	{"oq", func(it *Item, v int) { it.OutputQuality = Int(v) }},
	{"u", func(it *Item, v int) { it.Effect = Int(v) }},
	{"w", func(it *Item, v int) { it.Wear = Int(v) }},
	{"n", func(it *Item, v int) { it.Craftnumber = Int(v) }},
	{"c", func(it *Item, v int) { it.Crateseries = Int(v) }},
	{"p", func(it *Item, v int) { it.Paint = Int(v) }},
}

// Parse decodes an identifier string. A missing or "null" defindex/quality
// is left Unresolved rather than rejected; callers decide whether that is
// acceptable.
func Parse(s string) (Item, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Item{}, fmt.Errorf("%w: empty", ErrMalformed)
	}

	it := New()
	parts := strings.Split(s, ";")

	var err error
	if it.Defindex, err = required(parts[0]); err != nil {
		return Item{}, fmt.Errorf("%w: defindex %q", ErrMalformed, parts[0])
	}
	if len(parts) > 1 {
		if it.Quality, err = required(parts[1]); err != nil {
			return Item{}, fmt.Errorf("%w: quality %q", ErrMalformed, parts[1])
		}
	}

	for _, attr := range parts[min(len(parts), 2):] {
		attr = strings.ReplaceAll(strings.TrimSpace(attr), "-", "")
		switch attr {
		case "":
			continue
		case "uncraftable":
			it.Craftable = false
		case "untradable", "untradeable":
			it.Tradable = false
		case "australium":
			it.Australium = true
		case "festive":
			it.Festive = true
		case "strange":
			it.Quality2 = Int(11)
		default:
			if !setNumeric(&it, attr) {
				return Item{}, fmt.Errorf("%w: unknown attribute %q", ErrMalformed, attr)
			}
		}
	}
	return it, nil
}

func required(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "null" || s == "undefined" || s == "" {
		return Unresolved, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return Unresolved, ErrMalformed
	}
	return v, nil
}

func setNumeric(it *Item, attr string) bool {
	for _, na := range numericAttrs {
		rest, ok := strings.CutPrefix(attr, na.prefix)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		na.set(it, v)
		return true
	}
	return false
}
