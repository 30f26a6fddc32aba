package schema

import (
	"encoding/json"
	"strconv"
	"time"
)

// Snapshot is one fully built copy of the item schema plus its lookup
// tables. It is never modified after Parse returns it.
type Snapshot struct {
	Version   string
	Source    string
	FetchedAt time.Time

	// document is the compact upstream document, served as-is.
	document []byte

	raw     map[Section]map[string]json.RawMessage
	derived derived
}

// Document returns the compact JSON document the snapshot was built from.
// The returned slice must not be modified.
func (s *Snapshot) Document() []byte {
	return s.document
}

// Raw returns the undecoded value stored under key in the given raw section.
func (s *Snapshot) Raw(section Section, key string) (json.RawMessage, bool) {
	v, ok := s.raw[section][key]
	return v, ok
}

// ItemCount returns the number of schema items in the snapshot.
func (s *Snapshot) ItemCount() int {
	return len(s.derived.itemsByDefindex)
}

// Item is one entry of raw.schema.items, decoded for lookups. Raw keeps the
// undecoded upstream JSON so responses echo every upstream field.
type Item struct {
	Name              string          `json:"name"`
	Defindex          int             `json:"defindex"`
	ItemClass         string          `json:"item_class"`
	ItemTypeName      string          `json:"item_type_name"`
	ItemName          string          `json:"item_name"`
	ProperName        bool            `json:"proper_name"`
	ItemSlot          string          `json:"item_slot"`
	ItemQuality       int             `json:"item_quality"`
	CraftClass        string          `json:"craft_class"`
	CraftMaterialType string          `json:"craft_material_type"`
	UsedByClasses     []string        `json:"used_by_classes"`
	Attributes        []ItemAttribute `json:"attributes"`
	Tool              *struct {
		Type string `json:"type"`
	} `json:"tool"`

	Raw json.RawMessage `json:"-"`
}

// ItemAttribute is a static attribute attached to a schema item. Value is
// kept undecoded because upstream mixes numbers and strings.
type ItemAttribute struct {
	Name  string          `json:"name"`
	Class string          `json:"class"`
	Value json.RawMessage `json:"value"`
}

// Int returns the attribute value as an integer, accepting both JSON
// numbers and numeric strings.
func (a ItemAttribute) Int() (int, bool) {
	var f float64
	if err := json.Unmarshal(a.Value, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(a.Value, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Attribute returns the first static attribute with the given name.
func (it *Item) Attribute(name string) (ItemAttribute, bool) {
	for _, a := range it.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return ItemAttribute{}, false
}

// Document is the upstream wire format.
type Document struct {
	Version string `json:"version"`
	Time    int64  `json:"time"`
	Raw     struct {
		Schema    map[string]json.RawMessage `json:"schema"`
		ItemsGame map[string]json.RawMessage `json:"items_game"`
	} `json:"raw"`
}

// Killstreaks is the fixed killstreak tier table, keyed both ways.
var Killstreaks = map[string]any{
	"None":                    0,
	"Killstreak":              1,
	"Specialized Killstreak":  2,
	"Professional Killstreak": 3,
	"0":                       "None",
	"1":                       "Killstreak",
	"2":                       "Specialized Killstreak",
	"3":                       "Professional Killstreak",
}

// Wears is the fixed paintkit wear table, keyed both ways.
var Wears = map[string]any{
	"Factory New":    1,
	"Minimal Wear":   2,
	"Field-Tested":   3,
	"Well-Worn":      4,
	"Battle Scarred": 5,
	"1":              "Factory New",
	"2":              "Minimal Wear",
	"3":              "Field-Tested",
	"4":              "Well-Worn",
	"5":              "Battle Scarred",
}

var (
	killstreakNames = []string{"Killstreak", "Specialized Killstreak", "Professional Killstreak"}
	wearNames       = []string{"Factory New", "Minimal Wear", "Field-Tested", "Well-Worn", "Battle Scarred"}
)
