// Package query answers read requests against the current schema snapshot.
// Every operation loads the snapshot once and never blocks on a refresh.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
	"github.com/juniorISO69960/schema.autobot.tf/internal/sku"
)

var (
	// ErrNotFound means the lookup was well formed but matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidKey means a raw key is outside its section's enumeration.
	ErrInvalidKey = errors.New("invalid key")
	// ErrInvalidClass means a character class is not one of schema.Classes.
	ErrInvalidClass = errors.New("invalid character class")
	// ErrNoDefindex means a name or identifier did not resolve to a defindex.
	ErrNoDefindex = fmt.Errorf("%w: defindex is null", ErrNotFound)
)

// Property names a simplified lookup table.
type Property string

const (
	PropQualities      Property = "qualities"
	PropKillstreaks    Property = "killstreaks"
	PropEffects        Property = "effects"
	PropPaintkits      Property = "paintkits"
	PropWears          Property = "wears"
	PropCrateSeries    Property = "crateseries"
	PropPaints         Property = "paints"
	PropStrangeParts   Property = "strangeParts"
	PropCraftWeapons   Property = "craftWeapons"
	PropUncraftWeapons Property = "uncraftWeapons"
)

// Properties lists every Property in route order.
var Properties = []Property{
	PropQualities, PropKillstreaks, PropEffects, PropPaintkits, PropWears,
	PropCrateSeries, PropPaints, PropStrangeParts, PropCraftWeapons, PropUncraftWeapons,
}

var propertyCategory = map[Property]schema.Category{
	PropQualities:      schema.CategoryQualities,
	PropEffects:        schema.CategoryEffects,
	PropPaintkits:      schema.CategoryPaintkits,
	PropCrateSeries:    schema.CategoryCrateSeries,
	PropPaints:         schema.CategoryPaints,
	PropStrangeParts:   schema.CategoryStrangeParts,
	PropCraftWeapons:   schema.CategoryCraftWeapons,
	PropUncraftWeapons: schema.CategoryUncraftWeapons,
}

// Entry pairs a schema item with its items_game definition, if any.
type Entry struct {
	SchemaItem    json.RawMessage `json:"schemaItems"`
	ItemsGameItem json.RawMessage `json:"items_gameItems,omitempty"`
}

// Facade exposes read projections over a schema.Store.
type Facade struct {
	store *schema.Store
}

// New creates a Facade reading from store.
func New(store *schema.Store) *Facade {
	return &Facade{store: store}
}

// Snapshot returns the active snapshot or schema.ErrNotReady.
func (f *Facade) Snapshot() (*schema.Snapshot, error) {
	return f.store.Current()
}

// Property returns a simplified lookup table. Killstreaks and wears are
// static and available before the first snapshot.
func (f *Facade) Property(p Property) (any, error) {
	switch p {
	case PropKillstreaks:
		return schema.Killstreaks, nil
	case PropWears:
		return schema.Wears, nil
	}
	c, ok := propertyCategory[p]
	if !ok {
		return nil, fmt.Errorf("%w: property %q", ErrNotFound, p)
	}
	snap, err := f.store.Current()
	if err != nil {
		return nil, err
	}
	v, _ := snap.Derived(c)
	return v, nil
}

// RawValue returns raw[section][key]. The key is validated against the
// section's fixed key list before the snapshot is consulted.
func (f *Facade) RawValue(section schema.Section, key string) (json.RawMessage, error) {
	if !section.Valid() {
		return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidKey, section)
	}
	if !section.HasKey(key) {
		return nil, fmt.Errorf("%w: %q is not a key of raw.%s", ErrInvalidKey, key, section)
	}
	snap, err := f.store.Current()
	if err != nil {
		return nil, err
	}
	v, ok := snap.Raw(section, key)
	if !ok {
		return nil, fmt.Errorf("%w: raw.%s.%s", ErrNotFound, section, key)
	}
	return v, nil
}

// NameFromItem renders the market name of item.
func (f *Facade) NameFromItem(item sku.Item, proper, pipeForSkin bool) (string, error) {
	snap, err := f.store.Current()
	if err != nil {
		return "", err
	}
	name, ok := snap.Name(item, proper, pipeForSkin)
	if !ok {
		return "", fmt.Errorf("%w: no item with defindex %d", ErrNotFound, item.Defindex)
	}
	return name, nil
}

// NameFromSKU parses s and renders its market name.
func (f *Facade) NameFromSKU(s string, proper, pipeForSkin bool) (string, error) {
	item, err := sku.Parse(s)
	if err != nil {
		return "", err
	}
	return f.NameFromItem(item, proper, pipeForSkin)
}

// SKUFromItem encodes item. Items with an unresolved defindex or quality
// have no identifier.
func (f *Facade) SKUFromItem(item sku.Item) (string, error) {
	if !item.Resolved() {
		return "", fmt.Errorf("%w: item has unresolved defindex or quality", ErrNotFound)
	}
	return item.String(), nil
}

// SKUFromName resolves a market name to its identifier.
func (f *Facade) SKUFromName(name string) (string, error) {
	item, err := f.ItemFromName(name)
	if err != nil {
		return "", err
	}
	return f.SKUFromItem(item)
}

// ItemFromName parses a market name. Parts that cannot be matched stay
// unresolved in the returned item.
func (f *Facade) ItemFromName(name string) (sku.Item, error) {
	snap, err := f.store.Current()
	if err != nil {
		return sku.Item{}, err
	}
	return snap.ItemFromName(name), nil
}

// ItemFromSKU parses an identifier string.
func (f *Facade) ItemFromSKU(s string) (sku.Item, error) {
	return sku.Parse(s)
}

// EntryFromDefindex returns the schema entry for defindex.
func (f *Facade) EntryFromDefindex(defindex int) (Entry, error) {
	snap, err := f.store.Current()
	if err != nil {
		return Entry{}, err
	}
	return entry(snap, defindex)
}

// EntryFromName resolves name and returns its schema entry.
func (f *Facade) EntryFromName(name string) (Entry, error) {
	snap, err := f.store.Current()
	if err != nil {
		return Entry{}, err
	}
	item := snap.ItemFromName(name)
	if item.Defindex == sku.Unresolved {
		return Entry{}, fmt.Errorf("%w: no item named %q", ErrNoDefindex, name)
	}
	return entry(snap, item.Defindex)
}

// EntryFromSKU parses s and returns the schema entry of its defindex.
func (f *Facade) EntryFromSKU(s string) (Entry, error) {
	item, err := sku.Parse(s)
	if err != nil {
		return Entry{}, err
	}
	if item.Defindex == sku.Unresolved {
		return Entry{}, fmt.Errorf("%w: sku %q", ErrNoDefindex, s)
	}
	return f.EntryFromDefindex(item.Defindex)
}

func entry(snap *schema.Snapshot, defindex int) (Entry, error) {
	it, ok := snap.ItemByDefindex(defindex)
	if !ok {
		return Entry{}, fmt.Errorf("%w: no item with defindex %d", ErrNotFound, defindex)
	}
	e := Entry{SchemaItem: it.Raw}
	if v, ok := snap.ItemsGameItem(defindex); ok {
		e.ItemsGameItem = v
	}
	return e, nil
}

// NormalizeClass accepts a class name exactly as listed in schema.Classes,
// or the same name with a lower-case first letter.
func NormalizeClass(class string) (string, bool) {
	r, size := utf8.DecodeRuneInString(class)
	if size == 0 {
		return "", false
	}
	// Casers keep state and are not shared between goroutines.
	c := cases.Upper(language.English).String(string(r)) + class[size:]
	if slices.Contains(schema.Classes, c) {
		return c, true
	}
	return "", false
}

// ClassWeapons returns the craftable weapon identifiers usable by class.
func (f *Facade) ClassWeapons(class string) ([]string, error) {
	canonical, ok := NormalizeClass(class)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidClass, class)
	}
	snap, err := f.store.Current()
	if err != nil {
		return nil, err
	}
	weapons := snap.ClassWeapons(canonical)
	if weapons == nil {
		weapons = []string{}
	}
	return weapons, nil
}
