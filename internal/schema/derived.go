package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// builtinStrangeParts are kill-eater counters that ship on items and are
// never applied as parts.
var builtinStrangeParts = map[string]bool{
	"Ubers":                         true,
	"Kill Assists":                  true,
	"Sentry Kills":                  true,
	"Sodden Victims":                true,
	"Spies Shocked":                 true,
	"Heads Taken":                   true,
	"Humiliations":                  true,
	"Gifts Given":                   true,
	"Deaths Feigned":                true,
	"Buildings Sapped":              true,
	"Tickle Fights Won":             true,
	"Opponents Flattened":           true,
	"Food Items Eaten":              true,
	"Banners Deployed":              true,
	"Seconds Cloaked":               true,
	"Health Dispensed to Teammates": true,
	"Teammates Teleported":          true,
	"Points Scored":                 true,
	"Double Donks":                  true,
	"Teammates Whipped":             true,
	"Wrangled Sentry Kills":         true,
	"Carnival Kills":                true,
	"Carnival Underworld Kills":     true,
	"Carnival Games Won":            true,
	"Contracts Completed":           true,
	"Contract Points":               true,
	"Contract Bonus Points":         true,
	"Times Performed":               true,
	"Kills and Assists during Invasion Event": true,
	"Kills and Assists on 2Fort Invasion":     true,
	"Kills and Assists on Probed":             true,
	"Kills and Assists on Byre":               true,
	"Kills and Assists on Watergate":          true,
	"Souls Collected":                         true,
	"Merasmissions Completed":                 true,
	"Halloween Transmutes Performed":          true,
	"Power Up Canteens Used":                  true,
	"Contract Points Earned":                  true,
	"Contract Points Contributed To Friends":  true,
	"KillEaterEvent_UniquePlayerKills":        true,
}

// craftExcludedPrefixes mark promotional weapon reskins that share stats
// with a craftable weapon but are not traded as craft weapons.
var craftExcludedPrefixes = []string{"Festive ", "Botkiller ", "Upgradeable ", "Promo "}

type namedID struct {
	lower string
	id    int
}

type derived struct {
	qualities    map[string]int
	qualityNames map[int]string

	effects     map[string]int
	effectNames map[int]string

	paintkits     map[string]int
	paintkitNames map[int]string

	paints     map[string]int
	paintNames map[int]string

	crateSeries  map[int]int
	strangeParts map[string]int

	craftWeapons   []string
	uncraftWeapons []string
	classWeapons   map[string][]string

	itemsByDefindex map[int]*Item
	defindexByName  map[string]int
	decorated       map[string][]int
	itemsGameItems  map[string]json.RawMessage

	// longest-first lowercase names for prefix matching while parsing names
	qualityPrefixes  []namedID
	effectPrefixes   []namedID
	paintkitPrefixes []namedID
}

// Derived returns the precomputed table for a category. The returned value
// is shared with every reader and must be treated as read-only.
func (s *Snapshot) Derived(c Category) (any, bool) {
	d := &s.derived
	switch c {
	case CategoryQualities:
		return d.qualities, true
	case CategoryEffects:
		return d.effects, true
	case CategoryPaintkits:
		return d.paintkits, true
	case CategoryPaints:
		return d.paints, true
	case CategoryCrateSeries:
		return d.crateSeries, true
	case CategoryStrangeParts:
		return d.strangeParts, true
	case CategoryCraftWeapons:
		return d.craftWeapons, true
	case CategoryUncraftWeapons:
		return d.uncraftWeapons, true
	case CategoryClassWeapons:
		return d.classWeapons, true
	case CategoryItemsByDefindex:
		return d.itemsByDefindex, true
	case CategoryDefindexByName:
		return d.defindexByName, true
	}
	return nil, false
}

// ItemByDefindex returns the schema item with the given defindex.
func (s *Snapshot) ItemByDefindex(defindex int) (*Item, bool) {
	it, ok := s.derived.itemsByDefindex[defindex]
	return it, ok
}

// ItemsGameItem returns raw.items_game.items[defindex], if present.
func (s *Snapshot) ItemsGameItem(defindex int) (json.RawMessage, bool) {
	v, ok := s.derived.itemsGameItems[strconv.Itoa(defindex)]
	return v, ok
}

// ClassWeapons returns the craftable weapon skus usable by class. class
// must already be in canonical form (see Classes).
func (s *Snapshot) ClassWeapons(class string) []string {
	return s.derived.classWeapons[class]
}

func buildDerived(rawSchema, rawItemsGame map[string]json.RawMessage) (derived, error) {
	d := derived{
		qualities:       make(map[string]int),
		qualityNames:    make(map[int]string),
		effects:         make(map[string]int),
		effectNames:     make(map[int]string),
		paintkits:       make(map[string]int),
		paintkitNames:   make(map[int]string),
		paints:          make(map[string]int),
		paintNames:      make(map[int]string),
		crateSeries:     make(map[int]int),
		strangeParts:    make(map[string]int),
		classWeapons:    make(map[string][]string, len(Classes)),
		itemsByDefindex: make(map[int]*Item),
		defindexByName:  make(map[string]int),
		decorated:       make(map[string][]int),
	}

	if err := d.buildQualities(rawSchema); err != nil {
		return derived{}, err
	}
	if err := d.buildItems(rawSchema); err != nil {
		return derived{}, err
	}
	if err := d.buildEffects(rawSchema); err != nil {
		return derived{}, err
	}
	if err := d.buildPaintkits(rawSchema); err != nil {
		return derived{}, err
	}
	if err := d.buildStrangeParts(rawSchema); err != nil {
		return derived{}, err
	}

	if v, ok := rawItemsGame["items"]; ok {
		if err := json.Unmarshal(v, &d.itemsGameItems); err != nil {
			return derived{}, fmt.Errorf("decoding items_game.items: %w", err)
		}
	}

	d.qualityPrefixes = prefixesOf(d.qualities)
	d.effectPrefixes = prefixesOf(d.effects)
	d.paintkitPrefixes = prefixesOf(d.paintkits)
	return d, nil
}

func (d *derived) buildQualities(rawSchema map[string]json.RawMessage) error {
	raw, ok := rawSchema["qualities"]
	if !ok {
		return fmt.Errorf("schema.qualities missing")
	}
	var ids map[string]int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("decoding schema.qualities: %w", err)
	}
	var names map[string]string
	if v, ok := rawSchema["qualityNames"]; ok {
		if err := json.Unmarshal(v, &names); err != nil {
			return fmt.Errorf("decoding schema.qualityNames: %w", err)
		}
	}

	for key, id := range ids {
		name := names[key]
		if name == "" {
			name = key
		}
		d.qualities[name] = id
		d.qualityNames[id] = name
	}
	return nil
}

func (d *derived) buildItems(rawSchema map[string]json.RawMessage) error {
	raw, ok := rawSchema["items"]
	if !ok {
		return fmt.Errorf("schema.items missing")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("decoding schema.items: %w", err)
	}

	for i, entry := range entries {
		it := &Item{Raw: entry}
		if err := json.Unmarshal(entry, it); err != nil {
			return fmt.Errorf("decoding schema.items[%d]: %w", i, err)
		}
		d.itemsByDefindex[it.Defindex] = it

		if attr, ok := it.Attribute("set supply crate series"); ok {
			if series, ok := attr.Int(); ok {
				d.crateSeries[it.Defindex] = series
			}
		}
		if it.Tool != nil && it.Tool.Type == "paint_can" {
			if attr, ok := it.Attribute("set item tint RGB"); ok {
				if color, ok := attr.Int(); ok {
					d.paints[it.ItemName] = color
					if _, dup := d.paintNames[color]; !dup {
						d.paintNames[color] = it.ItemName
					}
				}
			}
		}
	}

	// Index names and weapon lists in defindex order so ties resolve the
	// same way on every build.
	defindexes := slices.Sorted(maps.Keys(d.itemsByDefindex))
	for _, defindex := range defindexes {
		it := d.itemsByDefindex[defindex]
		d.indexName(it)
		if it.ItemQuality == qualityDecorated {
			key := strings.ToLower(it.ItemName)
			d.decorated[key] = append(d.decorated[key], defindex)
		}

		if !craftableWeapon(it) {
			continue
		}
		craft := fmt.Sprintf("%d;6", defindex)
		d.craftWeapons = append(d.craftWeapons, craft)
		d.uncraftWeapons = append(d.uncraftWeapons, craft+";uncraftable")
		for _, class := range it.UsedByClasses {
			d.classWeapons[class] = append(d.classWeapons[class], craft)
		}
	}
	return nil
}

// indexName maps a lowercased item name to a defindex. When several items
// share a name the first one that is not stock (quality 0) wins.
func (d *derived) indexName(it *Item) {
	if it.ItemName == "" {
		return
	}
	key := strings.ToLower(it.ItemName)
	prev, ok := d.defindexByName[key]
	if !ok {
		d.defindexByName[key] = it.Defindex
		return
	}
	if d.itemsByDefindex[prev].ItemQuality == 0 && it.ItemQuality != 0 {
		d.defindexByName[key] = it.Defindex
	}
}

func craftableWeapon(it *Item) bool {
	if it.CraftClass != "weapon" || it.ItemQuality != 6 {
		return false
	}
	for _, p := range craftExcludedPrefixes {
		if strings.HasPrefix(it.ItemName, p) || strings.HasPrefix(it.Name, p) {
			return false
		}
	}
	return true
}

func (d *derived) buildEffects(rawSchema map[string]json.RawMessage) error {
	raw, ok := rawSchema["attribute_controlled_attached_particles"]
	if !ok {
		return nil
	}
	var particles []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &particles); err != nil {
		return fmt.Errorf("decoding schema.attribute_controlled_attached_particles: %w", err)
	}
	for _, p := range particles {
		if p.Name == "" {
			continue
		}
		d.effectNames[p.ID] = p.Name
		if prev, dup := d.effects[p.Name]; !dup || p.ID < prev {
			d.effects[p.Name] = p.ID
		}
	}
	return nil
}

func (d *derived) buildPaintkits(rawSchema map[string]json.RawMessage) error {
	raw, ok := rawSchema["paintkits"]
	if !ok {
		return nil
	}
	var kits map[string]string
	if err := json.Unmarshal(raw, &kits); err != nil {
		return fmt.Errorf("decoding schema.paintkits: %w", err)
	}
	for idStr, name := range kits {
		id, err := strconv.Atoi(idStr)
		if err != nil || name == "" {
			continue
		}
		d.paintkitNames[id] = name
		if prev, dup := d.paintkits[name]; !dup || id < prev {
			d.paintkits[name] = id
		}
	}
	return nil
}

func (d *derived) buildStrangeParts(rawSchema map[string]json.RawMessage) error {
	raw, ok := rawSchema["kill_eater_score_types"]
	if !ok {
		return nil
	}
	var types []struct {
		Type     int    `json:"type"`
		TypeName string `json:"type_name"`
	}
	if err := json.Unmarshal(raw, &types); err != nil {
		return fmt.Errorf("decoding schema.kill_eater_score_types: %w", err)
	}
	for _, t := range types {
		if t.Type == 0 || t.Type == 97 || builtinStrangeParts[t.TypeName] {
			continue
		}
		d.strangeParts[t.TypeName] = t.Type
	}
	return nil
}

func prefixesOf(m map[string]int) []namedID {
	out := make([]namedID, 0, len(m))
	for name, id := range m {
		out = append(out, namedID{lower: strings.ToLower(name), id: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].lower) != len(out[j].lower) {
			return len(out[i].lower) > len(out[j].lower)
		}
		return out[i].lower < out[j].lower
	})
	return out
}
