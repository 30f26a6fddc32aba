package schema

import "slices"

// Section names one of the two top-level namespaces of the raw document.
type Section string

const (
	SectionSchema    Section = "schema"
	SectionItemsGame Section = "items_game"
)

// Sections lists the raw sections in document order.
var Sections = []Section{SectionSchema, SectionItemsGame}

var sectionKeys = map[Section][]string{
	SectionSchema: {
		"items_game_url",
		"qualities",
		"qualityNames",
		"originNames",
		"attributes",
		"item_sets",
		"attribute_controlled_attached_particles",
		"item_levels",
		"kill_eater_score_types",
		"string_lookups",
		"items",
		"paintkits",
	},
	SectionItemsGame: {
		"game_info",
		"qualities",
		"colors",
		"rarities",
		"equip_regions_list",
		"equip_conflicts",
		"quest_objective_conditions",
		"item_series_types",
		"item_collections",
		"operations",
		"prefabs",
		"items",
		"attributes",
		"item_criteria_templates",
		"random_attribute_templates",
		"lootlist_job_template_definitions",
		"item_sets",
		"client_loot_lists",
		"revolving_loot_lists",
		"recipes",
		"achievement_rewards",
		"attribute_controlled_attached_particles",
		"armory_data",
		"item_levels",
		"kill_eater_score_types",
		"mvm_maps",
		"mvm_tours",
		"matchmaking_categories",
		"maps",
		"master_maps_list",
		"steam_packages",
		"string_lookups",
		"community_market_item_remaps",
		"war_definitions",
	},
}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	_, ok := sectionKeys[s]
	return ok
}

// Keys returns a copy of the addressable keys of the section.
func (s Section) Keys() []string {
	return slices.Clone(sectionKeys[s])
}

// HasKey reports whether key is addressable in the section.
func (s Section) HasKey(key string) bool {
	return slices.Contains(sectionKeys[s], key)
}

// Category names one precomputed lookup table of a snapshot.
type Category string

const (
	CategoryQualities       Category = "qualities"
	CategoryEffects         Category = "effects"
	CategoryPaintkits       Category = "paintkits"
	CategoryPaints          Category = "paints"
	CategoryCrateSeries     Category = "crateseries"
	CategoryStrangeParts    Category = "strangeParts"
	CategoryCraftWeapons    Category = "craftWeapons"
	CategoryUncraftWeapons  Category = "uncraftWeapons"
	CategoryClassWeapons    Category = "classWeapons"
	CategoryItemsByDefindex Category = "itemsByDefindex"
	CategoryDefindexByName  Category = "defindexByName"
)

// Classes is the fixed set of playable character classes.
var Classes = []string{
	"Scout",
	"Soldier",
	"Pyro",
	"Demoman",
	"Heavy",
	"Engineer",
	"Medic",
	"Sniper",
	"Spy",
}
