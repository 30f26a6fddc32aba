// Package schematest provides a small but realistic schema document for
// tests of the packages built on top of internal/schema.
package schematest

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
)

// DocumentJSON is a trimmed schema document covering every lookup table.
const DocumentJSON = `{
  "version": "test-1",
  "time": 1700000000000,
  "raw": {
    "schema": {
      "items_game_url": "http://media.steampowered.com/apps/440/scripts/items/items_game.test.txt",
      "qualities": {
        "Normal": 0, "rarity1": 1, "vintage": 3, "rarity4": 5, "Unique": 6,
        "strange": 11, "haunted": 13, "collectors": 14, "paintkitweapon": 15
      },
      "qualityNames": {
        "Normal": "Normal", "rarity1": "Genuine", "vintage": "Vintage", "rarity4": "Unusual",
        "Unique": "Unique", "strange": "Strange", "haunted": "Haunted",
        "collectors": "Collector's", "paintkitweapon": "Decorated Weapon"
      },
      "originNames": [{"origin": 0, "name": "Timed Drop"}],
      "attribute_controlled_attached_particles": [
        {"system": "burningflames", "id": 13, "attach_to_rootbone": false, "name": "Burning Flames"},
        {"system": "sunbeams", "id": 17, "attach_to_rootbone": false, "name": "Sunbeams"},
        {"system": "isotope", "id": 702, "attach_to_rootbone": false, "name": "Isotope"}
      ],
      "paintkits": {"102": "Smalltown Bringdown", "214": "Night Owl"},
      "kill_eater_score_types": [
        {"type": 0, "type_name": "Kills", "level_data": "KillEaterRank"},
        {"type": 1, "type_name": "Ubers", "level_data": "KillEaterRank"},
        {"type": 10, "type_name": "Scouts Killed", "level_data": "KillEaterRank"},
        {"type": 64, "type_name": "Kills While Explosive-Jumping", "level_data": "KillEaterRank"}
      ],
      "items": [
        {"name": "TF_WEAPON_SHOTGUN_SOLDIER", "defindex": 10, "item_class": "tf_weapon_shotgun_soldier", "item_type_name": "Shotgun", "item_name": "Shotgun", "proper_name": false, "item_slot": "secondary", "item_quality": 0, "used_by_classes": ["Soldier"]},
        {"name": "TF_WEAPON_ROCKETLAUNCHER", "defindex": 18, "item_class": "tf_weapon_rocketlauncher", "item_type_name": "Rocket Launcher", "item_name": "Rocket Launcher", "proper_name": false, "item_slot": "primary", "item_quality": 0, "used_by_classes": ["Soldier"]},
        {"name": "The Force-A-Nature", "defindex": 45, "item_class": "tf_weapon_scattergun", "item_type_name": "Scattergun", "item_name": "Force-A-Nature", "proper_name": true, "item_slot": "primary", "item_quality": 6, "craft_class": "weapon", "craft_material_type": "weapon", "used_by_classes": ["Scout"]},
        {"name": "The Direct Hit", "defindex": 127, "item_class": "tf_weapon_rocketlauncher_directhit", "item_type_name": "Rocket Launcher", "item_name": "Direct Hit", "proper_name": true, "item_slot": "primary", "item_quality": 6, "craft_class": "weapon", "craft_material_type": "weapon", "used_by_classes": ["Soldier"]},
        {"name": "Upgradeable TF_WEAPON_SCATTERGUN", "defindex": 200, "item_class": "tf_weapon_scattergun", "item_type_name": "Scattergun", "item_name": "Scattergun", "proper_name": false, "item_slot": "primary", "item_quality": 6, "used_by_classes": ["Scout"]},
        {"name": "Upgradeable TF_WEAPON_ROCKETLAUNCHER", "defindex": 205, "item_class": "tf_weapon_rocketlauncher", "item_type_name": "Rocket Launcher", "item_name": "Rocket Launcher", "proper_name": false, "item_slot": "primary", "item_quality": 6, "used_by_classes": ["Soldier"]},
        {"name": "The Shortstop", "defindex": 220, "item_class": "tf_weapon_handgun_scout_primary", "item_type_name": "Peppergun", "item_name": "Shortstop", "proper_name": true, "item_slot": "primary", "item_quality": 6, "craft_class": "weapon", "craft_material_type": "weapon", "used_by_classes": ["Scout"]},
        {"name": "Team Captain", "defindex": 378, "item_class": "tf_wearable", "item_type_name": "Hat", "item_name": "Team Captain", "proper_name": true, "item_slot": "head", "item_quality": 6, "craft_class": "hat", "craft_material_type": "hat", "used_by_classes": ["Scout", "Soldier", "Pyro", "Demoman", "Heavy", "Engineer", "Medic", "Sniper", "Spy"]},
        {"name": "Festive Scattergun", "defindex": 669, "item_class": "tf_weapon_scattergun", "item_type_name": "Scattergun", "item_name": "Festive Scattergun", "proper_name": false, "item_slot": "primary", "item_quality": 6, "craft_class": "weapon", "used_by_classes": ["Scout"]},
        {"name": "Decoder Ring", "defindex": 5021, "item_class": "tool", "item_type_name": "Tool", "item_name": "Mann Co. Supply Crate Key", "proper_name": false, "item_slot": "action", "item_quality": 6, "craft_class": "tool", "tool": {"type": "decoder_ring"}},
        {"name": "Supply Crate 1", "defindex": 5022, "item_class": "supply_crate", "item_type_name": "Crate", "item_name": "Mann Co. Supply Crate", "proper_name": false, "item_slot": "action", "item_quality": 6, "tool": {"type": "supply_crate"}, "attributes": [{"name": "set supply crate series", "class": "supply_crate_series", "value": 1}]},
        {"name": "Paint Can 15185211", "defindex": 5037, "item_class": "tool", "item_type_name": "Tool", "item_name": "Australium Gold", "proper_name": false, "item_slot": "action", "item_quality": 6, "tool": {"type": "paint_can"}, "attributes": [{"name": "set item tint RGB", "class": "set_item_tint_rgb", "value": 15185211}]},
        {"name": "Strange Part: Scouts Killed", "defindex": 6003, "item_class": "tool", "item_type_name": "Strange Part", "item_name": "Strange Part: Scouts Killed", "proper_name": false, "item_slot": "action", "item_quality": 6, "tool": {"type": "strange_part"}},
        {"name": "Killstreak Kit", "defindex": 6527, "item_class": "tool", "item_type_name": "Killstreak Kit", "item_name": "Kit", "proper_name": false, "item_slot": "action", "item_quality": 6, "tool": {"type": "killstreakifier"}},
        {"name": "concealedkiller_rocketlauncher_smalltownbringdown", "defindex": 15006, "item_class": "tf_weapon_rocketlauncher", "item_type_name": "Rocket Launcher", "item_name": "Rocket Launcher", "proper_name": false, "item_slot": "primary", "item_quality": 15, "used_by_classes": ["Soldier"]}
      ],
      "attributes": [{"name": "set supply crate series", "defindex": 187}],
      "item_sets": [],
      "item_levels": []
    },
    "items_game": {
      "game_info": {"first_valid_class": "1", "last_valid_class": "9"},
      "qualities": {"unique": {"value": "6"}},
      "rarities": {},
      "items": {
        "5021": {"name": "Decoder Ring", "prefab": "valve tool", "item_name": "#TF_Tool_DecoderRing"},
        "45": {"name": "The Force-A-Nature", "prefab": "weapon_scattergun"}
      },
      "war_definitions": {"0": {"name": "Heavy vs Pyro"}}
    }
  }
}`

// Document returns a fresh copy of DocumentJSON.
func Document() []byte {
	return []byte(DocumentJSON)
}

// Logger returns a logger that discards everything below warn level.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// Snapshot parses DocumentJSON.
func Snapshot(tb testing.TB) *schema.Snapshot {
	tb.Helper()
	snap, err := schema.Parse(Document(), "test", time.Now(), Logger())
	if err != nil {
		tb.Fatalf("parse test schema: %v", err)
	}
	return snap
}

// Store returns a store with the test snapshot installed.
func Store(tb testing.TB) *schema.Store {
	tb.Helper()
	store := schema.NewStore()
	store.Install(Snapshot(tb))
	return store
}
