package schema_test

import (
	"testing"

	"github.com/juniorISO69960/schema.autobot.tf/internal/schema/schematest"
	"github.com/juniorISO69960/schema.autobot.tf/internal/sku"
)

func TestNameRoundTrip(t *testing.T) {
	snap := schematest.Snapshot(t)

	tests := []struct {
		sku  string
		name string
	}{
		{"5021;6", "Mann Co. Supply Crate Key"},
		{"45;6", "Force-A-Nature"},
		{"45;3", "Vintage Force-A-Nature"},
		{"45;6;uncraftable", "Non-Craftable Force-A-Nature"},
		{"45;6;untradable", "Non-Tradable Force-A-Nature"},
		{"378;5;u13", "Burning Flames Team Captain"},
		{"378;6;p15185211", "Team Captain (Paint: Australium Gold)"},
		{"205;11;kt-3", "Strange Professional Killstreak Rocket Launcher"},
		{"205;6;kt-2;festive", "Festivized Specialized Killstreak Rocket Launcher"},
		{"15006;15;w3;pk102", "Smalltown Bringdown Rocket Launcher (Field-Tested)"},
		{"6527;6;kt-1;td-205", "Killstreak Rocket Launcher Kit"},
		{"5022;6;c1", "Mann Co. Supply Crate #1"},
		{"6003;6", "Strange Part: Scouts Killed"},
		{"378;5;strange", "Strange Unusual Team Captain"},
	}

	for _, tt := range tests {
		t.Run(tt.sku, func(t *testing.T) {
			item, err := sku.Parse(tt.sku)
			if err != nil {
				t.Fatalf("sku.Parse: %v", err)
			}
			name, ok := snap.Name(item, false, false)
			if !ok {
				t.Fatal("Name reported not found")
			}
			if name != tt.name {
				t.Errorf("Name = %q, want %q", name, tt.name)
			}

			back := snap.ItemFromName(name)
			if got := back.String(); got != tt.sku {
				t.Errorf("ItemFromName(%q) = %q, want %q", name, got, tt.sku)
			}
		})
	}
}

func TestNameFlags(t *testing.T) {
	snap := schematest.Snapshot(t)

	item, _ := sku.Parse("45;6")
	if name, _ := snap.Name(item, true, false); name != "The Force-A-Nature" {
		t.Errorf("proper name = %q", name)
	}
	if got := snap.ItemFromName("The Force-A-Nature").String(); got != "45;6" {
		t.Errorf("ItemFromName(The Force-A-Nature) = %q", got)
	}

	// Non-proper items never get the article.
	item, _ = sku.Parse("5021;6")
	if name, _ := snap.Name(item, true, false); name != "Mann Co. Supply Crate Key" {
		t.Errorf("proper flag on non-proper item = %q", name)
	}

	item, _ = sku.Parse("15006;15;w1;pk102")
	name, _ := snap.Name(item, false, true)
	if name != "Smalltown Bringdown | Rocket Launcher (Factory New)" {
		t.Errorf("pipe skin name = %q", name)
	}
	if got := snap.ItemFromName(name).String(); got != "15006;15;w1;pk102" {
		t.Errorf("ItemFromName(%q) = %q", name, got)
	}
}

func TestNameCaseInsensitive(t *testing.T) {
	snap := schematest.Snapshot(t)
	if got := snap.ItemFromName("  mann co. SUPPLY crate key "); got.String() != "5021;6" {
		t.Errorf("got %q", got.String())
	}
}

func TestNameUnknown(t *testing.T) {
	snap := schematest.Snapshot(t)

	if _, ok := snap.Name(sku.Item{Defindex: 99999, Quality: 6, Craftable: true, Tradable: true}, false, false); ok {
		t.Error("unknown defindex should not produce a name")
	}

	item := snap.ItemFromName("Definitely Not An Item")
	if item.Resolved() {
		t.Errorf("unknown name resolved to %q", item.String())
	}
	if item.Defindex != sku.Unresolved {
		t.Errorf("defindex = %d, want unresolved", item.Defindex)
	}
}

func TestNameSharedItemNamePrefersNonStock(t *testing.T) {
	snap := schematest.Snapshot(t)

	// Defindex 18 (stock, quality 0) and 205 share "Rocket Launcher"; the
	// name resolves to the non-stock entry.
	if got := snap.ItemFromName("Rocket Launcher").String(); got != "205;6" {
		t.Errorf("got %q, want 205;6", got)
	}

	item, _ := sku.Parse("18;0")
	name, _ := snap.Name(item, false, false)
	if name != "Normal Rocket Launcher" {
		t.Errorf("Name(18;0) = %q", name)
	}
	if got := snap.ItemFromName(name).String(); got != "205;0" {
		t.Errorf("ItemFromName(%q) = %q, want 205;0", name, got)
	}
}
