package sku

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseString(t *testing.T) {
	tests := []string{
		"5021;6",
		"200;11;australium;kt-3",
		"30743;5;u13",
		"15013;15;w3;pk50",
		"199;6;uncraftable",
		"5021;6;untradable",
		"424;5;u702;strange;festive",
		"6522;6;kt-3;td-200",
		"20005;6;od-6526;oq-6",
		"5022;6;c1",
		"5020;6;p7511618",
		"143;1;n100",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			it, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q): %v", s, err)
			}
			if got := it.String(); got != s {
				t.Errorf("String() = %q, want %q", got, s)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	it, err := Parse("15013;15;w3;pk50;strange;kt-2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if it.Defindex != 15013 || it.Quality != 15 {
		t.Errorf("defindex/quality = %d/%d", it.Defindex, it.Quality)
	}
	if it.Wear == nil || *it.Wear != 3 {
		t.Errorf("wear = %v, want 3", it.Wear)
	}
	if it.Paintkit == nil || *it.Paintkit != 50 {
		t.Errorf("paintkit = %v, want 50", it.Paintkit)
	}
	if it.Quality2 == nil || *it.Quality2 != 11 {
		t.Errorf("quality2 = %v, want 11", it.Quality2)
	}
	if it.Killstreak != 2 {
		t.Errorf("killstreak = %d, want 2", it.Killstreak)
	}
	if !it.Craftable || !it.Tradable {
		t.Error("expected craftable and tradable defaults")
	}
}

func TestParseUnresolved(t *testing.T) {
	for _, s := range []string{"null;6", "5021;null", "5021", "undefined;6"} {
		it, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if it.Resolved() {
			t.Errorf("Parse(%q) resolved, want unresolved", s)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, s := range []string{"", "  ", "abc;6", "5021;x", "5021;6;bogus", "-4;6"} {
		_, err := Parse(s)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) err = %v, want ErrMalformed", s, err)
		}
	}
}

func TestItemJSON(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"defindex":5021,"quality":6}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !it.Craftable || !it.Tradable {
		t.Error("omitted craftable/tradable should default to true")
	}
	if got := it.String(); got != "5021;6" {
		t.Errorf("String() = %q", got)
	}

	b, err := json.Marshal(New())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"defindex":null`) || !strings.Contains(string(b), `"quality":null`) {
		t.Errorf("unresolved fields should encode as null: %s", b)
	}
}
