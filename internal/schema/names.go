package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/juniorISO69960/schema.autobot.tf/internal/sku"
)

const (
	qualityUnusual   = 5
	qualityUnique    = 6
	qualityStrange   = 11
	qualityDecorated = 15
)

// Name renders the full market name of item. It reports false when the
// item's defindex (or a referenced target/output item) is not in the schema.
func (s *Snapshot) Name(item sku.Item, proper, pipeForSkin bool) (string, bool) {
	base, ok := s.ItemByDefindex(item.Defindex)
	if !ok {
		return "", false
	}
	d := &s.derived

	var b strings.Builder
	if !item.Tradable {
		b.WriteString("Non-Tradable ")
	}
	if !item.Craftable {
		b.WriteString("Non-Craftable ")
	}
	if item.Quality2 != nil {
		b.WriteString(d.qualityNames[*item.Quality2])
		if item.Wear != nil || item.Paintkit != nil {
			b.WriteString("(e)")
		}
		b.WriteByte(' ')
	}
	if showQuality(item, base) {
		if q, ok := d.qualityNames[item.Quality]; ok {
			b.WriteString(q + " ")
		}
	}
	if item.Festive {
		b.WriteString("Festivized ")
	}
	if item.Effect != nil {
		if e, ok := d.effectNames[*item.Effect]; ok {
			b.WriteString(e + " ")
		}
	}
	if item.Killstreak > 0 && item.Killstreak <= len(killstreakNames) {
		b.WriteString(killstreakNames[item.Killstreak-1] + " ")
	}
	if item.Target != nil {
		target, ok := s.ItemByDefindex(*item.Target)
		if !ok {
			return "", false
		}
		b.WriteString(target.ItemName + " ")
	}
	if item.OutputQuality != nil && *item.OutputQuality != qualityUnique {
		if q, ok := d.qualityNames[*item.OutputQuality]; ok {
			b.WriteString(q + " ")
		}
	}
	if item.Output != nil {
		output, ok := s.ItemByDefindex(*item.Output)
		if !ok {
			return "", false
		}
		b.WriteString(output.ItemName + " ")
	}
	if item.Australium {
		b.WriteString("Australium ")
	}
	if item.Paintkit != nil {
		if pk, ok := d.paintkitNames[*item.Paintkit]; ok {
			b.WriteString(pk)
			if pipeForSkin {
				b.WriteString(" | ")
			} else {
				b.WriteByte(' ')
			}
		}
	}
	if proper && b.Len() == 0 && base.ProperName {
		b.WriteString("The ")
	}

	b.WriteString(base.ItemName)

	if item.Wear != nil && *item.Wear >= 1 && *item.Wear <= len(wearNames) {
		b.WriteString(" (" + wearNames[*item.Wear-1] + ")")
	}
	if item.Crateseries != nil && !strings.Contains(base.ItemName, "#") {
		b.WriteString(" #" + strconv.Itoa(*item.Crateseries))
	}
	if item.Craftnumber != nil {
		b.WriteString(" #" + strconv.Itoa(*item.Craftnumber))
	}
	if item.Paint != nil {
		if p, ok := d.paintNames[*item.Paint]; ok {
			b.WriteString(" (Paint: " + p + ")")
		}
	}
	return b.String(), true
}

// showQuality decides whether the quality prefix is part of the name.
// Unique and Decorated are implied, Unusual is implied by an effect.
func showQuality(item sku.Item, base *Item) bool {
	switch item.Quality {
	case qualityUnique, qualityDecorated:
		return base.ItemQuality == qualityUnusual
	case qualityUnusual:
		return item.Effect == nil || base.ItemQuality == qualityUnusual
	}
	return item.Quality >= 0
}

var (
	paintSuffix  = regexp.MustCompile(`(?i) \(paint: ([^)]+)\)$`)
	numberSuffix = regexp.MustCompile(` #(\d+)$`)
)

// ItemFromName parses a full market name back into a structured item.
// Fields that cannot be matched are left unresolved; in particular an
// unknown base name yields Defindex == sku.Unresolved.
func (s *Snapshot) ItemFromName(name string) sku.Item {
	d := &s.derived
	item := sku.New()
	rem := strings.ToLower(strings.TrimSpace(name))

	if m := paintSuffix.FindStringSubmatch(rem); m != nil {
		for pname, color := range d.paints {
			if strings.EqualFold(pname, m[1]) {
				item.Paint = sku.Int(color)
				rem = strings.TrimSuffix(rem, m[0])
				break
			}
		}
	}
	for i, w := range wearNames {
		if suffix := " (" + strings.ToLower(w) + ")"; strings.HasSuffix(rem, suffix) {
			item.Wear = sku.Int(i + 1)
			rem = strings.TrimSuffix(rem, suffix)
			break
		}
	}
	if m := numberSuffix.FindStringSubmatch(rem); m != nil && !s.exact(rem) {
		n, _ := strconv.Atoi(m[1])
		rem = strings.TrimSuffix(rem, m[0])
		if def, ok := d.defindexByName[rem]; ok && d.crateSeries[def] != 0 || strings.Contains(rem, "crate") || strings.Contains(rem, "case") {
			item.Crateseries = sku.Int(n)
		} else {
			item.Craftnumber = sku.Int(n)
		}
	}

	rem = s.stripPrefixes(rem, &item)

	if idx := strings.Index(rem, " | "); idx > 0 {
		if id, ok := d.paintkits[titleLookup(d.paintkits, rem[:idx])]; ok {
			item.Paintkit = sku.Int(id)
			rem = rem[idx+3:]
		}
	} else if !s.exact(rem) {
		if id, rest, ok := matchPrefix(d.paintkitPrefixes, rem); ok && s.exact(rest) {
			item.Paintkit = sku.Int(id)
			rem = rest
		}
	}

	if !s.exact(rem) {
		if rest, ok := strings.CutPrefix(rem, "the "); ok && s.exact(rest) {
			rem = rest
		}
	}

	if def, ok := d.defindexByName[rem]; ok {
		item.Defindex = def
		if item.Paintkit != nil {
			if dec, ok := s.decoratedVariant(rem, *item.Paintkit); ok {
				item.Defindex = dec
			}
		}
	} else if target, base, ok := s.splitTarget(rem); ok {
		item.Target = sku.Int(target)
		item.Defindex = base
	}

	if item.Quality == sku.Unresolved {
		switch {
		case item.Paintkit != nil:
			item.Quality = qualityDecorated
		case item.Effect != nil:
			item.Quality = qualityUnusual
		default:
			item.Quality = qualityUnique
		}
	}
	return item
}

// stripPrefixes consumes the leading modifiers of a lowercased name in the
// order Name emits them. It stops as soon as the remainder is an exact item
// name so that names like "Strange Part: Kills" are not split.
func (s *Snapshot) stripPrefixes(rem string, item *sku.Item) string {
	d := &s.derived

	for _, p := range []string{"non-tradable ", "non-tradeable ", "untradable "} {
		if rest, ok := strings.CutPrefix(rem, p); ok {
			item.Tradable = false
			rem = rest
			break
		}
	}
	for _, p := range []string{"non-craftable ", "uncraftable "} {
		if rest, ok := strings.CutPrefix(rem, p); ok {
			item.Craftable = false
			rem = rest
			break
		}
	}

	// Elevated strange: "Strange Unusual ...", "Strange(e) Haunted ...".
	if !s.exact(rem) {
		for _, p := range []string{"strange(e) ", "strange "} {
			rest, ok := strings.CutPrefix(rem, p)
			if !ok {
				continue
			}
			if id, _, ok := matchPrefix(d.qualityPrefixes, rest); ok && id != qualityStrange {
				item.Quality2 = sku.Int(qualityStrange)
				rem = rest
			} else if p == "strange(e) " {
				item.Quality2 = sku.Int(qualityStrange)
				rem = rest
			}
			break
		}
	}

	if !s.exact(rem) {
		if id, rest, ok := matchPrefix(d.qualityPrefixes, rem); ok && rest != "" {
			item.Quality = id
			rem = rest
		}
	}
	if !s.exact(rem) {
		if rest, ok := strings.CutPrefix(rem, "festivized "); ok {
			item.Festive = true
			rem = rest
		}
	}
	if !s.exact(rem) {
		if id, rest, ok := matchPrefix(d.effectPrefixes, rem); ok && rest != "" {
			item.Effect = sku.Int(id)
			rem = rest
		}
	}
	if !s.exact(rem) {
		for i := len(killstreakNames) - 1; i >= 0; i-- {
			if rest, ok := strings.CutPrefix(rem, strings.ToLower(killstreakNames[i])+" "); ok {
				item.Killstreak = i + 1
				rem = rest
				break
			}
		}
	}
	if !s.exact(rem) {
		if rest, ok := strings.CutPrefix(rem, "australium "); ok && s.exact(rest) {
			item.Australium = true
			rem = rest
		}
	}
	return rem
}

// splitTarget resolves names of the form "<target item> <base item>", as
// used by kits and strangifiers.
func (s *Snapshot) splitTarget(rem string) (target, base int, ok bool) {
	d := &s.derived
	for i := strings.IndexByte(rem, ' '); i > 0; i = nextSpace(rem, i) {
		t, tok := d.defindexByName[rem[:i]]
		b, bok := d.defindexByName[rem[i+1:]]
		if tok && bok {
			return t, b, true
		}
	}
	return 0, 0, false
}

// decoratedVariant picks the Decorated Weapon entry for a base name and
// paintkit. Decorated entries carry the skin in their internal name.
func (s *Snapshot) decoratedVariant(lowerName string, paintkit int) (int, bool) {
	d := &s.derived
	candidates := d.decorated[lowerName]
	if len(candidates) == 0 {
		return 0, false
	}
	skin := strings.ReplaceAll(strings.ToLower(d.paintkitNames[paintkit]), " ", "")
	for _, def := range candidates {
		if skin != "" && strings.Contains(strings.ToLower(d.itemsByDefindex[def].Name), skin) {
			return def, true
		}
	}
	return candidates[0], true
}

func nextSpace(s string, after int) int {
	j := strings.IndexByte(s[after+1:], ' ')
	if j < 0 {
		return -1
	}
	return after + 1 + j
}

func (s *Snapshot) exact(lower string) bool {
	_, ok := s.derived.defindexByName[lower]
	return ok
}

// matchPrefix finds the longest name in prefixes that starts rem and is
// followed by a space. It returns the id and the remainder after the space.
func matchPrefix(prefixes []namedID, rem string) (int, string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(rem, p.lower+" "); ok {
			return p.id, rest, true
		}
	}
	return 0, "", false
}

// titleLookup returns the key of m equal to lower ignoring case.
func titleLookup(m map[string]int, lower string) string {
	for k := range m {
		if strings.EqualFold(k, lower) {
			return k
		}
	}
	return ""
}
