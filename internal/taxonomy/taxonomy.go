// Package taxonomy holds the closed category sets of each rehabilitated
// record kind, in their canonical display order.
package taxonomy

import (
	"fmt"
	"strings"
)

// Kind identifies a categorised record type.
type Kind string

const (
	KindCabinet Kind = "cabinet"
	KindAsset   Kind = "asset"
	KindSpare   Kind = "spare"
)

// Category is one taxonomy entry: a canonical key plus its Arabic label.
type Category struct {
	Key   string
	Label string
}

var (
	cabinets = []Category{
		{"ATS", "ATS"},
		{"AMF", "AMF"},
		{"HYBRID", "HYBRID"},
		{"InverterProtection", "حماية انفرتر"},
		{"ControlHarness", "ظفيرة تحكم"},
	}
	assets = []Category{
		{"Batteries", "بطاريات"},
		{"Rectifiers", "موحدات"},
		{"Motors", "محركات"},
		{"Generators", "مولدات"},
		{"ACUnits", "مكيفات"},
		{"OtherAssets", "أصول أخرى"},
	}
	spares = []Category{
		{"DieselPumps", "مضخات الديزل"},
		{"Nozzles", "النوزلات"},
		{"Starters", "سلف"},
		{"ChargingDynamo", "دينمو شحن"},
		{"CardsAndChargers", "كروت وشواحن"},
		{"Modules", "موديولات"},
		{"RegulatorsAndInverters", "منظمات وانفرترات"},
		{"Grounding", "تسييخ"},
		{"Other", "أخرى"},
	}

	byKind = map[Kind][]Category{
		KindCabinet: cabinets,
		KindAsset:   assets,
		KindSpare:   spares,
	}

	// aliases maps lower-cased keys and labels to canonical keys, per kind.
	aliases = buildAliases()
)

func buildAliases() map[Kind]map[string]string {
	out := make(map[Kind]map[string]string, len(byKind))
	for kind, cats := range byKind {
		m := make(map[string]string, len(cats)*2)
		for _, c := range cats {
			m[strings.ToLower(c.Key)] = c.Key
			m[strings.ToLower(c.Label)] = c.Key
		}
		out[kind] = m
	}
	return out
}

// Kinds returns the categorised kinds in report order.
func Kinds() []Kind {
	return []Kind{KindCabinet, KindAsset, KindSpare}
}

// ParseKind accepts the singular or plural kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cabinet", "cabinets", "cab":
		return KindCabinet, nil
	case "asset", "assets", "ast":
		return KindAsset, nil
	case "spare", "spares", "spa":
		return KindSpare, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Valid reports whether k is a categorised kind.
func (k Kind) Valid() bool {
	_, ok := byKind[k]
	return ok
}

// Weighted reports whether aggregation sums quantity (assets, spares) or
// counts rows (cabinets).
func (k Kind) Weighted() bool {
	return k == KindAsset || k == KindSpare
}

// Plural is used in routes and export filenames.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Categories returns a copy of the kind's categories in canonical order.
func Categories(k Kind) []Category {
	src := byKind[k]
	out := make([]Category, len(src))
	copy(out, src)
	return out
}

// Keys returns the canonical keys of a kind in order.
func Keys(k Kind) []string {
	src := byKind[k]
	out := make([]string, len(src))
	for i, c := range src {
		out[i] = c.Key
	}
	return out
}

// Contains reports whether key is an exact canonical key of k.
func Contains(k Kind, key string) bool {
	for _, c := range byKind[k] {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Label returns the display label of a key, or the key itself if unknown.
func Label(k Kind, key string) string {
	for _, c := range byKind[k] {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

// Normalize maps a key, its Arabic label, or a case variant to the canonical
// key. It is applied on write; aggregation only matches exact keys.
func Normalize(k Kind, raw string) (string, bool) {
	m, ok := aliases[k]
	if !ok {
		return "", false
	}
	key, ok := m[strings.ToLower(strings.TrimSpace(raw))]
	return key, ok
}
