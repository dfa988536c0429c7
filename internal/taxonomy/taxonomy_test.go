package taxonomy

import "testing"

func TestKeysOrderAndSize(t *testing.T) {
	cases := []struct {
		kind  Kind
		first string
		n     int
	}{
		{KindCabinet, "ATS", 5},
		{KindAsset, "Batteries", 6},
		{KindSpare, "DieselPumps", 9},
	}
	for _, tc := range cases {
		keys := Keys(tc.kind)
		if len(keys) != tc.n {
			t.Fatalf("%s: %d keys, want %d", tc.kind, len(keys), tc.n)
		}
		if keys[0] != tc.first {
			t.Fatalf("%s: first key %q, want %q", tc.kind, keys[0], tc.first)
		}
	}
}

func TestKeysReturnsCopy(t *testing.T) {
	keys := Keys(KindCabinet)
	keys[0] = "mutated"
	if Keys(KindCabinet)[0] != "ATS" {
		t.Fatal("Keys must not expose internal state")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		kind Kind
		in   string
		want string
		ok   bool
	}{
		{KindCabinet, "ATS", "ATS", true},
		{KindCabinet, "hybrid", "HYBRID", true},
		{KindCabinet, "ظفيرة تحكم", "ControlHarness", true},
		{KindAsset, " بطاريات ", "Batteries", true},
		{KindSpare, "دينمو شحن", "ChargingDynamo", true},
		{KindSpare, "modules", "Modules", true},
		{KindSpare, "Batteries", "", false},
		{Kind("issue"), "ATS", "", false},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.kind, tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Normalize(%s, %q) = %q, %v; want %q, %v", tc.kind, tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestContainsIsExact(t *testing.T) {
	if !Contains(KindAsset, "ACUnits") {
		t.Fatal("expected ACUnits")
	}
	if Contains(KindAsset, "acunits") {
		t.Fatal("Contains must not fold case")
	}
	if Contains(KindAsset, "مكيفات") {
		t.Fatal("Contains must not accept labels")
	}
}

func TestParseKindAndWeighting(t *testing.T) {
	for in, want := range map[string]Kind{"cabinets": KindCabinet, "Asset": KindAsset, "spa": KindSpare} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("issue"); err == nil {
		t.Fatal("expected error")
	}
	if KindCabinet.Weighted() || !KindAsset.Weighted() || !KindSpare.Weighted() {
		t.Fatal("unexpected weighting")
	}
	if Label(KindSpare, "Grounding") != "تسييخ" {
		t.Fatal("unexpected label")
	}
}
