package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-03-10", NewDate(2024, 3, 10), true},
		{"2024-03-10T00:00:00Z", NewDate(2024, 3, 10), true},
		{"", Date{}, true},
		{"10/03/2024", Date{}, false},
		{"2024-13-01", Date{}, false},
	}
	for i, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("case %d expected ErrInvalidDate, got %v", i, err)
			}
			continue
		}
		if !got.Equal(tc.want.Time) {
			t.Fatalf("case %d got %v want %v", i, got, tc.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		D Date `json:"d"`
	}
	b, err := json.Marshal(payload{D: NewDate(2024, 1, 5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"d":"2024-01-05"}` {
		t.Fatalf("unexpected json %s", b)
	}
	b, _ = json.Marshal(payload{})
	if string(b) != `{"d":null}` {
		t.Fatalf("zero date should encode as null, got %s", b)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"d":"2023-12-31"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.D.Year() != 2023 || p.D.Month() != 12 || p.D.Day() != 31 {
		t.Fatalf("unexpected date %v", p.D)
	}
	if err := json.Unmarshal([]byte(`{"d":12}`), &p); err == nil {
		t.Fatalf("expected error for numeric date")
	}
}

func TestDateScanValue(t *testing.T) {
	var d Date
	for _, src := range []any{"2024-02-29", []byte("2024-02-29"), time.Date(2024, 2, 29, 15, 0, 0, 0, time.FixedZone("x", 3600))} {
		if err := d.Scan(src); err != nil {
			t.Fatalf("scan %T: %v", src, err)
		}
		if d.String() != "2024-02-29" {
			t.Fatalf("scan %T gave %s", src, d)
		}
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("scan nil should reset, got %v %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}

	v, err := NewDate(2024, 7, 1).Value()
	if err != nil || v != "2024-07-01" {
		t.Fatalf("value = %v, %v", v, err)
	}
	v, _ = Date{}.Value()
	if v != nil {
		t.Fatalf("zero date value should be nil, got %v", v)
	}
}

func TestCoerceQuantity(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 7: 7}
	for in, want := range cases {
		if got := CoerceQuantity(in); got != want {
			t.Errorf("CoerceQuantity(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestValidateRecords(t *testing.T) {
	good := CabinetRehab{CabinetType: "ATS", RehabDate: NewDate(2024, 3, 1)}
	if err := Validate(good); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []any{
		CabinetRehab{CabinetType: "ATS"},
		CabinetRehab{RehabDate: NewDate(2024, 3, 1)},
		IssuedItem{IssueDate: NewDate(2024, 3, 1)},
		SparePartRehab{PartCategory: "Other"},
		AssetRehab{},
	}
	for i, b := range bads {
		err := Validate(b)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected ErrValidation, got %v", i, err)
		}
	}
}

func TestValidateMessageUsesJSONNames(t *testing.T) {
	err := Validate(SparePartRehab{PartCategory: "Other"})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "rehab_date is required"; !contains(err.Error(), want) {
		t.Fatalf("error %q should mention %q", err, want)
	}
}

func TestUpdateApply(t *testing.T) {
	a := AssetRehab{AssetType: "Batteries", SerialOrCode: "S1", Quantity: 4}
	serial := "  S2 "
	zero := 0
	tested := true
	AssetUpdate{SerialOrCode: &serial, Quantity: &zero, Tested: &tested}.Apply(&a)

	if a.SerialOrCode != "S2" {
		t.Fatalf("serial = %q", a.SerialOrCode)
	}
	if a.Quantity != 1 {
		t.Fatalf("quantity should be coerced to 1, got %d", a.Quantity)
	}
	if a.Tested == nil || !*a.Tested {
		t.Fatalf("tested not applied")
	}
	if a.AssetType != "Batteries" {
		t.Fatalf("untouched field changed: %q", a.AssetType)
	}

	c := CabinetRehab{CabinetType: "ATS", Code: "C1", RehabDate: NewDate(2024, 1, 1)}
	d := NewDate(2024, 2, 2)
	CabinetUpdate{RehabDate: &d}.Apply(&c)
	if c.RehabDate.String() != "2024-02-02" || c.Code != "C1" {
		t.Fatalf("unexpected cabinet %+v", c)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
