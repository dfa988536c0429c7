package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage and wire format of calendar dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without timezone semantics. The zero value means
	// the date is absent.
	Date struct {
		time.Time
	}

	IssuedItem struct {
		ID          int64  `json:"id"`
		ItemName    string `json:"item_name" validate:"required,max=200"`
		Model       string `json:"model,omitempty" validate:"max=200"`
		Serial      string `json:"serial,omitempty" validate:"max=200"`
		Status      string `json:"status,omitempty" validate:"max=100"`
		Quantity    int    `json:"quantity"`
		Location    string `json:"location,omitempty" validate:"max=200"`
		Requester   string `json:"requester,omitempty" validate:"max=200"`
		IssueDate   Date   `json:"issue_date" validate:"required"`
		QualifiedBy string `json:"qualified_by,omitempty" validate:"max=200"`
		Receiver    string `json:"receiver,omitempty" validate:"max=200"`
	}

	CabinetRehab struct {
		ID          int64  `json:"id"`
		CabinetType string `json:"cabinet_type" validate:"required"`
		Code        string `json:"code,omitempty" validate:"max=100"`
		RehabDate   Date   `json:"rehab_date" validate:"required"`
		QualifiedBy string `json:"qualified_by,omitempty" validate:"max=200"`
		Location    string `json:"location,omitempty" validate:"max=200"`
		Receiver    string `json:"receiver,omitempty" validate:"max=200"`
		IssueDate   Date   `json:"issue_date"`
		Notes       string `json:"notes,omitempty" validate:"max=1000"`
	}

	AssetRehab struct {
		ID              int64  `json:"id"`
		AssetType       string `json:"asset_type" validate:"required"`
		Model           string `json:"model,omitempty" validate:"max=200"`
		SerialOrCode    string `json:"serial_or_code,omitempty" validate:"max=100"`
		Quantity        int    `json:"quantity"`
		PrevLocation    string `json:"prev_location,omitempty" validate:"max=200"`
		RehabDate       Date   `json:"rehab_date"`
		SupplyDate      Date   `json:"supply_date"`
		QualifiedBy     string `json:"qualified_by,omitempty" validate:"max=200"`
		Lifted          *bool  `json:"lifted,omitempty"`
		Inspector       string `json:"inspector,omitempty" validate:"max=200"`
		Tested          *bool  `json:"tested,omitempty"`
		IssueDate       Date   `json:"issue_date"`
		CurrentLocation string `json:"current_location,omitempty" validate:"max=200"`
		Requester       string `json:"requester,omitempty" validate:"max=200"`
		Receiver        string `json:"receiver,omitempty" validate:"max=200"`
		Notes           string `json:"notes,omitempty" validate:"max=1000"`
	}

	SparePartRehab struct {
		ID           int64  `json:"id"`
		PartCategory string `json:"part_category" validate:"required"`
		PartName     string `json:"part_name,omitempty" validate:"max=200"`
		PartModel    string `json:"part_model,omitempty" validate:"max=200"`
		Quantity     int    `json:"quantity"`
		Serial       string `json:"serial,omitempty" validate:"max=100"`
		Source       string `json:"source,omitempty" validate:"max=200"`
		QualifiedBy  string `json:"qualified_by,omitempty" validate:"max=200"`
		RehabDate    Date   `json:"rehab_date" validate:"required"`
		Tested       *bool  `json:"tested,omitempty"`
		Notes        string `json:"notes,omitempty" validate:"max=1000"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if len(s) > len(DateLayout) {
		// tolerate timestamps such as 2024-03-10T00:00:00Z
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. Drivers hand dates back as text (sqlite) or
// time.Time (pgx, mysql with parseTime).
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDate, src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// CoerceQuantity maps absent or non-positive quantities to 1.
func CoerceQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}

// Normalize trims free-text fields and coerces the quantity.
func (it *IssuedItem) Normalize() {
	it.ItemName = strings.TrimSpace(it.ItemName)
	it.Serial = strings.TrimSpace(it.Serial)
	it.Quantity = CoerceQuantity(it.Quantity)
}

func (c *CabinetRehab) Normalize() {
	c.CabinetType = strings.TrimSpace(c.CabinetType)
	c.Code = strings.TrimSpace(c.Code)
}

func (a *AssetRehab) Normalize() {
	a.AssetType = strings.TrimSpace(a.AssetType)
	a.SerialOrCode = strings.TrimSpace(a.SerialOrCode)
	a.CurrentLocation = strings.TrimSpace(a.CurrentLocation)
	a.Quantity = CoerceQuantity(a.Quantity)
}

func (s *SparePartRehab) Normalize() {
	s.PartCategory = strings.TrimSpace(s.PartCategory)
	s.Serial = strings.TrimSpace(s.Serial)
	s.Source = strings.TrimSpace(s.Source)
	s.Quantity = CoerceQuantity(s.Quantity)
}
