package core

import (
	"fmt"
	"strings"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month int // 1-12
}

// DateField selects which asset date drives period bucketing.
type DateField int

const (
	// DateFieldPrimary uses rehab_date, falling back to supply_date.
	DateFieldPrimary DateField = iota
	// DateFieldSecondary uses supply_date only.
	DateFieldSecondary
)

const (
	minYear = 1900
	maxYear = 9999
)

// NewPeriod returns a validated period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d outside 1-12", ErrInvalidPeriod, p.Month)
	}
	if p.Year < minYear || p.Year > maxYear {
		return fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidPeriod, p.Year, minYear, maxYear)
	}
	return nil
}

// Next returns the following calendar month, rolling December into January.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Quarter returns three consecutive months starting at p. The window rolls
// forward from p and does not snap to calendar quarters.
func (p Period) Quarter() [3]Period {
	second := p.Next()
	return [3]Period{p, second, second.Next()}
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Matches reports whether d is present and falls inside p.
func Matches(d Date, p Period) bool {
	if d.IsZero() {
		return false
	}
	return d.Year() == p.Year && d.Month() == p.Month
}

// EffectiveDate resolves the single date used to bucket an asset record.
// The zero Date means the record has no usable date.
func (a AssetRehab) EffectiveDate(field DateField) Date {
	if field == DateFieldSecondary {
		return a.SupplyDate
	}
	if !a.RehabDate.IsZero() {
		return a.RehabDate
	}
	return a.SupplyDate
}

// ParseDateField accepts "primary"/"rehab_date" and "secondary"/"supply_date".
// An empty value selects the primary field.
func ParseDateField(s string) (DateField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "primary", "rehab_date":
		return DateFieldPrimary, nil
	case "secondary", "supply_date":
		return DateFieldSecondary, nil
	default:
		return DateFieldPrimary, fmt.Errorf("%w: unknown date field %q", ErrValidation, s)
	}
}

func (f DateField) String() string {
	if f == DateFieldSecondary {
		return "supply_date"
	}
	return "rehab_date"
}
