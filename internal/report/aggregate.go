// Package report buckets rehabilitation records into the category taxonomy,
// composes the monthly and quarterly activity tables and detects duplicate
// identifying keys.
package report

import (
	"context"
	"fmt"
	"time"

	"rehabcenter/internal/core"
	"rehabcenter/internal/taxonomy"
)

// Source returns candidate records for a period. Implementations may narrow
// the result with a query; Aggregate re-checks every record regardless.
type Source interface {
	CabinetsInPeriod(ctx context.Context, p core.Period) ([]core.CabinetRehab, error)
	AssetsInPeriod(ctx context.Context, p core.Period, field core.DateField) ([]core.AssetRehab, error)
	SparesInPeriod(ctx context.Context, p core.Period) ([]core.SparePartRehab, error)
}

// Entry is the projection of a record that aggregation looks at.
type Entry struct {
	Category string
	Date     core.Date
	Quantity int
}

// Result is the outcome of one aggregation pass.
type Result struct {
	Kind   taxonomy.Kind  `json:"kind"`
	Period core.Period    `json:"-"`
	Counts map[string]int `json:"counts"`
	// Matched is the number of records added to a bucket.
	Matched int `json:"matched"`
	// UnknownCategory counts in-period records whose category is outside the
	// taxonomy. They are excluded from every bucket.
	UnknownCategory int `json:"unknown_category"`
	// MissingDate counts candidates without a usable date.
	MissingDate int `json:"missing_date"`
}

// Options tune a single aggregation.
type Options struct {
	// DateField applies to assets only.
	DateField core.DateField
}

// Tally buckets entries that fall in p. Every key starts at zero; entries with
// a category outside keys are ignored. Weighted tallies sum Quantity,
// unweighted ones count entries.
func Tally(keys []string, entries []Entry, p core.Period, weighted bool) map[string]int {
	return tally(keys, entries, p, weighted).Counts
}

func tally(keys []string, entries []Entry, p core.Period, weighted bool) Result {
	res := Result{Period: p, Counts: make(map[string]int, len(keys))}
	for _, k := range keys {
		res.Counts[k] = 0
	}
	for _, e := range entries {
		if e.Date.IsZero() {
			res.MissingDate++
			continue
		}
		if !core.Matches(e.Date, p) {
			continue
		}
		if _, ok := res.Counts[e.Category]; !ok {
			res.UnknownCategory++
			continue
		}
		w := 1
		if weighted {
			w = core.CoerceQuantity(e.Quantity)
		}
		res.Counts[e.Category] += w
		res.Matched++
	}
	return res
}

// CabinetEntries projects cabinets onto rehab_date.
func CabinetEntries(recs []core.CabinetRehab) []Entry {
	out := make([]Entry, len(recs))
	for i, r := range recs {
		out[i] = Entry{Category: r.CabinetType, Date: r.RehabDate, Quantity: 1}
	}
	return out
}

// AssetEntries projects assets onto their effective date.
func AssetEntries(recs []core.AssetRehab, field core.DateField) []Entry {
	out := make([]Entry, len(recs))
	for i, r := range recs {
		out[i] = Entry{Category: r.AssetType, Date: r.EffectiveDate(field), Quantity: r.Quantity}
	}
	return out
}

// SpareEntries projects spares onto rehab_date.
func SpareEntries(recs []core.SparePartRehab) []Entry {
	out := make([]Entry, len(recs))
	for i, r := range recs {
		out[i] = Entry{Category: r.PartCategory, Date: r.RehabDate, Quantity: r.Quantity}
	}
	return out
}

// Observer is told about every completed aggregation.
type Observer func(kind taxonomy.Kind, elapsed time.Duration, err error)

// Aggregator computes per-category totals against a Source.
type Aggregator struct {
	src      Source
	observer Observer
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithObserver installs an aggregation observer.
func WithObserver(o Observer) AggregatorOption {
	return func(a *Aggregator) { a.observer = o }
}

func NewAggregator(src Source, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{src: src}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate returns one value per taxonomy key of kind for period p.
func (a *Aggregator) Aggregate(ctx context.Context, kind taxonomy.Kind, p core.Period, opts Options) (res Result, err error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if a.observer != nil {
		start := time.Now()
		defer func() { a.observer(kind, time.Since(start), err) }()
	}

	var entries []Entry
	switch kind {
	case taxonomy.KindCabinet:
		recs, err := a.src.CabinetsInPeriod(ctx, p)
		if err != nil {
			return Result{}, fmt.Errorf("load cabinets for %s: %w", p, err)
		}
		entries = CabinetEntries(recs)
	case taxonomy.KindAsset:
		recs, err := a.src.AssetsInPeriod(ctx, p, opts.DateField)
		if err != nil {
			return Result{}, fmt.Errorf("load assets for %s: %w", p, err)
		}
		entries = AssetEntries(recs, opts.DateField)
	case taxonomy.KindSpare:
		recs, err := a.src.SparesInPeriod(ctx, p)
		if err != nil {
			return Result{}, fmt.Errorf("load spares for %s: %w", p, err)
		}
		entries = SpareEntries(recs)
	default:
		return Result{}, fmt.Errorf("aggregate: unsupported kind %q", kind)
	}

	res = tally(taxonomy.Keys(kind), entries, p, kind.Weighted())
	res.Kind = kind
	return res, nil
}
