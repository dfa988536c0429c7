package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"rehabcenter/internal/core"
	"rehabcenter/internal/taxonomy"
)

// ActivityRow binds a summary label to one taxonomy bucket.
type ActivityRow struct {
	Label string
	Kind  taxonomy.Kind
	Key   string
}

// activityRows is the institutional row order of the activity summary. It is
// shared by monthly and quarterly composition and never mutated.
var activityRows = []ActivityRow{
	{"تجميع كبائن تحكم ATS", taxonomy.KindCabinet, "ATS"},
	{"تجميع كبائن تحكم ATS HYBRID", taxonomy.KindCabinet, "HYBRID"},
	{"تجميع كبائن تحكم AMF", taxonomy.KindCabinet, "AMF"},
	{"تجميع ظفائر مولدات", taxonomy.KindCabinet, "ControlHarness"},
	{"تأهيل موحدات", taxonomy.KindAsset, "Rectifiers"},
	{"تأهيل بطاريات", taxonomy.KindAsset, "Batteries"},
	{"تأهيل محركات", taxonomy.KindAsset, "Motors"},
	{"تأهيل مولدات", taxonomy.KindAsset, "Generators"},
	{"تأهيل مكيفات", taxonomy.KindAsset, "ACUnits"},
	{"تأهيل أصول أخرى", taxonomy.KindAsset, "OtherAssets"},
	{"إصلاح موديولات", taxonomy.KindSpare, "Modules"},
	{"إصلاح دينامو شحن", taxonomy.KindSpare, "ChargingDynamo"},
	{"إصلاح سلف مولد", taxonomy.KindSpare, "Starters"},
	{"إصلاح منظمات شمسية وإنفرترات", taxonomy.KindSpare, "RegulatorsAndInverters"},
	{"إصلاح كروت وشواحن", taxonomy.KindSpare, "CardsAndChargers"},
	{"إصلاح قطع غيار أخرى", taxonomy.KindSpare, "Other"},
}

// ActivityRows returns a copy of the summary rows.
func ActivityRows() []ActivityRow {
	out := make([]ActivityRow, len(activityRows))
	copy(out, activityRows)
	return out
}

// TableKind distinguishes summary layouts.
type TableKind string

const (
	Monthly   TableKind = "monthly"
	Quarterly TableKind = "quarterly"
)

// QuarterColumn names the row-sum column of a quarterly table.
const QuarterColumn = "quarter"

// Row is one activity line. Values align with Table.Columns.
type Row struct {
	Index  int           `json:"index"`
	Label  string        `json:"label"`
	Kind   taxonomy.Kind `json:"kind"`
	Key    string        `json:"key"`
	Values []int         `json:"values"`
}

// Table is a composed summary independent of any output format.
type Table struct {
	Kind    TableKind     `json:"kind"`
	Periods []core.Period `json:"-"`
	// Columns names the value columns: one per period, plus QuarterColumn for
	// quarterly tables.
	Columns    []string `json:"columns"`
	Rows       []Row    `json:"rows"`
	Totals     []int    `json:"totals"`
	GrandTotal int      `json:"grand_total"`
}

// Counts holds one aggregation mapping per kind for a single month.
type Counts map[taxonomy.Kind]map[string]int

func (c Counts) value(r ActivityRow) int {
	return c[r.Kind][r.Key]
}

// BuildMonthly lays out one month of counts as the activity table.
func BuildMonthly(p core.Period, counts Counts) Table {
	t := Table{
		Kind:    Monthly,
		Periods: []core.Period{p},
		Columns: []string{p.String()},
		Rows:    make([]Row, 0, len(activityRows)),
	}
	total := 0
	for i, r := range activityRows {
		v := counts.value(r)
		total += v
		t.Rows = append(t.Rows, Row{Index: i + 1, Label: r.Label, Kind: r.Kind, Key: r.Key, Values: []int{v}})
	}
	t.Totals = []int{total}
	t.GrandTotal = total
	return t
}

// BuildQuarterly lays out three months of counts with a row-sum column,
// per-month column totals and a grand total.
func BuildQuarterly(periods [3]core.Period, counts [3]Counts) Table {
	t := Table{
		Kind:    Quarterly,
		Periods: periods[:],
		Rows:    make([]Row, 0, len(activityRows)),
	}
	for _, p := range periods {
		t.Columns = append(t.Columns, p.String())
	}
	t.Columns = append(t.Columns, QuarterColumn)

	monthTotals := make([]int, len(periods))
	grand := 0
	for i, r := range activityRows {
		values := make([]int, 0, len(periods)+1)
		rowSum := 0
		for mi := range periods {
			v := counts[mi].value(r)
			values = append(values, v)
			rowSum += v
			monthTotals[mi] += v
		}
		values = append(values, rowSum)
		grand += rowSum
		t.Rows = append(t.Rows, Row{Index: i + 1, Label: r.Label, Kind: r.Kind, Key: r.Key, Values: values})
	}
	t.Totals = append(monthTotals, grand)
	t.GrandTotal = grand
	return t
}

// Composer builds summary tables from live aggregations.
type Composer struct {
	agg *Aggregator
}

func NewComposer(agg *Aggregator) *Composer {
	return &Composer{agg: agg}
}

// ComposeMonthly aggregates all three kinds for p and builds the table.
func (c *Composer) ComposeMonthly(ctx context.Context, p core.Period) (Table, error) {
	if err := p.Validate(); err != nil {
		return Table{}, err
	}
	counts, err := c.monthCounts(ctx, p)
	if err != nil {
		return Table{}, err
	}
	return BuildMonthly(p, counts), nil
}

// ComposeQuarterly aggregates the three months starting at start.
func (c *Composer) ComposeQuarterly(ctx context.Context, start core.Period) (Table, error) {
	if err := start.Validate(); err != nil {
		return Table{}, err
	}
	periods := start.Quarter()
	var counts [3]Counts
	for i, p := range periods {
		mc, err := c.monthCounts(ctx, p)
		if err != nil {
			return Table{}, err
		}
		counts[i] = mc
	}
	return BuildQuarterly(periods, counts), nil
}

func (c *Composer) monthCounts(ctx context.Context, p core.Period) (Counts, error) {
	kinds := taxonomy.Kinds()
	results := make([]map[string]int, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			res, err := c.agg.Aggregate(gctx, kind, p, Options{DateField: core.DateFieldPrimary})
			if err != nil {
				return fmt.Errorf("aggregate %s: %w", kind, err)
			}
			results[i] = res.Counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(Counts, len(kinds))
	for i, kind := range kinds {
		counts[kind] = results[i]
	}
	return counts, nil
}
