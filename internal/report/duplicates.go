package report

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"rehabcenter/internal/core"
)

// SparePolicy decides which (serial, source) pairs are collision candidates.
type SparePolicy int

const (
	// SparePolicyRequireBoth only counts pairs where serial and source are
	// both non-empty.
	SparePolicyRequireBoth SparePolicy = iota
	// SparePolicyExactTuple counts any identical tuple, including two fully
	// empty ones.
	SparePolicyExactTuple
)

// ParseSparePolicy accepts "require_both" and "exact_tuple".
func ParseSparePolicy(s string) (SparePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "require_both":
		return SparePolicyRequireBoth, nil
	case "exact_tuple":
		return SparePolicyExactTuple, nil
	default:
		return SparePolicyRequireBoth, fmt.Errorf("unknown spare duplicate policy %q", s)
	}
}

func (p SparePolicy) String() string {
	if p == SparePolicyExactTuple {
		return "exact_tuple"
	}
	return "require_both"
}

// Duplicates lists offending key values per check. Lists are never nil.
type Duplicates struct {
	CabinetCodes             []string `json:"cabinets_codes"`
	AssetSerials             []string `json:"assets_serials"`
	AssetSerialLocationPairs []string `json:"assets_serial_loc_pairs"`
	SpareSerialSourcePairs   []string `json:"spares_serial_src_pairs"`
}

// Empty reports whether no check found a collision.
func (d Duplicates) Empty() bool {
	return len(d.CabinetCodes) == 0 && len(d.AssetSerials) == 0 &&
		len(d.AssetSerialLocationPairs) == 0 && len(d.SpareSerialSourcePairs) == 0
}

// counter tracks occurrence counts while remembering first-seen order.
type counter struct {
	order []string
	n     map[string]int
}

func newCounter() *counter {
	return &counter{n: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.n[key]; !seen {
		c.order = append(c.order, key)
	}
	c.n[key]++
}

func (c *counter) repeated() []string {
	out := []string{}
	for _, k := range c.order {
		if c.n[k] > 1 {
			out = append(out, k)
		}
	}
	return out
}

func pair(a, b string) string {
	return a + "@" + b
}

// FindDuplicates scans full record sets for repeated identifying keys. Dates
// play no part.
func FindDuplicates(cabs []core.CabinetRehab, assets []core.AssetRehab, spares []core.SparePartRehab, policy SparePolicy) Duplicates {
	codes := newCounter()
	for _, r := range cabs {
		if r.Code != "" {
			codes.add(r.Code)
		}
	}

	serials := newCounter()
	serialLoc := newCounter()
	for _, r := range assets {
		if r.SerialOrCode == "" {
			continue
		}
		serials.add(r.SerialOrCode)
		serialLoc.add(pair(r.SerialOrCode, r.CurrentLocation))
	}

	serialSrc := newCounter()
	for _, r := range spares {
		if policy == SparePolicyRequireBoth && (r.Serial == "" || r.Source == "") {
			continue
		}
		serialSrc.add(pair(r.Serial, r.Source))
	}

	return Duplicates{
		CabinetCodes:             codes.repeated(),
		AssetSerials:             serials.repeated(),
		AssetSerialLocationPairs: serialLoc.repeated(),
		SpareSerialSourcePairs:   serialSrc.repeated(),
	}
}

// Snapshot returns every record of each scanned kind.
type Snapshot interface {
	ListCabinets(ctx context.Context) ([]core.CabinetRehab, error)
	ListAssets(ctx context.Context) ([]core.AssetRehab, error)
	ListSpares(ctx context.Context) ([]core.SparePartRehab, error)
}

// Detector runs FindDuplicates against a Snapshot.
type Detector struct {
	src    Snapshot
	policy SparePolicy
}

func NewDetector(src Snapshot, policy SparePolicy) *Detector {
	return &Detector{src: src, policy: policy}
}

// Policy returns the configured spare policy.
func (d *Detector) Policy() SparePolicy {
	return d.policy
}

// Find loads the three collections and reports collisions. Either the full
// report or an error is returned.
func (d *Detector) Find(ctx context.Context) (Duplicates, error) {
	var (
		cabs   []core.CabinetRehab
		assets []core.AssetRehab
		spares []core.SparePartRehab
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cabs, err = d.src.ListCabinets(gctx)
		if err != nil {
			return fmt.Errorf("list cabinets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assets, err = d.src.ListAssets(gctx)
		if err != nil {
			return fmt.Errorf("list assets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		spares, err = d.src.ListSpares(gctx)
		if err != nil {
			return fmt.Errorf("list spares: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Duplicates{}, err
	}
	return FindDuplicates(cabs, assets, spares, d.policy), nil
}
