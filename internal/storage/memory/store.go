// Package memory provides an in-process record store for development and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"rehabcenter/internal/core"
	"rehabcenter/internal/storage"
)

// Store keeps every record in memory. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	issues   []core.IssuedItem
	cabinets []core.CabinetRehab
	assets   []core.AssetRehab
	spares   []core.SparePartRehab
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// newestFirst orders by date descending, then id descending.
func newestFirst(da, db core.Date, ia, ib int64) int {
	if c := db.Compare(da.Time); c != 0 {
		return c
	}
	return cmp.Compare(ib, ia)
}

func oldestFirst(da, db core.Date, ia, ib int64) int {
	return -newestFirst(da, db, ia, ib)
}

func (s *Store) CreateIssue(_ context.Context, it core.IssuedItem) (core.IssuedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.id()
	s.issues = append(s.issues, it)
	return it, nil
}

func (s *Store) ListIssues(context.Context) ([]core.IssuedItem, error) {
	s.mu.RLock()
	out := slices.Clone(s.issues)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.IssuedItem) int { return newestFirst(a.IssueDate, b.IssueDate, a.ID, b.ID) })
	return nonNil(out), nil
}

func (s *Store) IssuesForExport(context.Context) ([]core.IssuedItem, error) {
	s.mu.RLock()
	out := slices.Clone(s.issues)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.IssuedItem) int { return oldestFirst(a.IssueDate, b.IssueDate, a.ID, b.ID) })
	return nonNil(out), nil
}

func (s *Store) CreateCabinet(_ context.Context, c core.CabinetRehab) (core.CabinetRehab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.cabinets = append(s.cabinets, c)
	return c, nil
}

func (s *Store) GetCabinet(_ context.Context, id int64) (core.CabinetRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.cabinets, func(c core.CabinetRehab) bool { return c.ID == id })
	if i < 0 {
		return core.CabinetRehab{}, fmt.Errorf("get cabinet %d: %w", id, core.ErrNotFound)
	}
	return s.cabinets[i], nil
}

func (s *Store) FindCabinetByCode(_ context.Context, code string) (core.CabinetRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.cabinets, func(c core.CabinetRehab) bool { return c.Code == code })
	if i < 0 {
		return core.CabinetRehab{}, fmt.Errorf("find cabinet by code: %w", core.ErrNotFound)
	}
	return s.cabinets[i], nil
}

func (s *Store) UpdateCabinet(_ context.Context, c core.CabinetRehab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.cabinets, func(x core.CabinetRehab) bool { return x.ID == c.ID })
	if i < 0 {
		return fmt.Errorf("update cabinet %d: %w", c.ID, core.ErrNotFound)
	}
	s.cabinets[i] = c
	return nil
}

func (s *Store) ListCabinets(context.Context) ([]core.CabinetRehab, error) {
	s.mu.RLock()
	out := slices.Clone(s.cabinets)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.CabinetRehab) int { return newestFirst(a.RehabDate, b.RehabDate, a.ID, b.ID) })
	return nonNil(out), nil
}

func (s *Store) CabinetsInPeriod(_ context.Context, p core.Period) ([]core.CabinetRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.CabinetRehab{}
	for _, c := range s.cabinets {
		if core.Matches(c.RehabDate, p) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateAsset(_ context.Context, a core.AssetRehab) (core.AssetRehab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.assets = append(s.assets, a)
	return a, nil
}

func (s *Store) GetAsset(_ context.Context, id int64) (core.AssetRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.assets, func(a core.AssetRehab) bool { return a.ID == id })
	if i < 0 {
		return core.AssetRehab{}, fmt.Errorf("get asset %d: %w", id, core.ErrNotFound)
	}
	return s.assets[i], nil
}

func (s *Store) FindAssetBySerial(_ context.Context, serial string) (core.AssetRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.assets, func(a core.AssetRehab) bool { return a.SerialOrCode == serial })
	if i < 0 {
		return core.AssetRehab{}, fmt.Errorf("find asset by serial: %w", core.ErrNotFound)
	}
	return s.assets[i], nil
}

func (s *Store) UpdateAsset(_ context.Context, a core.AssetRehab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.assets, func(x core.AssetRehab) bool { return x.ID == a.ID })
	if i < 0 {
		return fmt.Errorf("update asset %d: %w", a.ID, core.ErrNotFound)
	}
	s.assets[i] = a
	return nil
}

func (s *Store) ListAssets(context.Context) ([]core.AssetRehab, error) {
	s.mu.RLock()
	out := slices.Clone(s.assets)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.AssetRehab) int {
		return newestFirst(a.EffectiveDate(core.DateFieldPrimary), b.EffectiveDate(core.DateFieldPrimary), a.ID, b.ID)
	})
	return nonNil(out), nil
}

func (s *Store) AssetsInPeriod(_ context.Context, p core.Period, field core.DateField) ([]core.AssetRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.AssetRehab{}
	for _, a := range s.assets {
		if core.Matches(a.EffectiveDate(field), p) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CreateSpare(_ context.Context, sp core.SparePartRehab) (core.SparePartRehab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp.ID = s.id()
	s.spares = append(s.spares, sp)
	return sp, nil
}

func (s *Store) GetSpare(_ context.Context, id int64) (core.SparePartRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.spares, func(sp core.SparePartRehab) bool { return sp.ID == id })
	if i < 0 {
		return core.SparePartRehab{}, fmt.Errorf("get spare %d: %w", id, core.ErrNotFound)
	}
	return s.spares[i], nil
}

func (s *Store) FindSpareBySerial(_ context.Context, serial string) (core.SparePartRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.spares, func(sp core.SparePartRehab) bool { return sp.Serial == serial })
	if i < 0 {
		return core.SparePartRehab{}, fmt.Errorf("find spare by serial: %w", core.ErrNotFound)
	}
	return s.spares[i], nil
}

func (s *Store) UpdateSpare(_ context.Context, sp core.SparePartRehab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.spares, func(x core.SparePartRehab) bool { return x.ID == sp.ID })
	if i < 0 {
		return fmt.Errorf("update spare %d: %w", sp.ID, core.ErrNotFound)
	}
	s.spares[i] = sp
	return nil
}

func (s *Store) ListSpares(context.Context) ([]core.SparePartRehab, error) {
	s.mu.RLock()
	out := slices.Clone(s.spares)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.SparePartRehab) int { return newestFirst(a.RehabDate, b.RehabDate, a.ID, b.ID) })
	return nonNil(out), nil
}

func (s *Store) SparesInPeriod(_ context.Context, p core.Period) ([]core.SparePartRehab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.SparePartRehab{}
	for _, sp := range s.spares {
		if core.Matches(sp.RehabDate, p) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ storage.Store = (*Store)(nil)
