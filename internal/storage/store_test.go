package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"rehabcenter/internal/core"
	"rehabcenter/internal/storage"
	"rehabcenter/internal/storage/memory"
)

func newSQLite(t *testing.T) storage.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "rehab.db")
	repo, err := storage.NewSQLRepository(context.Background(), storage.SQLite{}, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func stores(t *testing.T) map[string]storage.Store {
	return map[string]storage.Store{
		"memory": memory.NewStore(),
		"sqlite": newSQLite(t),
	}
}

func TestIssues(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.CreateIssue(ctx, core.IssuedItem{ItemName: "بطارية", Quantity: 2, IssueDate: core.NewDate(2024, 3, 10)})
			if err != nil {
				t.Fatal(err)
			}
			if first.ID == 0 {
				t.Fatal("id not assigned")
			}
			if _, err := s.CreateIssue(ctx, core.IssuedItem{ItemName: "موحد", Quantity: 1, Serial: "S1", IssueDate: core.NewDate(2024, 3, 1)}); err != nil {
				t.Fatal(err)
			}
			if _, err := s.CreateIssue(ctx, core.IssuedItem{ItemName: "محرك", Quantity: 1, IssueDate: core.NewDate(2024, 3, 10)}); err != nil {
				t.Fatal(err)
			}

			list, err := s.ListIssues(ctx)
			if err != nil {
				t.Fatal(err)
			}
			got := []string{list[0].ItemName, list[1].ItemName, list[2].ItemName}
			want := []string{"محرك", "بطارية", "موحد"}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("list order = %v, want %v", got, want)
				}
			}

			exp, err := s.IssuesForExport(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if exp[0].ItemName != "موحد" || exp[1].ItemName != "بطارية" || exp[2].ItemName != "محرك" {
				t.Fatalf("export order = %v", exp)
			}
			if exp[0].Serial != "S1" || exp[1].Serial != "" {
				t.Fatalf("optional text not preserved: %q %q", exp[0].Serial, exp[1].Serial)
			}
		})
	}
}

func TestCabinetLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c, err := s.CreateCabinet(ctx, core.CabinetRehab{CabinetType: "ATS", Code: "C-1", RehabDate: core.NewDate(2024, 3, 4)})
			if err != nil {
				t.Fatal(err)
			}

			found, err := s.FindCabinetByCode(ctx, "C-1")
			if err != nil || found.ID != c.ID {
				t.Fatalf("find = %+v, %v", found, err)
			}
			if _, err := s.FindCabinetByCode(ctx, "C-2"); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			c.Notes = "تم الفحص"
			c.IssueDate = core.NewDate(2024, 4, 1)
			if err := s.UpdateCabinet(ctx, c); err != nil {
				t.Fatal(err)
			}
			got, err := s.GetCabinet(ctx, c.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Notes != "تم الفحص" || !got.IssueDate.Equal(core.NewDate(2024, 4, 1).Time) {
				t.Fatalf("update not persisted: %+v", got)
			}

			if _, err := s.GetCabinet(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.UpdateCabinet(ctx, core.CabinetRehab{ID: 9999, CabinetType: "AMF", RehabDate: core.NewDate(2024, 1, 1)}); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if _, err := s.CreateCabinet(ctx, core.CabinetRehab{CabinetType: "AMF", RehabDate: core.NewDate(2024, 4, 2)}); err != nil {
				t.Fatal(err)
			}
			march, err := s.CabinetsInPeriod(ctx, core.Period{Year: 2024, Month: 3})
			if err != nil {
				t.Fatal(err)
			}
			if len(march) != 1 || march[0].Code != "C-1" {
				t.Fatalf("march = %+v", march)
			}
			all, err := s.ListCabinets(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 2 || all[0].CabinetType != "AMF" {
				t.Fatalf("list = %+v", all)
			}
		})
	}
}

func TestAssetsInPeriodDateField(t *testing.T) {
	ctx := context.Background()
	lifted := true
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			seed := []core.AssetRehab{
				{AssetType: "Batteries", Quantity: 4, RehabDate: core.NewDate(2024, 3, 2), SupplyDate: core.NewDate(2024, 2, 20), Lifted: &lifted},
				{AssetType: "Motors", Quantity: 1, SupplyDate: core.NewDate(2024, 3, 15)},
				{AssetType: "Rectifiers", Quantity: 2, RehabDate: core.NewDate(2024, 2, 1), SupplyDate: core.NewDate(2024, 3, 1)},
				{AssetType: "Other", Quantity: 1},
			}
			for _, a := range seed {
				if _, err := s.CreateAsset(ctx, a); err != nil {
					t.Fatal(err)
				}
			}

			p := core.Period{Year: 2024, Month: 3}
			primary, err := s.AssetsInPeriod(ctx, p, core.DateFieldPrimary)
			if err != nil {
				t.Fatal(err)
			}
			if len(primary) != 2 {
				t.Fatalf("primary matched %d, want 2", len(primary))
			}
			secondary, err := s.AssetsInPeriod(ctx, p, core.DateFieldSecondary)
			if err != nil {
				t.Fatal(err)
			}
			if len(secondary) != 2 {
				t.Fatalf("secondary matched %d, want 2", len(secondary))
			}
			for _, a := range secondary {
				if a.AssetType == "Batteries" {
					t.Fatal("secondary must not match on rehab_date")
				}
			}

			all, err := s.ListAssets(ctx)
			if err != nil {
				t.Fatal(err)
			}
			var batteries core.AssetRehab
			for _, a := range all {
				if a.AssetType == "Batteries" {
					batteries = a
				}
			}
			if batteries.Lifted == nil || !*batteries.Lifted || batteries.Tested != nil {
				t.Fatalf("bool columns not preserved: %+v", batteries)
			}
		})
	}
}

func TestSpares(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			a, err := s.CreateSpare(ctx, core.SparePartRehab{PartCategory: "Nozzles", Serial: "N1", Source: "Aden", Quantity: 3, RehabDate: core.NewDate(2024, 3, 5)})
			if err != nil {
				t.Fatal(err)
			}
			// serials may repeat
			if _, err := s.CreateSpare(ctx, core.SparePartRehab{PartCategory: "Nozzles", Serial: "N1", Quantity: 1, RehabDate: core.NewDate(2024, 5, 5)}); err != nil {
				t.Fatal(err)
			}
			found, err := s.FindSpareBySerial(ctx, "N1")
			if err != nil || found.ID != a.ID {
				t.Fatalf("find = %+v, %v", found, err)
			}
			march, err := s.SparesInPeriod(ctx, core.Period{Year: 2024, Month: 3})
			if err != nil {
				t.Fatal(err)
			}
			if len(march) != 1 || march[0].Quantity != 3 {
				t.Fatalf("march = %+v", march)
			}
			empty, err := s.SparesInPeriod(ctx, core.Period{Year: 2023, Month: 3})
			if err != nil {
				t.Fatal(err)
			}
			if empty == nil || len(empty) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", empty)
			}
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rehab.db")
	repo, err := storage.NewSQLRepository(ctx, storage.SQLite{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateCabinet(ctx, core.CabinetRehab{CabinetType: "ATS", Code: "X", RehabDate: core.NewDate(2024, 1, 1)}); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = storage.NewSQLRepository(ctx, storage.SQLite{}, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if _, err := repo.FindCabinetByCode(ctx, "X"); err != nil {
		t.Fatalf("data lost after reopen: %v", err)
	}
}
