package storage

import (
	"context"
	"fmt"
	"log/slog"

	"rehabcenter/internal/core"
)

// Issues

const issueColumns = "id, item_name, model, serial, status, quantity, location, requester, issue_date, qualified_by, receiver"

func scanIssue(s rowScanner) (core.IssuedItem, error) {
	var it core.IssuedItem
	err := s.Scan(&it.ID, textCol{&it.ItemName}, textCol{&it.Model}, textCol{&it.Serial}, textCol{&it.Status},
		&it.Quantity, textCol{&it.Location}, textCol{&it.Requester}, &it.IssueDate, textCol{&it.QualifiedBy}, textCol{&it.Receiver})
	return it, err
}

func (r *SQLRepository) CreateIssue(ctx context.Context, it core.IssuedItem) (core.IssuedItem, error) {
	id, err := r.insert(ctx,
		`INSERT INTO issues (item_name, model, serial, status, quantity, location, requester, issue_date, qualified_by, receiver)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ItemName, optText(it.Model), optText(it.Serial), optText(it.Status), it.Quantity,
		optText(it.Location), optText(it.Requester), it.IssueDate, optText(it.QualifiedBy), optText(it.Receiver))
	if err != nil {
		return core.IssuedItem{}, fmt.Errorf("create issue: %w", err)
	}
	it.ID = id
	slog.DebugContext(ctx, "Issue saved", "id", id, "item_name", it.ItemName, "backend", r.dialect.Name())
	return it, nil
}

func (r *SQLRepository) ListIssues(ctx context.Context) ([]core.IssuedItem, error) {
	items, err := queryAll(ctx, r, scanIssue, "SELECT "+issueColumns+" FROM issues ORDER BY issue_date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return items, nil
}

func (r *SQLRepository) IssuesForExport(ctx context.Context) ([]core.IssuedItem, error) {
	items, err := queryAll(ctx, r, scanIssue, "SELECT "+issueColumns+" FROM issues ORDER BY issue_date ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list issues for export: %w", err)
	}
	return items, nil
}

// Cabinets

const cabinetColumns = "id, cabinet_type, code, rehab_date, qualified_by, location, receiver, issue_date, notes"

func scanCabinet(s rowScanner) (core.CabinetRehab, error) {
	var c core.CabinetRehab
	err := s.Scan(&c.ID, textCol{&c.CabinetType}, textCol{&c.Code}, &c.RehabDate, textCol{&c.QualifiedBy},
		textCol{&c.Location}, textCol{&c.Receiver}, &c.IssueDate, textCol{&c.Notes})
	return c, err
}

func cabinetArgs(c core.CabinetRehab) []any {
	return []any{c.CabinetType, optText(c.Code), c.RehabDate, optText(c.QualifiedBy),
		optText(c.Location), optText(c.Receiver), c.IssueDate, optText(c.Notes)}
}

func (r *SQLRepository) CreateCabinet(ctx context.Context, c core.CabinetRehab) (core.CabinetRehab, error) {
	id, err := r.insert(ctx,
		`INSERT INTO cabinet_rehabs (cabinet_type, code, rehab_date, qualified_by, location, receiver, issue_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, cabinetArgs(c)...)
	if err != nil {
		return core.CabinetRehab{}, fmt.Errorf("create cabinet: %w", err)
	}
	c.ID = id
	slog.DebugContext(ctx, "Cabinet rehab saved", "id", id, "code", c.Code, "backend", r.dialect.Name())
	return c, nil
}

func (r *SQLRepository) GetCabinet(ctx context.Context, id int64) (core.CabinetRehab, error) {
	c, err := queryOne(ctx, r, scanCabinet, "SELECT "+cabinetColumns+" FROM cabinet_rehabs WHERE id = ?", id)
	if err != nil {
		return core.CabinetRehab{}, fmt.Errorf("get cabinet %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLRepository) FindCabinetByCode(ctx context.Context, code string) (core.CabinetRehab, error) {
	c, err := queryOne(ctx, r, scanCabinet,
		"SELECT "+cabinetColumns+" FROM cabinet_rehabs WHERE code = ? ORDER BY id LIMIT 1", code)
	if err != nil {
		return core.CabinetRehab{}, fmt.Errorf("find cabinet by code: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) UpdateCabinet(ctx context.Context, c core.CabinetRehab) error {
	args := append(cabinetArgs(c), c.ID)
	err := r.update(ctx,
		`UPDATE cabinet_rehabs SET cabinet_type = ?, code = ?, rehab_date = ?, qualified_by = ?,
		 location = ?, receiver = ?, issue_date = ?, notes = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update cabinet %d: %w", c.ID, err)
	}
	return nil
}

func (r *SQLRepository) ListCabinets(ctx context.Context) ([]core.CabinetRehab, error) {
	recs, err := queryAll(ctx, r, scanCabinet, "SELECT "+cabinetColumns+" FROM cabinet_rehabs ORDER BY rehab_date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list cabinets: %w", err)
	}
	return recs, nil
}

func (r *SQLRepository) CabinetsInPeriod(ctx context.Context, p core.Period) ([]core.CabinetRehab, error) {
	clause, args := r.dialect.PeriodClause("rehab_date", p)
	recs, err := queryAll(ctx, r, scanCabinet,
		"SELECT "+cabinetColumns+" FROM cabinet_rehabs WHERE "+clause+" ORDER BY rehab_date, id", args...)
	if err != nil {
		return nil, fmt.Errorf("cabinets in %s: %w", p, err)
	}
	return recs, nil
}

// Assets

const assetColumns = "id, asset_type, model, serial_or_code, quantity, prev_location, rehab_date, supply_date, " +
	"qualified_by, lifted, inspector, tested, issue_date, current_location, requester, receiver, notes"

func scanAsset(s rowScanner) (core.AssetRehab, error) {
	var a core.AssetRehab
	err := s.Scan(&a.ID, textCol{&a.AssetType}, textCol{&a.Model}, textCol{&a.SerialOrCode}, &a.Quantity,
		textCol{&a.PrevLocation}, &a.RehabDate, &a.SupplyDate, textCol{&a.QualifiedBy}, boolCol{&a.Lifted},
		textCol{&a.Inspector}, boolCol{&a.Tested}, &a.IssueDate, textCol{&a.CurrentLocation},
		textCol{&a.Requester}, textCol{&a.Receiver}, textCol{&a.Notes})
	return a, err
}

func assetArgs(a core.AssetRehab) []any {
	return []any{a.AssetType, optText(a.Model), optText(a.SerialOrCode), a.Quantity, optText(a.PrevLocation),
		a.RehabDate, a.SupplyDate, optText(a.QualifiedBy), optBool(a.Lifted), optText(a.Inspector), optBool(a.Tested),
		a.IssueDate, optText(a.CurrentLocation), optText(a.Requester), optText(a.Receiver), optText(a.Notes)}
}

func (r *SQLRepository) CreateAsset(ctx context.Context, a core.AssetRehab) (core.AssetRehab, error) {
	id, err := r.insert(ctx,
		`INSERT INTO asset_rehabs (asset_type, model, serial_or_code, quantity, prev_location, rehab_date, supply_date,
		 qualified_by, lifted, inspector, tested, issue_date, current_location, requester, receiver, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, assetArgs(a)...)
	if err != nil {
		return core.AssetRehab{}, fmt.Errorf("create asset: %w", err)
	}
	a.ID = id
	slog.DebugContext(ctx, "Asset rehab saved", "id", id, "serial_or_code", a.SerialOrCode, "backend", r.dialect.Name())
	return a, nil
}

func (r *SQLRepository) GetAsset(ctx context.Context, id int64) (core.AssetRehab, error) {
	a, err := queryOne(ctx, r, scanAsset, "SELECT "+assetColumns+" FROM asset_rehabs WHERE id = ?", id)
	if err != nil {
		return core.AssetRehab{}, fmt.Errorf("get asset %d: %w", id, err)
	}
	return a, nil
}

func (r *SQLRepository) FindAssetBySerial(ctx context.Context, serial string) (core.AssetRehab, error) {
	a, err := queryOne(ctx, r, scanAsset,
		"SELECT "+assetColumns+" FROM asset_rehabs WHERE serial_or_code = ? ORDER BY id LIMIT 1", serial)
	if err != nil {
		return core.AssetRehab{}, fmt.Errorf("find asset by serial: %w", err)
	}
	return a, nil
}

func (r *SQLRepository) UpdateAsset(ctx context.Context, a core.AssetRehab) error {
	args := append(assetArgs(a), a.ID)
	err := r.update(ctx,
		`UPDATE asset_rehabs SET asset_type = ?, model = ?, serial_or_code = ?, quantity = ?, prev_location = ?,
		 rehab_date = ?, supply_date = ?, qualified_by = ?, lifted = ?, inspector = ?, tested = ?, issue_date = ?,
		 current_location = ?, requester = ?, receiver = ?, notes = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update asset %d: %w", a.ID, err)
	}
	return nil
}

func (r *SQLRepository) ListAssets(ctx context.Context) ([]core.AssetRehab, error) {
	recs, err := queryAll(ctx, r, scanAsset,
		"SELECT "+assetColumns+" FROM asset_rehabs ORDER BY COALESCE(rehab_date, supply_date) DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return recs, nil
}

func (r *SQLRepository) AssetsInPeriod(ctx context.Context, p core.Period, field core.DateField) ([]core.AssetRehab, error) {
	expr := assetDateExpr(field)
	clause, args := r.dialect.PeriodClause(expr, p)
	recs, err := queryAll(ctx, r, scanAsset,
		"SELECT "+assetColumns+" FROM asset_rehabs WHERE "+clause+" ORDER BY "+expr+", id", args...)
	if err != nil {
		return nil, fmt.Errorf("assets in %s by %s: %w", p, field, err)
	}
	return recs, nil
}

// Spares

const spareColumns = "id, part_category, part_name, part_model, quantity, serial, source, qualified_by, rehab_date, tested, notes"

func scanSpare(s rowScanner) (core.SparePartRehab, error) {
	var sp core.SparePartRehab
	err := s.Scan(&sp.ID, textCol{&sp.PartCategory}, textCol{&sp.PartName}, textCol{&sp.PartModel}, &sp.Quantity,
		textCol{&sp.Serial}, textCol{&sp.Source}, textCol{&sp.QualifiedBy}, &sp.RehabDate, boolCol{&sp.Tested}, textCol{&sp.Notes})
	return sp, err
}

func spareArgs(s core.SparePartRehab) []any {
	return []any{s.PartCategory, optText(s.PartName), optText(s.PartModel), s.Quantity, optText(s.Serial),
		optText(s.Source), optText(s.QualifiedBy), s.RehabDate, optBool(s.Tested), optText(s.Notes)}
}

func (r *SQLRepository) CreateSpare(ctx context.Context, s core.SparePartRehab) (core.SparePartRehab, error) {
	id, err := r.insert(ctx,
		`INSERT INTO spare_part_rehabs (part_category, part_name, part_model, quantity, serial, source, qualified_by,
		 rehab_date, tested, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, spareArgs(s)...)
	if err != nil {
		return core.SparePartRehab{}, fmt.Errorf("create spare: %w", err)
	}
	s.ID = id
	slog.DebugContext(ctx, "Spare rehab saved", "id", id, "serial", s.Serial, "backend", r.dialect.Name())
	return s, nil
}

func (r *SQLRepository) GetSpare(ctx context.Context, id int64) (core.SparePartRehab, error) {
	s, err := queryOne(ctx, r, scanSpare, "SELECT "+spareColumns+" FROM spare_part_rehabs WHERE id = ?", id)
	if err != nil {
		return core.SparePartRehab{}, fmt.Errorf("get spare %d: %w", id, err)
	}
	return s, nil
}

func (r *SQLRepository) FindSpareBySerial(ctx context.Context, serial string) (core.SparePartRehab, error) {
	s, err := queryOne(ctx, r, scanSpare,
		"SELECT "+spareColumns+" FROM spare_part_rehabs WHERE serial = ? ORDER BY id LIMIT 1", serial)
	if err != nil {
		return core.SparePartRehab{}, fmt.Errorf("find spare by serial: %w", err)
	}
	return s, nil
}

func (r *SQLRepository) UpdateSpare(ctx context.Context, s core.SparePartRehab) error {
	args := append(spareArgs(s), s.ID)
	err := r.update(ctx,
		`UPDATE spare_part_rehabs SET part_category = ?, part_name = ?, part_model = ?, quantity = ?, serial = ?,
		 source = ?, qualified_by = ?, rehab_date = ?, tested = ?, notes = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update spare %d: %w", s.ID, err)
	}
	return nil
}

func (r *SQLRepository) ListSpares(ctx context.Context) ([]core.SparePartRehab, error) {
	recs, err := queryAll(ctx, r, scanSpare, "SELECT "+spareColumns+" FROM spare_part_rehabs ORDER BY rehab_date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list spares: %w", err)
	}
	return recs, nil
}

func (r *SQLRepository) SparesInPeriod(ctx context.Context, p core.Period) ([]core.SparePartRehab, error) {
	clause, args := r.dialect.PeriodClause("rehab_date", p)
	recs, err := queryAll(ctx, r, scanSpare,
		"SELECT "+spareColumns+" FROM spare_part_rehabs WHERE "+clause+" ORDER BY rehab_date, id", args...)
	if err != nil {
		return nil, fmt.Errorf("spares in %s: %w", p, err)
	}
	return recs, nil
}

var _ Store = (*SQLRepository)(nil)
