package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"rehabcenter/internal/amqp"
	"rehabcenter/internal/core"
	"rehabcenter/internal/storage"
	"rehabcenter/internal/taxonomy"
)

// EventPublisher announces record writes. *amqp.Client implements it.
type EventPublisher interface {
	PublishRecordChanged(ctx context.Context, kind string, id int64, action string) error
}

// RecordService validates and persists records, enforcing the advisory
// uniqueness of cabinet codes and asset serials.
type RecordService struct {
	store  storage.Store
	events EventPublisher
}

// NewRecordService creates the service. events may be nil.
func NewRecordService(store storage.Store, events EventPublisher) *RecordService {
	return &RecordService{store: store, events: events}
}

func (s *RecordService) publish(ctx context.Context, kind taxonomy.Kind, id int64, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordChanged(ctx, string(kind), id, action); err != nil {
		// the record is already stored
		slog.ErrorContext(ctx, "Failed to publish record changed message",
			"kind", kind, "id", id, "action", action, "error", err)
	}
}

func normalizeCategory(kind taxonomy.Kind, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		// left for the required tag to report
		return "", nil
	}
	key, ok := taxonomy.Normalize(kind, raw)
	if !ok {
		return "", fmt.Errorf("%w: %s category %q", core.ErrUnknownCategory, kind, raw)
	}
	return key, nil
}

// notFound maps a store miss onto the operator message.
func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NewUserError(err, core.MsgNotFound)
	}
	return err
}

// Issues

func (s *RecordService) CreateIssue(ctx context.Context, it core.IssuedItem) (core.IssuedItem, error) {
	it.ID = 0
	it.Normalize()
	if err := core.Validate(it); err != nil {
		return core.IssuedItem{}, err
	}
	created, err := s.store.CreateIssue(ctx, it)
	if err != nil {
		return core.IssuedItem{}, fmt.Errorf("save issue: %w", err)
	}
	slog.InfoContext(ctx, "Issue recorded", "id", created.ID, "item_name", created.ItemName, "quantity", created.Quantity)
	s.publish(ctx, "issue", created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *RecordService) ListIssues(ctx context.Context) ([]core.IssuedItem, error) {
	return s.store.ListIssues(ctx)
}

// Cabinets

func (s *RecordService) prepareCabinet(c *core.CabinetRehab) error {
	key, err := normalizeCategory(taxonomy.KindCabinet, c.CabinetType)
	if err != nil {
		return err
	}
	c.CabinetType = key
	c.Normalize()
	return core.Validate(c)
}

// checkCabinetCode rejects code when another cabinet already carries it.
func (s *RecordService) checkCabinetCode(ctx context.Context, code string, selfID int64) error {
	if code == "" {
		return nil
	}
	existing, err := s.store.FindCabinetByCode(ctx, code)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check cabinet code: %w", err)
	case existing.ID != selfID:
		return core.NewUserError(core.ErrDuplicateKey, core.MsgCodeExists)
	}
	return nil
}

func (s *RecordService) CreateCabinet(ctx context.Context, c core.CabinetRehab) (core.CabinetRehab, error) {
	c.ID = 0
	if err := s.prepareCabinet(&c); err != nil {
		return core.CabinetRehab{}, err
	}
	if err := s.checkCabinetCode(ctx, c.Code, 0); err != nil {
		return core.CabinetRehab{}, err
	}
	created, err := s.store.CreateCabinet(ctx, c)
	if err != nil {
		return core.CabinetRehab{}, fmt.Errorf("save cabinet: %w", err)
	}
	slog.InfoContext(ctx, "Cabinet rehab recorded", "id", created.ID, "type", created.CabinetType, "code", created.Code)
	s.publish(ctx, taxonomy.KindCabinet, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *RecordService) UpdateCabinet(ctx context.Context, id int64, u core.CabinetUpdate) (core.CabinetRehab, error) {
	if err := core.Validate(u); err != nil {
		return core.CabinetRehab{}, err
	}
	c, err := s.store.GetCabinet(ctx, id)
	if err != nil {
		return core.CabinetRehab{}, notFound(err)
	}
	prevCode := c.Code
	u.Apply(&c)
	if err := s.prepareCabinet(&c); err != nil {
		return core.CabinetRehab{}, err
	}
	if c.Code != prevCode {
		if err := s.checkCabinetCode(ctx, c.Code, id); err != nil {
			return core.CabinetRehab{}, err
		}
	}
	if err := s.store.UpdateCabinet(ctx, c); err != nil {
		return core.CabinetRehab{}, notFound(err)
	}
	slog.InfoContext(ctx, "Cabinet rehab updated", "id", id)
	s.publish(ctx, taxonomy.KindCabinet, id, amqp.ActionUpdated)
	return c, nil
}

func (s *RecordService) FindCabinet(ctx context.Context, code string) (core.CabinetRehab, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return core.CabinetRehab{}, fmt.Errorf("%w: code is required", core.ErrValidation)
	}
	c, err := s.store.FindCabinetByCode(ctx, code)
	if err != nil {
		return core.CabinetRehab{}, notFound(err)
	}
	return c, nil
}

func (s *RecordService) ListCabinets(ctx context.Context) ([]core.CabinetRehab, error) {
	return s.store.ListCabinets(ctx)
}

// Assets

func (s *RecordService) prepareAsset(a *core.AssetRehab) error {
	key, err := normalizeCategory(taxonomy.KindAsset, a.AssetType)
	if err != nil {
		return err
	}
	a.AssetType = key
	a.Normalize()
	return core.Validate(a)
}

func (s *RecordService) checkAssetSerial(ctx context.Context, serial string, selfID int64) error {
	if serial == "" {
		return nil
	}
	existing, err := s.store.FindAssetBySerial(ctx, serial)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check asset serial: %w", err)
	case existing.ID != selfID:
		return core.NewUserError(core.ErrDuplicateKey, core.MsgSerialExists)
	}
	return nil
}

func (s *RecordService) CreateAsset(ctx context.Context, a core.AssetRehab) (core.AssetRehab, error) {
	a.ID = 0
	if err := s.prepareAsset(&a); err != nil {
		return core.AssetRehab{}, err
	}
	if err := s.checkAssetSerial(ctx, a.SerialOrCode, 0); err != nil {
		return core.AssetRehab{}, err
	}
	created, err := s.store.CreateAsset(ctx, a)
	if err != nil {
		return core.AssetRehab{}, fmt.Errorf("save asset: %w", err)
	}
	slog.InfoContext(ctx, "Asset rehab recorded", "id", created.ID, "type", created.AssetType, "serial_or_code", created.SerialOrCode)
	s.publish(ctx, taxonomy.KindAsset, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *RecordService) UpdateAsset(ctx context.Context, id int64, u core.AssetUpdate) (core.AssetRehab, error) {
	if err := core.Validate(u); err != nil {
		return core.AssetRehab{}, err
	}
	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return core.AssetRehab{}, notFound(err)
	}
	prevSerial := a.SerialOrCode
	u.Apply(&a)
	if err := s.prepareAsset(&a); err != nil {
		return core.AssetRehab{}, err
	}
	if a.SerialOrCode != prevSerial {
		if err := s.checkAssetSerial(ctx, a.SerialOrCode, id); err != nil {
			return core.AssetRehab{}, err
		}
	}
	if err := s.store.UpdateAsset(ctx, a); err != nil {
		return core.AssetRehab{}, notFound(err)
	}
	slog.InfoContext(ctx, "Asset rehab updated", "id", id)
	s.publish(ctx, taxonomy.KindAsset, id, amqp.ActionUpdated)
	return a, nil
}

func (s *RecordService) FindAsset(ctx context.Context, serial string) (core.AssetRehab, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return core.AssetRehab{}, fmt.Errorf("%w: serial is required", core.ErrValidation)
	}
	a, err := s.store.FindAssetBySerial(ctx, serial)
	if err != nil {
		return core.AssetRehab{}, notFound(err)
	}
	return a, nil
}

func (s *RecordService) ListAssets(ctx context.Context) ([]core.AssetRehab, error) {
	return s.store.ListAssets(ctx)
}

// Spares carry no uniqueness check on write; repeated serials surface in the
// duplicate report instead.

func (s *RecordService) prepareSpare(sp *core.SparePartRehab) error {
	key, err := normalizeCategory(taxonomy.KindSpare, sp.PartCategory)
	if err != nil {
		return err
	}
	sp.PartCategory = key
	sp.Normalize()
	return core.Validate(sp)
}

func (s *RecordService) CreateSpare(ctx context.Context, sp core.SparePartRehab) (core.SparePartRehab, error) {
	sp.ID = 0
	if err := s.prepareSpare(&sp); err != nil {
		return core.SparePartRehab{}, err
	}
	created, err := s.store.CreateSpare(ctx, sp)
	if err != nil {
		return core.SparePartRehab{}, fmt.Errorf("save spare: %w", err)
	}
	slog.InfoContext(ctx, "Spare rehab recorded", "id", created.ID, "category", created.PartCategory, "serial", created.Serial)
	s.publish(ctx, taxonomy.KindSpare, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *RecordService) UpdateSpare(ctx context.Context, id int64, u core.SpareUpdate) (core.SparePartRehab, error) {
	if err := core.Validate(u); err != nil {
		return core.SparePartRehab{}, err
	}
	sp, err := s.store.GetSpare(ctx, id)
	if err != nil {
		return core.SparePartRehab{}, notFound(err)
	}
	u.Apply(&sp)
	if err := s.prepareSpare(&sp); err != nil {
		return core.SparePartRehab{}, err
	}
	if err := s.store.UpdateSpare(ctx, sp); err != nil {
		return core.SparePartRehab{}, notFound(err)
	}
	slog.InfoContext(ctx, "Spare rehab updated", "id", id)
	s.publish(ctx, taxonomy.KindSpare, id, amqp.ActionUpdated)
	return sp, nil
}

func (s *RecordService) FindSpare(ctx context.Context, serial string) (core.SparePartRehab, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return core.SparePartRehab{}, fmt.Errorf("%w: serial is required", core.ErrValidation)
	}
	sp, err := s.store.FindSpareBySerial(ctx, serial)
	if err != nil {
		return core.SparePartRehab{}, notFound(err)
	}
	return sp, nil
}

func (s *RecordService) ListSpares(ctx context.Context) ([]core.SparePartRehab, error) {
	return s.store.ListSpares(ctx)
}
