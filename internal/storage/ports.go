package storage

import (
	"context"

	"rehabcenter/internal/core"
)

// IssueStore persists issued items.
type IssueStore interface {
	CreateIssue(ctx context.Context, it core.IssuedItem) (core.IssuedItem, error)
	// ListIssues returns items newest first.
	ListIssues(ctx context.Context) ([]core.IssuedItem, error)
	// IssuesForExport returns items oldest first.
	IssuesForExport(ctx context.Context) ([]core.IssuedItem, error)
}

// CabinetStore persists cabinet rehabilitations.
type CabinetStore interface {
	CreateCabinet(ctx context.Context, c core.CabinetRehab) (core.CabinetRehab, error)
	GetCabinet(ctx context.Context, id int64) (core.CabinetRehab, error)
	// FindCabinetByCode returns core.ErrNotFound when no record carries code.
	FindCabinetByCode(ctx context.Context, code string) (core.CabinetRehab, error)
	UpdateCabinet(ctx context.Context, c core.CabinetRehab) error
	ListCabinets(ctx context.Context) ([]core.CabinetRehab, error)
	CabinetsInPeriod(ctx context.Context, p core.Period) ([]core.CabinetRehab, error)
}

// AssetStore persists asset rehabilitations.
type AssetStore interface {
	CreateAsset(ctx context.Context, a core.AssetRehab) (core.AssetRehab, error)
	GetAsset(ctx context.Context, id int64) (core.AssetRehab, error)
	FindAssetBySerial(ctx context.Context, serial string) (core.AssetRehab, error)
	UpdateAsset(ctx context.Context, a core.AssetRehab) error
	ListAssets(ctx context.Context) ([]core.AssetRehab, error)
	AssetsInPeriod(ctx context.Context, p core.Period, field core.DateField) ([]core.AssetRehab, error)
}

// SpareStore persists spare-part rehabilitations.
type SpareStore interface {
	CreateSpare(ctx context.Context, s core.SparePartRehab) (core.SparePartRehab, error)
	GetSpare(ctx context.Context, id int64) (core.SparePartRehab, error)
	FindSpareBySerial(ctx context.Context, serial string) (core.SparePartRehab, error)
	UpdateSpare(ctx context.Context, s core.SparePartRehab) error
	ListSpares(ctx context.Context) ([]core.SparePartRehab, error)
	SparesInPeriod(ctx context.Context, p core.Period) ([]core.SparePartRehab, error)
}

// Store is the full record store used by the services.
type Store interface {
	IssueStore
	CabinetStore
	AssetStore
	SpareStore
	Ping(ctx context.Context) error
	Close() error
}
