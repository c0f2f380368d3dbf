package adapters

import (
	"context"
	"fxconvert/internal/domain"
)

type RecordSource interface {
	FetchRecords(ctx context.Context) ([]domain.RateRecord, error)
	URL() string
}

type RecordCache interface {
	Get(key string) ([]domain.RateRecord, bool)
	Set(key string, records []domain.RateRecord)
	Invalidate(key string)
}

type SnapshotArchive interface {
	Save(ctx context.Context, snapshot *domain.Snapshot) error
	Latest(ctx context.Context) (*domain.Snapshot, error)
}
