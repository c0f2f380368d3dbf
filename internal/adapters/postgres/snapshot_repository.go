package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SnapshotRepository archives rate tables so the service can start without the API.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

type entryRow struct {
	Currency     string          `json:"currency"`
	RecordDate   string          `json:"record_date"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	entries := snapshot.Table.Entries()
	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entryRow{
			Currency:     e.Currency,
			RecordDate:   e.RecordDate.Format(time.DateOnly),
			ExchangeRate: e.ExchangeRate,
		})
	}
	payloadJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot entries: %w", err)
	}

	const insertSnapshot = `
		insert into rate_snapshots (id, fetched_at, source, skipped)
		values ($1, $2, $3, $4);
	`
	const insertEntries = `
		insert into rate_snapshot_entries (snapshot_id, currency, record_date, exchange_rate)
		select $1, r.currency, r.record_date, r.exchange_rate
		from json_to_recordset($2::json) as r(currency text, record_date date, exchange_rate numeric);
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, insertSnapshot, snapshot.ID, snapshot.FetchedAt, snapshot.Source, snapshot.Table.Skipped()); err != nil {
		return fmt.Errorf("failed to insert snapshot %s: %w", snapshot.ID, err)
	}
	if _, err = tx.Exec(ctx, insertEntries, snapshot.ID, json.RawMessage(payloadJSON)); err != nil {
		return fmt.Errorf("failed to insert entries of snapshot %s: %w", snapshot.ID, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Latest returns the most recently fetched snapshot. Its Source is always
// domain.SourceArchive.
func (r *SnapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	const qSnapshot = `
		select id, fetched_at, skipped
		from rate_snapshots
		order by fetched_at desc
		limit 1;
	`
	const qEntries = `
		select currency, record_date, exchange_rate::text
		from rate_snapshot_entries
		where snapshot_id = $1;
	`

	var (
		id        uuid.UUID
		fetchedAt time.Time
		skipped   int
	)
	if err := r.pool.QueryRow(ctx, qSnapshot).Scan(&id, &fetchedAt, &skipped); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to select latest snapshot: %w", err)
	}

	rows, err := r.pool.Query(ctx, qEntries, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of snapshot %s: %w", id, err)
	}
	defer rows.Close()

	entries := make(map[string]domain.RateEntry, 64)
	for rows.Next() {
		var (
			e       domain.RateEntry
			rateStr string
		)
		if err = rows.Scan(&e.Currency, &e.RecordDate, &rateStr); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot entry: %w", err)
		}
		if e.ExchangeRate, err = decimal.NewFromString(rateStr); err != nil {
			return nil, fmt.Errorf("failed to parse archived rate %q: %w", rateStr, err)
		}
		entries[e.Currency] = e
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot entries: %w", err)
	}

	return &domain.Snapshot{
		ID:        id,
		Table:     domain.NewRateTable(entries, skipped),
		FetchedAt: fetchedAt.UTC(),
		Source:    domain.SourceArchive,
	}, nil
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}
