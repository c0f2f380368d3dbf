package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	defaultFetchTimeout = 10 * time.Second
	refreshKey          = "refresh"
	forcedRefreshKey    = "refresh:force"
)

type RefreshResult struct {
	Snapshot *domain.Snapshot
	Err      error
}

type CurrenciesResult struct {
	Codes []string
	Err   error
}

type Service struct {
	source       adapters.RecordSource
	cache        adapters.RecordCache
	archive      adapters.SnapshotArchive
	store        *Store
	logger       logrus.FieldLogger
	fetchTimeout time.Duration
	now          func() time.Time

	group singleflight.Group
	// writeMu makes the service the single writer of store.
	writeMu sync.Mutex
}

// Refresh fetches the rates, rebuilds the table and swaps it into the store.
// Concurrent calls share one fetch. Records are served from the cache unless
// force is set. The fetch itself is bounded by the fetch timeout and keeps
// running if ctx is cancelled so that joined callers still get the result.
// Forced and cache-allowed calls coalesce separately, so a forced call never
// receives a cache-served table.
func (s *Service) Refresh(ctx context.Context, force bool) (*domain.Snapshot, error) {
	key := refreshKey
	if force {
		key = forcedRefreshKey
	}
	ch := s.group.DoChan(key, func() (any, error) {
		snap, err := s.refresh(context.WithoutCancel(ctx), force)
		if err != nil {
			return nil, err
		}
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Snapshot), nil
	}
}

// RefreshAsync runs Refresh in the background and delivers exactly one result.
func (s *Service) RefreshAsync(ctx context.Context, force bool) <-chan RefreshResult {
	out := make(chan RefreshResult, 1)
	go func() {
		defer close(out)
		snap, err := s.Refresh(ctx, force)
		out <- RefreshResult{Snapshot: snap, Err: err}
	}()
	return out
}

// Currencies lists the currency codes offered by the API in first-seen order.
func (s *Service) Currencies(ctx context.Context) ([]string, error) {
	records, _, err := s.fetchRecords(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	return ExtractCurrencyCodes(records), nil
}

func (s *Service) CurrenciesAsync(ctx context.Context) <-chan CurrenciesResult {
	out := make(chan CurrenciesResult, 1)
	go func() {
		defer close(out)
		codes, err := s.Currencies(ctx)
		out <- CurrenciesResult{Codes: codes, Err: err}
	}()
	return out
}

// Snapshot returns the current snapshot, refreshing first if there is none.
func (s *Service) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	if snap := s.store.Load(); snap != nil {
		return snap, nil
	}
	snap, err := s.Refresh(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRatesUnavailable, err)
	}
	return snap, nil
}

func (s *Service) Lookup(ctx context.Context, currency string) (domain.RateEntry, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.RateEntry{}, err
	}
	entry, ok := snap.Table.Get(strings.TrimSpace(currency))
	if !ok {
		return domain.RateEntry{}, fmt.Errorf("%w: %q", domain.ErrCurrencyNotFound, currency)
	}
	return entry, nil
}

// Convert converts a USD amount into currency using the current table.
// The amount is checked before the currency.
func (s *Service) Convert(ctx context.Context, currency string, amountText string) (domain.Conversion, error) {
	amount, err := parseDecimal(amountText)
	if err != nil {
		return domain.Conversion{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, amountText)
	}

	entry, err := s.Lookup(ctx, currency)
	if err != nil {
		return domain.Conversion{}, err
	}

	converted, err := Convert(amountText, entry.ExchangeRate)
	if err != nil {
		return domain.Conversion{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"currency": entry.Currency,
		"amount":   amount.String(),
		"rate":     entry.ExchangeRate.String(),
	}).Debug("Converting amount")

	return domain.Conversion{
		AmountUSD:       amount,
		ConvertedAmount: converted,
		Currency:        entry.Currency,
		ExchangeRate:    entry.ExchangeRate,
		RecordDate:      entry.RecordDate,
	}, nil
}

// WarmStart loads rates on startup. When the API is unreachable the latest
// archived snapshot is used instead.
func (s *Service) WarmStart(ctx context.Context) error {
	snap, err := s.Refresh(ctx, true)
	if err == nil {
		s.logger.WithField("currencies", snap.Table.Len()).Info("Initial rates loaded")
		return nil
	}
	s.logger.WithError(err).Warn("Initial rates fetch failed")

	if s.archive == nil {
		return fmt.Errorf("%w: %w", domain.ErrRatesUnavailable, err)
	}

	archived, archErr := s.archive.Latest(ctx)
	if archErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrRatesUnavailable, errors.Join(err, archErr))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.store.Load() == nil {
		s.store.Replace(archived)
	}
	s.logger.WithFields(logrus.Fields{
		"snapshot_id": archived.ID,
		"fetched_at":  archived.FetchedAt,
		"currencies":  archived.Table.Len(),
	}).Info("Rates restored from archive")
	return nil
}

func (s *Service) refresh(ctx context.Context, force bool) (*domain.Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, fresh, err := s.fetchRecords(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh rates: %w", err)
	}

	table := Aggregate(records)
	if table.Len() == 0 && s.cache != nil {
		// a batch without a single usable rate must not be served again
		s.cache.Invalidate(s.source.URL())
	}
	snap := &domain.Snapshot{
		ID:        uuid.New(),
		Table:     table,
		FetchedAt: s.now().UTC(),
		Source:    domain.SourceAPI,
	}
	s.store.Replace(snap)

	fields := logrus.Fields{"snapshot_id": snap.ID, "currencies": table.Len(), "records": len(records), "fresh": fresh}
	if table.Skipped() > 0 {
		s.logger.WithFields(fields).Warnf("%d malformed rate records skipped", table.Skipped())
	}
	s.logger.WithFields(fields).Info("Rate table replaced")

	if fresh && s.archive != nil {
		if archErr := s.archive.Save(ctx, snap); archErr != nil {
			s.logger.WithError(archErr).WithField("snapshot_id", snap.ID).Warn("Failed to archive rate snapshot")
		}
	}
	return snap, nil
}

// fetchRecords reports whether the records came from the API (fresh) or the cache.
func (s *Service) fetchRecords(ctx context.Context, force bool) ([]domain.RateRecord, bool, error) {
	key := s.source.URL()
	if !force && s.cache != nil {
		if records, ok := s.cache.Get(key); ok {
			return records, false, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	records, err := s.source.FetchRecords(fetchCtx)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Set(key, records)
	}
	return records, true, nil
}

// NewService wires the service. archive and cache may be nil.
func NewService(source adapters.RecordSource, cache adapters.RecordCache, archive adapters.SnapshotArchive, store *Store, logger logrus.FieldLogger, fetchTimeout time.Duration) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Service{
		source:       source,
		cache:        cache,
		archive:      archive,
		store:        store,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
}
