package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Testify mocks ---

const testURL = "https://rates.test/v1/accounting/od/rates_of_exchange?fields=currency"

type MockRecordSource struct{ mock.Mock }

func (m *MockRecordSource) FetchRecords(ctx context.Context) ([]domain.RateRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.RateRecord)
	return records, args.Error(1)
}

func (m *MockRecordSource) URL() string { return testURL }

type MockRecordCache struct{ mock.Mock }

func (m *MockRecordCache) Get(key string) ([]domain.RateRecord, bool) {
	args := m.Called(key)
	records, _ := args.Get(0).([]domain.RateRecord)
	return records, args.Bool(1)
}

func (m *MockRecordCache) Set(key string, records []domain.RateRecord) {
	m.Called(key, records)
}

func (m *MockRecordCache) Invalidate(key string) {
	m.Called(key)
}

type MockSnapshotArchive struct{ mock.Mock }

func (m *MockSnapshotArchive) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotArchive) Latest(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*domain.Snapshot)
	return snap, args.Error(1)
}

func sampleRecords() []domain.RateRecord {
	return []domain.RateRecord{
		rec("Euro", "2024-03-31", "0.91"),
		rec("Yen", "2024-03-31", "151.2"),
		rec("Euro", "2024-06-30", "0.925"),
		rec("", "2024-06-30", "9.99"),
	}
}

func newTestService(source *MockRecordSource, cache *MockRecordCache, archive *MockSnapshotArchive) (*Service, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	// keep nil mocks as nil interfaces
	var svc *Service
	switch {
	case cache == nil && archive == nil:
		svc = NewService(source, nil, nil, NewStore(), logger, time.Second)
	case cache == nil:
		svc = NewService(source, nil, archive, NewStore(), logger, time.Second)
	case archive == nil:
		svc = NewService(source, cache, nil, NewStore(), logger, time.Second)
	default:
		svc = NewService(source, cache, archive, NewStore(), logger, time.Second)
	}
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }
	return svc, hook
}

func withDeadline() any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})
}

// --- Refresh ---

func TestService_Refresh_Forced_FetchesAggregatesAndArchives(t *testing.T) {
	source := new(MockRecordSource)
	cache := new(MockRecordCache)
	archive := new(MockSnapshotArchive)
	svc, hook := newTestService(source, cache, archive)

	records := sampleRecords()
	source.On("FetchRecords", withDeadline()).Return(records, nil).Once()
	cache.On("Set", testURL, records).Once()
	archive.On("Save", mock.Anything, mock.AnythingOfType("*domain.Snapshot")).Return(nil).Once()

	snap, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, snap.ID)
	require.Equal(t, domain.SourceAPI, snap.Source)
	require.Equal(t, time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC), snap.FetchedAt)
	require.Equal(t, []string{"Euro", "Yen"}, snap.Table.Codes())
	require.Equal(t, 1, snap.Table.Skipped())
	require.Same(t, snap, svc.store.Load())

	euro, ok := snap.Table.Get("Euro")
	require.True(t, ok)
	require.Equal(t, "0.925", euro.ExchangeRate.String())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "1 malformed rate records skipped" {
			warned = true
		}
	}
	require.True(t, warned, "expected a warning about skipped records")

	cache.AssertNotCalled(t, "Get", mock.Anything)
	source.AssertExpectations(t)
	cache.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestService_Refresh_NotForced_UsesCache(t *testing.T) {
	source := new(MockRecordSource)
	cache := new(MockRecordCache)
	archive := new(MockSnapshotArchive)
	svc, _ := newTestService(source, cache, archive)

	cache.On("Get", testURL).Return(sampleRecords(), true).Once()

	snap, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Table.Len())

	source.AssertNotCalled(t, "FetchRecords", mock.Anything)
	archive.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestService_Refresh_NotForced_CacheMissFetches(t *testing.T) {
	source := new(MockRecordSource)
	cache := new(MockRecordCache)
	svc, _ := newTestService(source, cache, nil)

	records := sampleRecords()
	cache.On("Get", testURL).Return(nil, false).Once()
	source.On("FetchRecords", mock.Anything).Return(records, nil).Once()
	cache.On("Set", testURL, records).Once()

	snap, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Table.Len())

	source.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_Refresh_FetchError_KeepsPreviousSnapshot(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	previous := &domain.Snapshot{ID: uuid.New(), Table: Aggregate(sampleRecords())}
	svc.store.Replace(previous)

	fetchErr := &domain.FetchError{Kind: domain.FetchTimeout, Err: context.DeadlineExceeded}
	source.On("FetchRecords", mock.Anything).Return(nil, fetchErr).Once()

	snap, err := svc.Refresh(context.Background(), true)
	require.Nil(t, snap)
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Same(t, previous, svc.store.Load())
}

func TestService_Refresh_ArchiveFailureIsNotFatal(t *testing.T) {
	source := new(MockRecordSource)
	archive := new(MockSnapshotArchive)
	svc, hook := newTestService(source, nil, archive)

	source.On("FetchRecords", mock.Anything).Return(sampleRecords(), nil).Once()
	archive.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	snap, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.Same(t, snap, svc.store.Load())
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, "Failed to archive rate snapshot", hook.LastEntry().Message)
}

func TestService_Refresh_ConcurrentCallsShareOneFetch(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	source.On("FetchRecords", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleRecords(), nil).Once()

	const callers = 5
	results := make(chan *domain.Snapshot, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap, err := svc.Refresh(context.Background(), true)
		assert.NoError(t, err)
		results <- snap
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := svc.Refresh(context.Background(), true)
			assert.NoError(t, err)
			results <- snap
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	var ids []uuid.UUID
	for snap := range results {
		ids = append(ids, snap.ID)
	}
	require.Len(t, ids, callers)
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
	source.AssertNumberOfCalls(t, "FetchRecords", 1)
}

func TestService_Refresh_ForcedDoesNotJoinCachedRefresh(t *testing.T) {
	source := new(MockRecordSource)
	cache := new(MockRecordCache)
	svc, _ := newTestService(source, cache, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	cached := []domain.RateRecord{rec("Euro", "2024-03-31", "0.91")}
	fresh := []domain.RateRecord{rec("Euro", "2024-06-30", "0.925")}
	cache.On("Get", testURL).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(cached, true).Once()
	source.On("FetchRecords", mock.Anything).Return(fresh, nil).Once()
	cache.On("Set", testURL, fresh).Once()

	cachedCh := make(chan *domain.Snapshot, 1)
	go func() {
		snap, err := svc.Refresh(context.Background(), false)
		assert.NoError(t, err)
		cachedCh <- snap
	}()
	<-entered

	forcedCh := make(chan *domain.Snapshot, 1)
	go func() {
		snap, err := svc.Refresh(context.Background(), true)
		assert.NoError(t, err)
		forcedCh <- snap
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	fromCache := <-cachedCh
	forced := <-forcedCh
	require.NotEqual(t, fromCache.ID, forced.ID)

	euro, ok := forced.Table.Get("Euro")
	require.True(t, ok)
	require.Equal(t, "0.925", euro.ExchangeRate.String())
	source.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_Refresh_UnusableBatchIsDroppedFromCache(t *testing.T) {
	source := new(MockRecordSource)
	cache := new(MockRecordCache)
	svc, _ := newTestService(source, cache, nil)

	records := []domain.RateRecord{rec("", "2024-06-30", "0.9"), rec("Euro", "not a date", "0.9")}
	source.On("FetchRecords", mock.Anything).Return(records, nil).Once()
	cache.On("Set", testURL, records).Once()
	cache.On("Invalidate", testURL).Once()

	snap, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 0, snap.Table.Len())
	require.Equal(t, 2, snap.Table.Skipped())
	cache.AssertExpectations(t)
}

func TestService_Refresh_CallerCancelled_FetchStillCompletes(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	release := make(chan struct{})
	source.On("FetchRecords", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(sampleRecords(), nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Refresh(ctx, true)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return svc.store.Load() != nil }, 2*time.Second, 10*time.Millisecond)
}

func TestService_RefreshAsync_DeliversOneResult(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	source.On("FetchRecords", mock.Anything).Return(sampleRecords(), nil).Once()

	resCh := svc.RefreshAsync(context.Background(), true)
	res, ok := <-resCh
	require.True(t, ok)
	require.NoError(t, res.Err)
	require.Equal(t, 2, res.Snapshot.Table.Len())

	_, ok = <-resCh
	require.False(t, ok, "channel must be closed after the result")
}

func TestService_RefreshAsync_DeliversError(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	source.On("FetchRecords", mock.Anything).Return(nil, &domain.FetchError{Kind: domain.FetchConnection, Err: errors.New("refused")}).Once()

	res := <-svc.RefreshAsync(context.Background(), true)
	require.Nil(t, res.Snapshot)
	require.ErrorIs(t, res.Err, domain.ErrFetchFailed)
}

// --- Currencies ---

func TestService_Currencies_FirstSeenOrder(t *testing.T) {
	source := new(MockRecordSource)
	cache := new(MockRecordCache)
	svc, _ := newTestService(source, cache, nil)

	records := []domain.RateRecord{{Currency: "Yen"}, {Currency: "Euro"}, {Currency: "Yen"}, {}}
	cache.On("Get", testURL).Return(nil, false).Once()
	source.On("FetchRecords", mock.Anything).Return(records, nil).Once()
	cache.On("Set", testURL, records).Once()

	codes, err := svc.Currencies(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Yen", "Euro"}, codes)
	require.Nil(t, svc.store.Load(), "listing currencies must not replace the rate table")
}

func TestService_Currencies_Error(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	source.On("FetchRecords", mock.Anything).Return(nil, &domain.FetchError{Kind: domain.FetchStatus, Err: errors.New("503")}).Once()

	_, err := svc.Currencies(context.Background())
	require.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestService_CurrenciesAsync(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	source.On("FetchRecords", mock.Anything).Return(sampleRecords(), nil).Once()

	res := <-svc.CurrenciesAsync(context.Background())
	require.NoError(t, res.Err)
	require.Equal(t, []string{"Euro", "Yen"}, res.Codes)
}

// --- Snapshot / Lookup / Convert ---

func TestService_Snapshot_RefreshesWhenEmpty(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	source.On("FetchRecords", mock.Anything).Return(sampleRecords(), nil).Once()

	first, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)
	source.AssertNumberOfCalls(t, "FetchRecords", 1)
}

func TestService_Snapshot_Unavailable(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	source.On("FetchRecords", mock.Anything).Return(nil, &domain.FetchError{Kind: domain.FetchConnection, Err: errors.New("refused")}).Once()

	_, err := svc.Snapshot(context.Background())
	require.ErrorIs(t, err, domain.ErrRatesUnavailable)
	require.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestService_Lookup(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)
	svc.store.Replace(&domain.Snapshot{ID: uuid.New(), Table: Aggregate(sampleRecords())})

	e, err := svc.Lookup(context.Background(), " Yen ")
	require.NoError(t, err)
	require.Equal(t, "151.2", e.ExchangeRate.String())

	_, err = svc.Lookup(context.Background(), "Peso")
	require.ErrorIs(t, err, domain.ErrCurrencyNotFound)
	source.AssertNotCalled(t, "FetchRecords", mock.Anything)
}

func TestService_Convert_Success(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)
	svc.store.Replace(&domain.Snapshot{ID: uuid.New(), Table: Aggregate(sampleRecords())})

	conv, err := svc.Convert(context.Background(), "Euro", "100")
	require.NoError(t, err)
	require.Equal(t, "100", conv.AmountUSD.String())
	require.Equal(t, "92.5", conv.ConvertedAmount.String())
	require.Equal(t, "Euro", conv.Currency)
	require.Equal(t, "0.925", conv.ExchangeRate.String())
	require.Equal(t, date("2024-06-30"), conv.RecordDate)
	require.Equal(t, "$100 USD is worth 92.5 Euro", conv.Message())
}

func TestService_Convert_ZeroAmount(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)
	svc.store.Replace(&domain.Snapshot{ID: uuid.New(), Table: Aggregate(sampleRecords())})

	conv, err := svc.Convert(context.Background(), "Yen", "0")
	require.NoError(t, err)
	require.True(t, conv.ConvertedAmount.IsZero())
}

func TestService_Convert_InvalidAmountCheckedFirst(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	_, err := svc.Convert(context.Background(), "Unknown", "abc")
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	require.NotErrorIs(t, err, domain.ErrCurrencyNotFound)
	source.AssertNotCalled(t, "FetchRecords", mock.Anything)
}

func TestService_Convert_UnknownCurrency(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)
	svc.store.Replace(&domain.Snapshot{ID: uuid.New(), Table: Aggregate(sampleRecords())})

	_, err := svc.Convert(context.Background(), "Peso", "10")
	require.ErrorIs(t, err, domain.ErrCurrencyNotFound)
	require.NotErrorIs(t, err, domain.ErrInvalidAmount)
}

// --- WarmStart ---

func TestService_WarmStart_FromAPI(t *testing.T) {
	source := new(MockRecordSource)
	archive := new(MockSnapshotArchive)
	svc, _ := newTestService(source, nil, archive)

	source.On("FetchRecords", mock.Anything).Return(sampleRecords(), nil).Once()
	archive.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.WarmStart(context.Background()))
	require.Equal(t, domain.SourceAPI, svc.store.Load().Source)
	archive.AssertNotCalled(t, "Latest", mock.Anything)
}

func TestService_WarmStart_FallsBackToArchive(t *testing.T) {
	source := new(MockRecordSource)
	archive := new(MockSnapshotArchive)
	svc, _ := newTestService(source, nil, archive)

	archived := &domain.Snapshot{ID: uuid.New(), Table: Aggregate(sampleRecords()), Source: domain.SourceArchive}
	source.On("FetchRecords", mock.Anything).Return(nil, &domain.FetchError{Kind: domain.FetchConnection, Err: errors.New("refused")}).Once()
	archive.On("Latest", mock.Anything).Return(archived, nil).Once()

	require.NoError(t, svc.WarmStart(context.Background()))
	require.Same(t, archived, svc.store.Load())
}

func TestService_WarmStart_NoArchive(t *testing.T) {
	source := new(MockRecordSource)
	svc, _ := newTestService(source, nil, nil)

	source.On("FetchRecords", mock.Anything).Return(nil, &domain.FetchError{Kind: domain.FetchTimeout, Err: context.DeadlineExceeded}).Once()

	err := svc.WarmStart(context.Background())
	require.ErrorIs(t, err, domain.ErrRatesUnavailable)
	require.Nil(t, svc.store.Load())
}

func TestService_WarmStart_ArchiveEmpty(t *testing.T) {
	source := new(MockRecordSource)
	archive := new(MockSnapshotArchive)
	svc, _ := newTestService(source, nil, archive)

	source.On("FetchRecords", mock.Anything).Return(nil, &domain.FetchError{Kind: domain.FetchTimeout, Err: context.DeadlineExceeded}).Once()
	archive.On("Latest", mock.Anything).Return(nil, domain.ErrSnapshotNotFound).Once()

	err := svc.WarmStart(context.Background())
	require.ErrorIs(t, err, domain.ErrRatesUnavailable)
	require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	require.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestNewService_DefaultsFetchTimeout(t *testing.T) {
	svc := NewService(new(MockRecordSource), nil, nil, NewStore(), logrus.New(), 0)
	require.Equal(t, defaultFetchTimeout, svc.fetchTimeout)
}
