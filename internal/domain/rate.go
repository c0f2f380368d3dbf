package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateRecord is a single row of the rates of exchange dataset as it arrives
// from the API. Any field may be missing.
type RateRecord struct {
	Currency     string              `json:"currency"`
	RecordDate   string              `json:"record_date"`
	ExchangeRate decimal.NullDecimal `json:"exchange_rate"`
}

type RateEntry struct {
	Currency     string
	RecordDate   time.Time
	ExchangeRate decimal.Decimal
}

// RateTable maps a currency to its most recent rate. It is never modified
// after construction.
type RateTable struct {
	entries map[string]RateEntry
	skipped int
}

func NewRateTable(entries map[string]RateEntry, skipped int) *RateTable {
	return &RateTable{entries: maps.Clone(entries), skipped: skipped}
}

func (t *RateTable) Get(currency string) (RateEntry, bool) {
	if t == nil {
		return RateEntry{}, false
	}
	e, ok := t.entries[currency]
	return e, ok
}

func (t *RateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Skipped is the number of malformed records dropped while building the table.
func (t *RateTable) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

func (t *RateTable) Codes() []string {
	if t == nil {
		return []string{}
	}
	codes := slices.Collect(maps.Keys(t.entries))
	slices.Sort(codes)
	return codes
}

// Entries returns a copy of all entries ordered by currency.
func (t *RateTable) Entries() []RateEntry {
	codes := t.Codes()
	res := make([]RateEntry, 0, len(codes))
	for _, c := range codes {
		res = append(res, t.entries[c])
	}
	return res
}

const (
	SourceAPI     = "api"
	SourceArchive = "archive"
)

type Snapshot struct {
	ID        uuid.UUID
	Table     *RateTable
	FetchedAt time.Time
	Source    string
}
