package rate

import (
	"strings"
	"time"

	"fxconvert/internal/domain"
)

const recordDateLayout = time.DateOnly

// Aggregate reduces raw records to one entry per currency holding the latest
// record date. Records sharing a date are resolved in input order: the later
// one wins. Malformed records are skipped and counted in the table.
func Aggregate(records []domain.RateRecord) *domain.RateTable {
	entries := make(map[string]domain.RateEntry, len(records))
	skipped := 0

	for _, rec := range records {
		entry, ok := toEntry(rec)
		if !ok {
			skipped++
			continue
		}
		if existing, seen := entries[entry.Currency]; seen && entry.RecordDate.Before(existing.RecordDate) {
			continue
		}
		entries[entry.Currency] = entry
	}

	return domain.NewRateTable(entries, skipped)
}

// ExtractCurrencyCodes returns unique currencies in first-seen order.
func ExtractCurrencyCodes(records []domain.RateRecord) []string {
	seen := make(map[string]struct{}, len(records))
	codes := make([]string, 0, len(records))
	for _, rec := range records {
		code := strings.TrimSpace(rec.Currency)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

func toEntry(rec domain.RateRecord) (domain.RateEntry, bool) {
	currency := strings.TrimSpace(rec.Currency)
	if currency == "" || !rec.ExchangeRate.Valid || checkRange(rec.ExchangeRate.Decimal) != nil {
		return domain.RateEntry{}, false
	}
	date, err := ParseRecordDate(rec.RecordDate)
	if err != nil {
		return domain.RateEntry{}, false
	}
	return domain.RateEntry{
		Currency:     currency,
		RecordDate:   date,
		ExchangeRate: rec.ExchangeRate.Decimal,
	}, true
}

// ParseRecordDate accepts plain dates (2024-03-31) and RFC 3339 timestamps.
func ParseRecordDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(recordDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
