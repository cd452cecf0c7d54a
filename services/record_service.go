package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/breadMSA/Calories/models"
)

const (
	recordKeyPrefix = "records:"
	recordIndexKey  = "records:index"

	// the date index keeps at most a year of recent dates
	recordIndexLimit = 365
)

// RecordService owns the DayRecord lifecycle: every mutation re-reads the
// whole record, applies the change, recomputes totals and writes the record
// back (last write wins at DayRecord granularity).
type RecordService struct {
	store KVStore
}

func NewRecordService(store KVStore) *RecordService {
	return &RecordService{store: store}
}

func recordKey(date string) string { return recordKeyPrefix + date }

// FetchDay returns the stored record for a date, or a zero-valued record
// when nothing has been logged. Missing data is never an error; only store
// transport failures are.
func (s *RecordService) FetchDay(ctx context.Context, date string) (models.DayRecord, error) {
	var rec models.DayRecord
	err := s.store.Get(ctx, recordKey(date), &rec)
	if errors.Is(err, ErrKeyNotFound) {
		return models.EmptyDayRecord(date), nil
	}
	if err != nil {
		return models.DayRecord{}, err
	}
	if rec.Entries == nil {
		rec.Entries = []models.FoodEntry{}
	}
	return rec, nil
}

// UpsertEntry adds the entry to its date's record, or replaces the entry
// with the same id if one exists, then recomputes totals and persists the
// whole record.
func (s *RecordService) UpsertEntry(ctx context.Context, entry models.FoodEntry) (models.DayRecord, error) {
	if entry.Date == "" || entry.ID == "" {
		return models.DayRecord{}, fmt.Errorf("%w: entry date and id are required", ErrValidation)
	}
	sanitizeEntry(&entry)

	rec, err := s.FetchDay(ctx, entry.Date)
	if err != nil {
		return models.DayRecord{}, err
	}

	replaced := false
	for i := range rec.Entries {
		if rec.Entries[i].ID == entry.ID {
			rec.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		rec.Entries = append(rec.Entries, entry)
	}
	rec.RecomputeTotals()

	if err := s.store.Set(ctx, recordKey(entry.Date), rec); err != nil {
		return models.DayRecord{}, err
	}
	if err := s.touchIndex(ctx, entry.Date); err != nil {
		return models.DayRecord{}, err
	}
	return rec, nil
}

// UpdateEntry replaces an existing entry in place. Unlike UpsertEntry it is
// strict: both the day record and the entry id must already exist.
func (s *RecordService) UpdateEntry(ctx context.Context, entry models.FoodEntry) (models.DayRecord, error) {
	if entry.Date == "" || entry.ID == "" {
		return models.DayRecord{}, fmt.Errorf("%w: entry date and id are required", ErrValidation)
	}
	sanitizeEntry(&entry)

	var rec models.DayRecord
	err := s.store.Get(ctx, recordKey(entry.Date), &rec)
	if errors.Is(err, ErrKeyNotFound) {
		return models.DayRecord{}, fmt.Errorf("%w: no record for %s", ErrNotFound, entry.Date)
	}
	if err != nil {
		return models.DayRecord{}, err
	}

	found := false
	for i := range rec.Entries {
		if rec.Entries[i].ID == entry.ID {
			rec.Entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		return models.DayRecord{}, fmt.Errorf("%w: entry %s", ErrNotFound, entry.ID)
	}
	rec.RecomputeTotals()

	if err := s.store.Set(ctx, recordKey(entry.Date), rec); err != nil {
		return models.DayRecord{}, err
	}
	return rec, nil
}

// DeleteEntry removes the matching entry from the date's record. An unknown
// id within an existing record is a no-op, not an error; the record is still
// recomputed and persisted. A missing day record is ErrNotFound.
func (s *RecordService) DeleteEntry(ctx context.Context, date, id string) (models.DayRecord, error) {
	if date == "" || id == "" {
		return models.DayRecord{}, fmt.Errorf("%w: date and id are required", ErrValidation)
	}

	var rec models.DayRecord
	err := s.store.Get(ctx, recordKey(date), &rec)
	if errors.Is(err, ErrKeyNotFound) {
		return models.DayRecord{}, fmt.Errorf("%w: no record for %s", ErrNotFound, date)
	}
	if err != nil {
		return models.DayRecord{}, err
	}

	kept := rec.Entries[:0]
	for _, e := range rec.Entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	rec.Entries = kept
	if rec.Entries == nil {
		rec.Entries = []models.FoodEntry{}
	}
	rec.RecomputeTotals()

	if err := s.store.Set(ctx, recordKey(date), rec); err != nil {
		return models.DayRecord{}, err
	}
	return rec, nil
}

// touchIndex keeps records:index as the newest-first list of distinct dates
// with entries, capped at recordIndexLimit.
func (s *RecordService) touchIndex(ctx context.Context, date string) error {
	var index []string
	err := s.store.Get(ctx, recordIndexKey, &index)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	for _, d := range index {
		if d == date {
			return nil
		}
	}
	index = append([]string{date}, index...)
	if len(index) > recordIndexLimit {
		index = index[:recordIndexLimit]
	}
	return s.store.Set(ctx, recordIndexKey, index)
}

// sanitizeEntry clamps nutrient fields to non-negative values and defaults
// the source, matching what the store accepts regardless of client input.
func sanitizeEntry(e *models.FoodEntry) {
	if e.Calories < 0 {
		e.Calories = 0
	}
	if e.Protein < 0 {
		e.Protein = 0
	}
	if e.Sodium < 0 {
		e.Sodium = 0
	}
	if e.Water < 0 {
		e.Water = 0
	}
	if e.Source != models.SourceAI {
		e.Source = models.SourceManual
	}
}
