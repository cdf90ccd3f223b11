// Package storage maps the application's state onto the key-value store:
// today's running total, the profile, and the history log, each a JSON
// value under its own key.
package storage

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-water-tracker/internal/kv"
	"github.com/Tiliavir/trivial-water-tracker/internal/model"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

const (
	KeyToday   = "water-today"
	KeyProfile = "profile"
	KeyHistory = "water-history"

	corruptSuffix = ".corrupt"
)

// ErrMalformed is returned when a stored value is not valid JSON for its key.
var ErrMalformed = errors.New("malformed stored value")

// Repository reads and writes whole values; there are no partial updates.
type Repository struct {
	store  kv.Store
	logger zerolog.Logger
}

// NewRepository creates a Repository on top of store.
func NewRepository(store kv.Store, logger zerolog.Logger) *Repository {
	return &Repository{store: store, logger: logger}
}

// Store returns the underlying key-value store.
func (r *Repository) Store() kv.Store { return r.store }

// LoadToday returns the persisted running total, or nil if none is stored.
func (r *Repository) LoadToday(ctx context.Context) (*model.DailyState, error) {
	var state model.DailyState
	found, err := r.load(ctx, KeyToday, &state)
	if err != nil || !found {
		return nil, err
	}
	state.Day = normalizeDay(state.Day)
	return &state, nil
}

// SaveToday persists the running total.
func (r *Repository) SaveToday(ctx context.Context, state model.DailyState) error {
	return r.save(ctx, KeyToday, state)
}

// LoadProfile returns the saved profile, or nil if none was saved yet.
func (r *Repository) LoadProfile(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	found, err := r.load(ctx, KeyProfile, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// SaveProfile persists the profile.
func (r *Repository) SaveProfile(ctx context.Context, p model.Profile) error {
	return r.save(ctx, KeyProfile, p)
}

// LoadHistory returns the history log, empty if none is stored. Day keys in
// the legacy format are normalised, and a second record for an already seen
// day is dropped so the one-record-per-day rule holds even for hand-edited
// data.
func (r *Repository) LoadHistory(ctx context.Context) (model.HistoryLog, error) {
	var raw model.HistoryLog
	found, err := r.load(ctx, KeyHistory, &raw)
	if err != nil || !found {
		return model.HistoryLog{}, err
	}

	log := make(model.HistoryLog, 0, len(raw))
	seen := make(map[timecalc.DayKey]bool, len(raw))
	for _, rec := range raw {
		rec.Day = normalizeDay(rec.Day)
		if seen[rec.Day] {
			r.logger.Warn().Str("day", rec.Day.String()).Msg("dropping duplicate history record")
			continue
		}
		seen[rec.Day] = true
		log = append(log, rec)
	}
	return log, nil
}

// SaveHistory persists the whole history log.
func (r *Repository) SaveHistory(ctx context.Context, log model.HistoryLog) error {
	if log == nil {
		log = model.HistoryLog{}
	}
	return r.save(ctx, KeyHistory, log)
}

// ClearHistory removes the history log.
func (r *Repository) ClearHistory(ctx context.Context) error {
	if err := r.store.Remove(ctx, KeyHistory); err != nil {
		return fmt.Errorf("clearing %s: %w", KeyHistory, err)
	}
	return nil
}

// load decodes key into v. found is false when the key does not exist.
// A value that does not decode is moved aside to <key>.corrupt and
// reported as ErrMalformed.
func (r *Repository) load(ctx context.Context, key string, v any) (found bool, err error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		backup := key + corruptSuffix
		if bErr := r.store.Set(ctx, backup, data); bErr == nil {
			_ = r.store.Remove(ctx, key)
		}
		r.logger.Warn().Str("key", key).Str("backup", backup).Err(err).Msg("corrupt value moved aside")
		return false, fmt.Errorf("%w in %s (backed up to %s): %v", ErrMalformed, key, backup, err)
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	r.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("saved")
	return nil
}

// normalizeDay rewrites legacy "Wed Jan 17 2024" keys. Unparseable keys are
// kept verbatim; they simply never match a real day.
func normalizeDay(k timecalc.DayKey) timecalc.DayKey {
	if parsed, err := timecalc.ParseDayKey(string(k)); err == nil {
		return parsed
	}
	return k
}
