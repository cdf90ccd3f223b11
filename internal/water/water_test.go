package water_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/kv"
	"github.com/Tiliavir/trivial-water-tracker/internal/model"
	"github.com/Tiliavir/trivial-water-tracker/internal/storage"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/tracker"
	"github.com/Tiliavir/trivial-water-tracker/internal/water"
)

var errDisk = errors.New("disk full")

// flakyStore fails reads or writes on demand.
type flakyStore struct {
	*kv.MemoryStore
	failGet bool
	failSet bool
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errDisk
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errDisk
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type countingMetrics struct {
	storageErrors map[string]int
	added         int
	goalReached   int
	todayAmount   int
	records       int
}

func (c *countingMetrics) IncCacheHits()   {}
func (c *countingMetrics) IncCacheMisses() {}
func (c *countingMetrics) IncStorageErrors(op, key string) {
	c.storageErrors[op+":"+key]++
}
func (c *countingMetrics) AddWater(ml int)         { c.added += ml }
func (c *countingMetrics) IncGoalReached()         { c.goalReached++ }
func (c *countingMetrics) SetToday(amount, _ int)  { c.todayAmount = amount }
func (c *countingMetrics) SetHistoryRecords(n int) { c.records = n }
func (c *countingMetrics) Flush() error            { return nil }

type fixture struct {
	svc     *water.Service
	store   *flakyStore
	repo    *storage.Repository
	metrics *countingMetrics
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   &flakyStore{MemoryStore: kv.NewMemoryStore()},
		metrics: &countingMetrics{storageErrors: map[string]int{}},
		// Wednesday.
		now: time.Date(2024, 1, 17, 9, 0, 0, 0, time.Local),
	}
	f.repo = storage.NewRepository(f.store, zerolog.Nop())
	clock := func() time.Time { return f.now }
	f.svc = water.NewService(f.repo, history.NewStore(history.DefaultPolicy()), clock, zerolog.Nop(), f.metrics)
	return f
}

func (f *fixture) setProfile(t *testing.T, weight int) {
	t.Helper()
	require.NoError(t, f.repo.SaveProfile(context.Background(), model.Profile{Name: "Vadim", Age: 25, Weight: weight}))
}

func TestTodayDefaults(t *testing.T) {
	f := newFixture(t)
	snap := f.svc.Today(context.Background())

	assert.Equal(t, timecalc.DayKey("2024-01-17"), snap.Day)
	assert.Equal(t, 0, snap.Amount)
	assert.Equal(t, model.DefaultGoal, snap.Goal)
	assert.Equal(t, tracker.StatusBehind, snap.Status)
	assert.Nil(t, snap.Profile)
}

func TestAddWaterWritesThroughToHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setProfile(t, 70)

	_, err := f.svc.AddWater(ctx, 250)
	require.NoError(t, err)
	out, err := f.svc.AddWater(ctx, 250)
	require.NoError(t, err)

	assert.Equal(t, 500, out.Amount)
	assert.Equal(t, 2450, out.Goal)
	assert.Equal(t, 20, out.Percent)
	assert.NoError(t, out.WriteErr)
	assert.Equal(t, 500, f.svc.Today(ctx).Amount)

	log := f.svc.History(ctx)
	require.Len(t, log, 1)
	assert.Equal(t, model.IntakeRecord{Day: "2024-01-17", Amount: 500, Goal: 2450}, log[0])
	assert.Equal(t, 500, f.metrics.added)
	assert.Equal(t, 1, f.metrics.records)
}

func TestAddWaterGoalCrossing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setProfile(t, 50) // goal 1750

	out, err := f.svc.AddWater(ctx, 1500)
	require.NoError(t, err)
	assert.False(t, out.GoalReached)

	out, err = f.svc.AddWater(ctx, 300)
	require.NoError(t, err)
	assert.True(t, out.GoalReached)
	assert.Equal(t, 1800, out.Amount)

	out, err = f.svc.AddWater(ctx, 100)
	require.NoError(t, err)
	assert.False(t, out.GoalReached, "goal is only reached once")
	assert.Equal(t, 1, f.metrics.goalReached)
}

func TestAddWaterRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, delta := range []int{0, -250} {
		_, err := f.svc.AddWater(ctx, delta)
		assert.ErrorIs(t, err, tracker.ErrInvalidDelta)
	}
	keys, err := f.store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys, "nothing must be written")
}

func TestDayRollover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddWater(ctx, 800)
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 1)
	assert.Equal(t, 0, f.svc.Today(ctx).Amount)

	out, err := f.svc.AddWater(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, 200, out.Amount)

	log := f.svc.History(ctx)
	require.Len(t, log, 2)
	assert.Equal(t, timecalc.DayKey("2024-01-18"), log[0].Day)
	assert.Equal(t, 200, log[0].Amount)
	assert.Equal(t, 800, log[1].Amount)
}

func TestResetBelowGoalNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.AddWater(ctx, 1500)
	require.NoError(t, err)

	out := f.svc.Reset(ctx, false)
	assert.True(t, out.Decision.ConfirmationRequired)
	assert.Equal(t, 75, out.Decision.Percent)
	assert.False(t, out.Reset)
	assert.Equal(t, 1500, f.svc.Today(ctx).Amount)

	out = f.svc.Reset(ctx, true)
	assert.True(t, out.Reset)
	assert.Equal(t, 0, out.Amount)
	assert.Equal(t, 0, f.svc.Today(ctx).Amount)

	log := f.svc.History(ctx)
	require.Len(t, log, 1)
	assert.Equal(t, 1500, log[0].Amount, "reset leaves the history record alone")
}

func TestResetAtGoalIsUnconditional(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.AddWater(ctx, 2000)
	require.NoError(t, err)

	out := f.svc.Reset(ctx, false)
	assert.False(t, out.Decision.ConfirmationRequired)
	assert.True(t, out.Reset)
	assert.Equal(t, 0, f.svc.Today(ctx).Amount)
}

func TestWriteFailureKeepsResult(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.failSet = true

	out, err := f.svc.AddWater(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, out.Amount)
	assert.ErrorIs(t, out.WriteErr, errDisk)
	assert.Equal(t, 1, f.metrics.storageErrors["write:"+storage.KeyToday])
	assert.Equal(t, 1, f.metrics.storageErrors["write:"+storage.KeyHistory])
}

func TestReadFailureFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setProfile(t, 70)
	_, err := f.svc.AddWater(ctx, 500)
	require.NoError(t, err)

	f.store.failGet = true
	snap := f.svc.Today(ctx)
	assert.Equal(t, 0, snap.Amount)
	assert.Equal(t, model.DefaultGoal, snap.Goal)
	assert.Empty(t, f.svc.History(ctx))
	assert.Positive(t, f.metrics.storageErrors["read:"+storage.KeyToday])
}

func TestMalformedTodayFallsBackToZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, storage.KeyToday, "not json"))

	assert.Equal(t, 0, f.svc.Today(ctx).Amount)

	out, err := f.svc.AddWater(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Amount)
}

func TestWeekUsesCurrentGoalForMissingDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.AddWater(ctx, 1000)
	require.NoError(t, err)
	f.setProfile(t, 60) // goal 2100

	week := f.svc.Week(ctx, f.now)
	assert.Equal(t, "2024-01-15", timecalc.KeyOf(week.Start()).String())
	assert.Equal(t, 1000, week.Days[2].Amount)
	assert.Equal(t, 2000, week.Days[2].Goal, "recorded goal is kept")
	assert.Equal(t, 0, week.Days[0].Amount)
	assert.Equal(t, 2100, week.Days[0].Goal)
}

func TestCalendarAndClearHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.AddWater(ctx, 2000)
	require.NoError(t, err)
	f.now = f.now.AddDate(0, 0, -1)
	_, err = f.svc.AddWater(ctx, 1500)
	require.NoError(t, err)

	marks := f.svc.Calendar(ctx)
	assert.Equal(t, history.CategoryComplete, marks["2024-01-17"])
	assert.Equal(t, history.CategoryNear, marks["2024-01-16"])

	require.NoError(t, f.svc.ClearHistory(ctx))
	assert.Empty(t, f.svc.History(ctx))
	assert.Empty(t, f.svc.Calendar(ctx))
	assert.Equal(t, 1500, f.svc.Today(ctx).Amount, "today's total survives clearing")
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		in       water.ProfileInput
		want     model.Profile
		wantGoal int
		wantErr  bool
	}{
		{"complete", water.ProfileInput{Name: "Vadim", Age: "25", Weight: "70"}, model.Profile{Name: "Vadim", Age: 25, Weight: 70}, 2450, false},
		{"trimmed", water.ProfileInput{Name: "  Ann ", Age: " 30 ", Weight: " 60"}, model.Profile{Name: "Ann", Age: 30, Weight: 60}, 2100, false},
		{"unparseable numbers", water.ProfileInput{Name: "Ann", Age: "old", Weight: "heavy"}, model.Profile{Name: "Ann"}, model.DefaultGoal, false},
		{"negative weight", water.ProfileInput{Name: "Ann", Weight: "-5"}, model.Profile{Name: "Ann"}, model.DefaultGoal, false},
		{"leading zero is decimal", water.ProfileInput{Name: "Ann", Age: "030", Weight: "070"}, model.Profile{Name: "Ann", Age: 30, Weight: 70}, 2450, false},
		{"hex is not a number", water.ProfileInput{Name: "Ann", Weight: "0x46"}, model.Profile{Name: "Ann"}, model.DefaultGoal, false},
		{"zero", water.ProfileInput{Name: "Ann", Weight: "000"}, model.Profile{Name: "Ann"}, model.DefaultGoal, false},
		{"missing name", water.ProfileInput{Name: " ", Weight: "70"}, model.Profile{}, 0, true},
		{"absurd weight", water.ProfileInput{Name: "Ann", Weight: "9000"}, model.Profile{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			out, err := f.svc.SaveProfile(ctx, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, water.ErrInvalidProfile)
				assert.Nil(t, f.svc.Profile(ctx), "invalid profile must not be saved")
				return
			}
			require.NoError(t, err)
			assert.NoError(t, out.WriteErr)
			assert.Equal(t, tt.want, out.Profile)
			assert.Equal(t, tt.wantGoal, out.Goal)
			assert.Equal(t, &tt.want, f.svc.Profile(ctx))
			assert.Equal(t, tt.wantGoal, f.svc.Today(ctx).Goal)
		})
	}
}

func TestSaveProfileWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failSet = true

	out, err := f.svc.SaveProfile(context.Background(), water.ProfileInput{Name: "Ann", Weight: "60"})
	require.NoError(t, err)
	assert.ErrorIs(t, out.WriteErr, errDisk)
	assert.Equal(t, 2100, out.Goal)
}
