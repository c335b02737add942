package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"parking-service/internal/model"
	"parking-service/internal/repository"
)

type gateFixture struct {
	service     *GateService
	slotRepo    *repository.SlotRepository
	sessionRepo *repository.SessionRepository
	invoices    *memorySink
}

type memorySink struct {
	saved []model.Invoice
}

func (s *memorySink) Save(_ context.Context, invoice model.Invoice) (string, error) {
	s.saved = append(s.saved, invoice)
	return invoice.Filename(), nil
}

func newGateFixture(t *testing.T, counts map[model.SlotClass]int) *gateFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Slot{}, &model.Session{}))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_parking_sessions_open_plate
		 ON parking_sessions (plate) WHERE status = 'OPEN'`,
	).Error)

	slotRepo := repository.NewSlotRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	require.NoError(t, slotRepo.EnsureDefaults(context.Background(), counts))

	sink := &memorySink{}
	gate := NewGateService(slotRepo, sessionRepo, testBillingEngine(), sink, zerolog.Nop())

	return &gateFixture{
		service:     gate,
		slotRepo:    slotRepo,
		sessionRepo: sessionRepo,
		invoices:    sink,
	}
}

func defaultCounts() map[model.SlotClass]int {
	return map[model.SlotClass]int{
		model.SlotSmall:  1,
		model.SlotMedium: 2,
		model.SlotLarge:  1,
		model.SlotXL:     1,
	}
}

func TestHandleEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, defaultCounts())

	result, err := f.service.HandleEntry(ctx, "MH12AB1234", "")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "entry_recorded", result.Message)
	assert.Equal(t, "MEDIUM-1", result.Slot)
	assert.Equal(t, "family_sedan", result.VehicleType)

	// re-detecting the same vehicle is idempotent and reports its slot
	again, err := f.service.HandleEntry(ctx, "MH12AB1234", "")
	require.NoError(t, err)
	assert.Equal(t, StatusExists, again.Status)
	assert.Equal(t, "already_inside", again.Message)
	assert.Equal(t, "MEDIUM-1", again.Slot)

	sessions, err := f.sessionRepo.List(ctx, repository.SessionListFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestHandleEntryEmptyPlate(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t, defaultCounts())
	result, err := f.service.HandleEntry(context.Background(), "", "suv")
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidPlate, result.Status)
	assert.Equal(t, "empty_plate", result.Message)
}

func TestHandleEntryVehicleClassPlacement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, defaultCounts())

	result, err := f.service.HandleEntry(ctx, "KA01BU0001", "bus")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "XL-1", result.Slot)
	assert.Equal(t, "bus", result.VehicleType)
}

func TestHandleEntryFallsBackWhenPreferredFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, map[model.SlotClass]int{
		model.SlotMedium: 1,
		model.SlotLarge:  1,
	})

	first, err := f.service.HandleEntry(ctx, "MH12AB0001", "taxi")
	require.NoError(t, err)
	assert.Equal(t, "MEDIUM-1", first.Slot)

	second, err := f.service.HandleEntry(ctx, "MH12AB0002", "taxi")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, second.Status)
	assert.Equal(t, "LARGE-1", second.Slot)
}

func TestHandleEntryLotFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, map[model.SlotClass]int{model.SlotMedium: 1})

	_, err := f.service.HandleEntry(ctx, "MH12AB0001", "")
	require.NoError(t, err)

	result, err := f.service.HandleEntry(ctx, "MH12AB0002", "")
	require.NoError(t, err)
	assert.Equal(t, StatusFull, result.Status)
	assert.Equal(t, "no_slot_available", result.Message)

	// a rejected entry leaves no session behind
	sessions, err := f.sessionRepo.List(ctx, repository.SessionListFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestHandleExit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, defaultCounts())

	entry := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return entry }

	_, err := f.service.HandleEntry(ctx, "MH12AB1234", "")
	require.NoError(t, err)

	f.service.now = func() time.Time { return entry.Add(95 * time.Second) }

	result, err := f.service.HandleExit(ctx, "MH12AB1234")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "exit_recorded", result.Message)
	assert.Equal(t, int64(2), result.Minutes)
	assert.Equal(t, int64(4), result.Amount)
	assert.Equal(t, "MEDIUM-1", result.SlotReleased)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, "MH12AB1234", result.Invoice.Plate)

	require.Len(t, f.invoices.saved, 1)
	assert.Equal(t, int64(4), f.invoices.saved[0].Amount)

	// slot is free again and the session is closed
	occupied, err := f.slotRepo.CountOccupied(ctx)
	require.NoError(t, err)
	assert.Zero(t, occupied[model.SlotMedium])

	status := model.SessionClosed
	closed, err := f.sessionRepo.List(ctx, repository.SessionListFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, closed, 1)

	// a second exit for the same plate finds nothing
	again, err := f.service.HandleExit(ctx, "MH12AB1234")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, again.Status)
	assert.Equal(t, "no_active_entry", again.Message)
}

// Two gates can race the same plate: the second open hits the storage
// index after this gate already reserved a slot. The loser must give its
// slot back and report the winner's session.
func TestHandleEntryLostOpenRaceRollsBackSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, defaultCounts())

	raced := false
	f.service.now = func() time.Time {
		now := time.Now().UTC()
		if !raced {
			raced = true
			_, err := f.sessionRepo.Open(ctx, "MH12CD1234", "family_sedan", "MEDIUM-2", now)
			require.NoError(t, err)
		}
		return now
	}

	result, err := f.service.HandleEntry(ctx, "MH12CD1234", "")
	require.NoError(t, err)
	assert.Equal(t, StatusExists, result.Status)
	assert.Equal(t, "already_inside", result.Message)
	assert.Equal(t, "MEDIUM-2", result.Slot)

	// the loser's reservation was rolled back
	occupied, err := f.slotRepo.CountOccupied(ctx)
	require.NoError(t, err)
	assert.Zero(t, occupied[model.SlotMedium])

	// only the winner's session exists
	sessions, err := f.sessionRepo.List(ctx, repository.SessionListFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, model.SessionOpen, sessions[0].Status)
	assert.Equal(t, "MEDIUM-2", sessions[0].SlotID)
}

// When another gate closes the session between the lookup and this exit's
// close, the losing exit must fail without freeing the slot.
func TestHandleExitLostCloseRaceKeepsSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, defaultCounts())

	_, err := f.service.HandleEntry(ctx, "MH12CD1234", "")
	require.NoError(t, err)

	raced := false
	f.service.now = func() time.Time {
		now := time.Now().UTC()
		if !raced {
			raced = true
			_, err := f.sessionRepo.Close(ctx, "MH12CD1234", now, 1, 2)
			require.NoError(t, err)
		}
		return now
	}

	_, err = f.service.HandleExit(ctx, "MH12CD1234")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNoOpenSession)

	// the slot stays with whoever actually completed the exit
	occupied, err := f.slotRepo.CountOccupied(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), occupied[model.SlotMedium])
}

func TestHandleExitWithoutEntry(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t, defaultCounts())

	result, err := f.service.HandleExit(context.Background(), "MH12AB1234")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, result.Status)
	assert.Equal(t, "no_active_entry", result.Message)
}

func TestHandleExitEmptyPlate(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t, defaultCounts())

	result, err := f.service.HandleExit(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidPlate, result.Status)
}

func TestEntryExitCycleRepeats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGateFixture(t, map[model.SlotClass]int{model.SlotMedium: 1})

	for i := 0; i < 3; i++ {
		entry, err := f.service.HandleEntry(ctx, "MH12AB1234", "")
		require.NoError(t, err)
		require.Equal(t, StatusOK, entry.Status, "cycle %d", i)
		require.Equal(t, "MEDIUM-1", entry.Slot)

		exit, err := f.service.HandleExit(ctx, "MH12AB1234")
		require.NoError(t, err)
		require.Equal(t, StatusOK, exit.Status, "cycle %d", i)
	}

	sessions, err := f.sessionRepo.List(ctx, repository.SessionListFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.Equal(t, model.SessionClosed, s.Status)
	}
}
