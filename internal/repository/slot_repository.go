package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"parking-service/internal/model"
)

// reserveCandidates bounds how many free slots one Reserve call will race
// for before reporting no capacity.
const reserveCandidates = 3

// SlotRepository owns the slot pool. All occupancy mutations go through
// conditional updates checked via RowsAffected, so concurrent callers can
// never both win the same slot.
type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// EnsureDefaults seeds the slot pool on first start. Counts are static
// configuration; an already-populated table is left untouched.
func (r *SlotRepository) EnsureDefaults(ctx context.Context, counts map[model.SlotClass]int) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&model.Slot{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("count slots: %w", err)
	}
	if existing > 0 {
		return nil
	}

	var slots []model.Slot
	for _, class := range model.SlotClasses {
		for i := 1; i <= counts[class]; i++ {
			slots = append(slots, model.Slot{
				ID:    fmt.Sprintf("%s-%d", strings.ToUpper(string(class)), i),
				Class: class,
			})
		}
	}
	if len(slots) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&slots).Error; err != nil {
		return fmt.Errorf("seed slots: %w", err)
	}
	return nil
}

// Reserve atomically claims one free slot of the given class for plate.
// A candidate lost to a concurrent caller is skipped and the next one is
// tried, up to reserveCandidates attempts. Returns ErrNoFreeSlot when the
// class has no winnable slot.
func (r *SlotRepository) Reserve(ctx context.Context, class model.SlotClass, plate string) (string, error) {
	var candidates []model.Slot
	err := r.db.WithContext(ctx).
		Where("class = ? AND occupied = ?", class, false).
		Order("id ASC").
		Limit(reserveCandidates).
		Find(&candidates).Error
	if err != nil {
		return "", fmt.Errorf("find free slot: %w", err)
	}

	now := time.Now().UTC()
	for _, candidate := range candidates {
		res := r.db.WithContext(ctx).Model(&model.Slot{}).
			Where("id = ? AND occupied = ?", candidate.ID, false).
			Updates(map[string]interface{}{
				"occupied":       true,
				"occupant_plate": plate,
				"occupied_since": now,
			})
		if res.Error != nil {
			return "", fmt.Errorf("reserve slot %s: %w", candidate.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			return candidate.ID, nil
		}
		// lost the race for this candidate, try the next
	}
	return "", ErrNoFreeSlot
}

// ReserveAny tries Reserve over the fallback class order and returns the
// first success. No state is left behind when every class is full.
func (r *SlotRepository) ReserveAny(ctx context.Context, plate string, order []model.SlotClass) (string, error) {
	for _, class := range order {
		slotID, err := r.Reserve(ctx, class, plate)
		if err == nil {
			return slotID, nil
		}
		if !errors.Is(err, ErrNoFreeSlot) {
			return "", err
		}
	}
	return "", ErrNoFreeSlot
}

// Release frees the slot occupied by plate and returns its id, or
// ErrNotFound when the plate occupies no slot.
func (r *SlotRepository) Release(ctx context.Context, plate string) (string, error) {
	var slot model.Slot
	err := r.db.WithContext(ctx).
		Where("occupant_plate = ?", plate).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find occupied slot: %w", err)
	}

	res := r.db.WithContext(ctx).Model(&model.Slot{}).
		Where("id = ? AND occupant_plate = ?", slot.ID, plate).
		Updates(map[string]interface{}{
			"occupied":       false,
			"occupant_plate": nil,
			"occupied_since": nil,
		})
	if res.Error != nil {
		return "", fmt.Errorf("release slot %s: %w", slot.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// released concurrently between the lookup and the update
		return "", ErrNotFound
	}
	return slot.ID, nil
}

// List returns the whole pool ordered by class and id, for reporting.
func (r *SlotRepository) List(ctx context.Context) ([]model.Slot, error) {
	var slots []model.Slot
	if err := r.db.WithContext(ctx).Order("class ASC, id ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// CountOccupied reports occupied slots per class.
func (r *SlotRepository) CountOccupied(ctx context.Context) (map[model.SlotClass]int64, error) {
	type row struct {
		Class model.SlotClass
		N     int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Slot{}).
		Select("class, COUNT(*) AS n").
		Where("occupied = ?", true).
		Group("class").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count occupied slots: %w", err)
	}
	counts := make(map[model.SlotClass]int64, len(rows))
	for _, r := range rows {
		counts[r.Class] = r.N
	}
	return counts, nil
}
