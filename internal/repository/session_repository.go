package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parking-service/internal/model"
)

// SessionRepository owns parking session records.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Open creates a new OPEN session for plate. The partial unique index on
// (plate) WHERE status='OPEN' rejects a second concurrent open; that
// violation surfaces as ErrDuplicateSession.
func (r *SessionRepository) Open(ctx context.Context, plate, vehicleType, slotID string, entryTime time.Time) (*model.Session, error) {
	session := &model.Session{
		Plate:       plate,
		VehicleType: vehicleType,
		SlotID:      slotID,
		EntryTime:   entryTime,
		Status:      model.SessionOpen,
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSession
		}
		return nil, fmt.Errorf("open session: %w", err)
	}
	return session, nil
}

// GetOpen returns the most recent OPEN session for plate, or ErrNoOpenSession.
func (r *SessionRepository) GetOpen(ctx context.Context, plate string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Where("plate = ? AND status = ?", plate, model.SessionOpen).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenSession
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return &session, nil
}

// Close transitions the plate's OPEN session to CLOSED, stamping the
// computed billing fields. The update is conditional on status so a
// session is closed exactly once.
func (r *SessionRepository) Close(ctx context.Context, plate string, exitTime time.Time, durationMinutes, amount int64) (*model.Session, error) {
	session, err := r.GetOpen(ctx, plate)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND status = ?", session.ID, model.SessionOpen).
		Updates(map[string]interface{}{
			"exit_time":        exitTime,
			"duration_minutes": durationMinutes,
			"amount":           amount,
			"status":           model.SessionClosed,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("close session %d: %w", session.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// closed concurrently between the lookup and the update
		return nil, ErrNoOpenSession
	}

	session.ExitTime = &exitTime
	session.DurationMinutes = &durationMinutes
	session.Amount = &amount
	session.Status = model.SessionClosed
	return session, nil
}

type SessionListFilter struct {
	Plate  *string
	Status *model.SessionStatus
}

// List returns sessions newest first. Plate filters by substring so
// operators can search on a partial read.
func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]model.Session, error) {
	query := r.db.WithContext(ctx).Model(&model.Session{})

	if filter.Plate != nil {
		query = query.Where("plate LIKE ?", "%"+*filter.Plate+"%")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var sessions []model.Session
	if err := query.Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
