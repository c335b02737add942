package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parking-service/internal/model"
	"parking-service/internal/repository"
)

// Result statuses exposed on the wire. The vocabulary follows the gate
// controller protocol: "exists" means the vehicle is already inside and is
// not an error.
const (
	StatusOK           = "ok"
	StatusExists       = "exists"
	StatusFull         = "full"
	StatusNotFound     = "not_found"
	StatusInvalidPlate = "invalid_plate"
)

type EntryResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Slot        string `json:"slot,omitempty"`
	VehicleType string `json:"vehicle_type,omitempty"`
}

type ExitResult struct {
	Status       string         `json:"status"`
	Message      string         `json:"message"`
	Minutes      int64          `json:"minutes,omitempty"`
	Amount       int64          `json:"amount,omitempty"`
	SlotReleased string         `json:"slot_released,omitempty"`
	VehicleType  string         `json:"vehicle_type,omitempty"`
	Invoice      *model.Invoice `json:"invoice,omitempty"`
}

// InvoiceSink persists rendered invoices. The coordinator treats failures
// as non-fatal: the exit already happened at the gate.
type InvoiceSink interface {
	Save(ctx context.Context, invoice model.Invoice) (string, error)
}

// GateService drives the session lifecycle per plate: NONE -> OPEN ->
// CLOSED, with a fresh cycle allowed after close. It owns no state beyond
// orchestration; slots and sessions are mutated only through their
// repositories.
type GateService struct {
	slotRepo    *repository.SlotRepository
	sessionRepo *repository.SessionRepository
	billing     *BillingEngine
	invoices    InvoiceSink
	log         zerolog.Logger

	now func() time.Time
}

func NewGateService(
	slotRepo *repository.SlotRepository,
	sessionRepo *repository.SessionRepository,
	billing *BillingEngine,
	invoices InvoiceSink,
	log zerolog.Logger,
) *GateService {
	return &GateService{
		slotRepo:    slotRepo,
		sessionRepo: sessionRepo,
		billing:     billing,
		invoices:    invoices,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// HandleEntry reserves a slot and opens a session for a canonical plate.
// Re-detecting a vehicle that is already inside returns its current slot
// without side effects.
func (s *GateService) HandleEntry(ctx context.Context, plate, vehicleType string) (*EntryResult, error) {
	if plate == "" {
		return &EntryResult{Status: StatusInvalidPlate, Message: "empty_plate"}, nil
	}

	existing, err := s.sessionRepo.GetOpen(ctx, plate)
	if err == nil {
		return &EntryResult{
			Status:      StatusExists,
			Message:     "already_inside",
			Slot:        existing.SlotID,
			VehicleType: existing.VehicleType,
		}, nil
	}
	if !errors.Is(err, repository.ErrNoOpenSession) {
		return nil, fmt.Errorf("check open session: %w", err)
	}

	vtype := vehicleType
	if vtype == "" {
		vtype = model.DefaultVehicleType
	}
	preferred := model.SlotClassForVehicle(vtype)

	slotID, err := s.slotRepo.Reserve(ctx, preferred, plate)
	if errors.Is(err, repository.ErrNoFreeSlot) {
		slotID, err = s.slotRepo.ReserveAny(ctx, plate, model.SlotFallbackOrder)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNoFreeSlot) {
			return &EntryResult{Status: StatusFull, Message: "no_slot_available"}, nil
		}
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	session, err := s.sessionRepo.Open(ctx, plate, vtype, slotID, s.now())
	if err != nil {
		// Reservation and session open form one logical unit: give the slot
		// back before reporting anything.
		if _, relErr := s.slotRepo.Release(ctx, plate); relErr != nil && !errors.Is(relErr, repository.ErrNotFound) {
			s.log.Error().Err(relErr).Str("plate", plate).Str("slot", slotID).
				Msg("failed to roll back slot reservation")
		}
		if errors.Is(err, repository.ErrDuplicateSession) {
			// Lost the open race to another gate; report that session.
			if existing, getErr := s.sessionRepo.GetOpen(ctx, plate); getErr == nil {
				return &EntryResult{
					Status:      StatusExists,
					Message:     "already_inside",
					Slot:        existing.SlotID,
					VehicleType: existing.VehicleType,
				}, nil
			}
			return nil, fmt.Errorf("open session: %w", err)
		}
		return nil, fmt.Errorf("open session: %w", err)
	}

	s.log.Info().Str("plate", plate).Str("slot", slotID).Str("vehicle_type", vtype).
		Uint64("session_id", session.ID).Msg("entry recorded")

	return &EntryResult{
		Status:      StatusOK,
		Message:     "entry_recorded",
		Slot:        slotID,
		VehicleType: vtype,
	}, nil
}

// HandleExit bills and closes the plate's open session, then releases its
// slot. Release is best-effort once the close committed: a session without
// a tracked slot still exits.
func (s *GateService) HandleExit(ctx context.Context, plate string) (*ExitResult, error) {
	if plate == "" {
		return &ExitResult{Status: StatusInvalidPlate, Message: "empty_plate"}, nil
	}

	open, err := s.sessionRepo.GetOpen(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenSession) {
			return &ExitResult{Status: StatusNotFound, Message: "no_active_entry"}, nil
		}
		return nil, fmt.Errorf("find open session: %w", err)
	}

	exitTime := s.now()
	minutes, amount := s.billing.Compute(open.EntryTime, exitTime)

	closed, err := s.sessionRepo.Close(ctx, plate, exitTime, minutes, amount)
	if err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}

	// The slot is freed only once the close committed; a failed close must
	// not leave the session OPEN with its slot already given away.
	released, err := s.slotRepo.Release(ctx, plate)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("plate", plate).Msg("failed to release slot")
		}
		released = ""
	}

	invoice := s.billing.GenerateInvoice(closed)
	if s.invoices != nil {
		if _, saveErr := s.invoices.Save(ctx, invoice); saveErr != nil {
			s.log.Error().Err(saveErr).Str("plate", plate).Msg("failed to persist invoice")
		}
	}

	s.log.Info().Str("plate", plate).Str("slot_released", released).
		Int64("minutes", minutes).Int64("amount", amount).
		Uint64("session_id", closed.ID).Msg("exit recorded")

	return &ExitResult{
		Status:       StatusOK,
		Message:      "exit_recorded",
		Minutes:      minutes,
		Amount:       amount,
		SlotReleased: released,
		VehicleType:  closed.VehicleType,
		Invoice:      &invoice,
	}, nil
}
