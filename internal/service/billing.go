package service

import (
	"time"

	"github.com/google/uuid"

	"parking-service/internal/config"
	"parking-service/internal/model"
)

// BillingEngine computes parking fees and renders invoice records. It has
// no storage of its own; persisting invoices is a collaborator's job.
type BillingEngine struct {
	ratePerMinute    int64
	minChargeMinutes int64
	currency         string
}

func NewBillingEngine(cfg config.BillingConfig) *BillingEngine {
	return &BillingEngine{
		ratePerMinute:    cfg.RatePerMinute,
		minChargeMinutes: cfg.MinimumChargeMinutes,
		currency:         cfg.Currency,
	}
}

// Compute bills any partial minute as a full one and never below the
// minimum charge, so a sub-minute stay still costs one minute.
func (e *BillingEngine) Compute(entryTime, now time.Time) (minutes, amount int64) {
	minutes = int64(now.Sub(entryTime).Seconds())/60 + 1
	if minutes < e.minChargeMinutes {
		minutes = e.minChargeMinutes
	}
	return minutes, minutes * e.ratePerMinute
}

// GenerateInvoice builds the invoice record for a closed session.
func (e *BillingEngine) GenerateInvoice(session *model.Session) model.Invoice {
	exitTime := time.Now().UTC()
	if session.ExitTime != nil {
		exitTime = *session.ExitTime
	}
	var minutes, amount int64
	if session.DurationMinutes != nil {
		minutes = *session.DurationMinutes
	}
	if session.Amount != nil {
		amount = *session.Amount
	}
	return model.Invoice{
		Number:      uuid.NewString(),
		Plate:       session.Plate,
		VehicleType: session.VehicleType,
		EntryTime:   session.EntryTime,
		ExitTime:    exitTime,
		Minutes:     minutes,
		Amount:      amount,
		Currency:    e.currency,
	}
}
