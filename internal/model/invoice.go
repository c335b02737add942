package model

import (
	"fmt"
	"strings"
	"time"
)

const invoiceTimeLayout = "2006-01-02 15:04:05"

// Invoice is the rendered billing record for a closed session. The engine
// only produces the content; persisting it is the caller's concern.
type Invoice struct {
	Number      string    `json:"number"`
	Plate       string    `json:"plate"`
	VehicleType string    `json:"vehicle_type"`
	EntryTime   time.Time `json:"entry_time"`
	ExitTime    time.Time `json:"exit_time"`
	Minutes     int64     `json:"minutes"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
}

func (i Invoice) Render() string {
	var b strings.Builder
	b.WriteString("===== PARKING INVOICE =====\n")
	fmt.Fprintf(&b, "Plate: %s\n", i.Plate)
	fmt.Fprintf(&b, "Vehicle Type: %s\n", i.VehicleType)
	fmt.Fprintf(&b, "Entry: %s\n", i.EntryTime.Format(invoiceTimeLayout))
	fmt.Fprintf(&b, "Exit : %s\n", i.ExitTime.Format(invoiceTimeLayout))
	fmt.Fprintf(&b, "Duration (min): %d\n", i.Minutes)
	fmt.Fprintf(&b, "Amount: %s%d\n", i.Currency, i.Amount)
	b.WriteString("===========================\n")
	return b.String()
}

// Filename is stable for a given plate and exit time.
func (i Invoice) Filename() string {
	ts := i.ExitTime.Format("2006-01-02_150405")
	return fmt.Sprintf("invoice_%s_%s.txt", i.Plate, ts)
}
