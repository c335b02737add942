package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"parking-service/internal/model"
	"parking-service/internal/utils"
)

// Frame-level statuses: outcomes of the perception pre-filter, before the
// gate engine is ever involved.
const (
	StatusNoPlate   = "no_plate"
	StatusBadPlate  = "bad_plate"
	StatusDebounced = "debounced"
)

type GateDirection string

const (
	DirectionEntry GateDirection = "entry"
	DirectionExit  GateDirection = "exit"
)

// Recognizer is the perception boundary: one normalized detection per
// frame, nil when nothing legible was found.
type Recognizer interface {
	Recognize(ctx context.Context, imageBase64 string) (*model.Detection, error)
}

type FrameResult struct {
	Status  string       `json:"status"`
	Plate   string       `json:"plate,omitempty"`
	RawText string       `json:"raw_text,omitempty"`
	Entry   *EntryResult `json:"entry,omitempty"`
	Exit    *ExitResult  `json:"exit,omitempty"`
}

// FrameService runs one captured frame through recognition, normalization
// and debouncing, then drives the gate engine. Perception failures are
// terminal for the frame and degrade to a no-op result; they never reach
// the session state machine.
type FrameService struct {
	recognizer Recognizer
	gate       *GateService
	debouncer  *Debouncer
	log        zerolog.Logger
}

func NewFrameService(recognizer Recognizer, gate *GateService, debouncer *Debouncer, log zerolog.Logger) *FrameService {
	return &FrameService{
		recognizer: recognizer,
		gate:       gate,
		debouncer:  debouncer,
		log:        log,
	}
}

func (s *FrameService) Process(ctx context.Context, direction GateDirection, imageBase64 string) (*FrameResult, error) {
	detection, err := s.recognizer.Recognize(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("recognize frame: %w", err)
	}
	if detection == nil || detection.RawText == "" {
		return &FrameResult{Status: StatusNoPlate}, nil
	}

	plate := utils.NormalizePlate(detection.RawText)
	if plate == "" {
		s.log.Debug().Str("raw_text", detection.RawText).Msg("unusable OCR text")
		return &FrameResult{Status: StatusBadPlate, RawText: detection.RawText}, nil
	}

	if !s.debouncer.Accept(plate) {
		return &FrameResult{Status: StatusDebounced, Plate: plate}, nil
	}

	switch direction {
	case DirectionEntry:
		entry, err := s.gate.HandleEntry(ctx, plate, detection.VehicleType)
		if err != nil {
			return nil, err
		}
		return &FrameResult{Status: entry.Status, Plate: plate, Entry: entry}, nil
	case DirectionExit:
		exit, err := s.gate.HandleExit(ctx, plate)
		if err != nil {
			return nil, err
		}
		return &FrameResult{Status: exit.Status, Plate: plate, Exit: exit}, nil
	default:
		return nil, fmt.Errorf("unknown gate direction %q", direction)
	}
}
