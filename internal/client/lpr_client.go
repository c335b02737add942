package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"parking-service/internal/config"
	"parking-service/internal/model"
)

// recognitionData is the LPR service's detection payload: the best plate
// box's OCR text plus the highest-confidence vehicle class.
type recognitionData struct {
	PlateText      string  `json:"plate_text"`
	VehicleClassID *int    `json:"vehicle_class_id,omitempty"`
	VehicleType    string  `json:"vehicle_type,omitempty"`
	Confidence     float64 `json:"confidence"`
}

type recognitionResponse struct {
	Data *recognitionData `json:"data"`
}

// LPRClient talks to the license-plate recognition service. It is the only
// component aware of the perception service's wire format; everything past
// it sees model.Detection.
type LPRClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

func NewLPRClient(cfg *config.Config) *LPRClient {
	return &LPRClient{
		baseURL:       cfg.ExternalServices.LPRServiceURL,
		internalToken: cfg.ExternalServices.LPRInternalToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Recognize submits one frame and returns the normalized detection, or
// (nil, nil) when the service found no legible plate.
func (c *LPRClient) Recognize(ctx context.Context, imageBase64 string) (*model.Detection, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("LPR service URL is not configured")
	}

	payload, err := json.Marshal(map[string]string{"image_base64": imageBase64})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/internal/lpr/recognize"

	var resp *http.Response
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.internalToken != "" {
			req.Header.Set("X-Internal-Token", c.internalToken)
		}

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("failed to execute request after %d attempts: %w", maxRetries, lastErr)
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
	}
	if resp == nil {
		return nil, fmt.Errorf("failed to execute request: %w", lastErr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LPR service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response recognitionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if response.Data == nil {
		return nil, nil
	}

	vehicleType := response.Data.VehicleType
	if vehicleType == "" {
		if response.Data.VehicleClassID != nil {
			vehicleType = model.VehicleClassLabel(*response.Data.VehicleClassID)
		} else {
			vehicleType = model.DefaultVehicleType
		}
	}

	return &model.Detection{
		RawText:     response.Data.PlateText,
		VehicleType: vehicleType,
		Confidence:  response.Data.Confidence,
	}, nil
}
