package recognition

import (
	"bytes"
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/avialab/toolkiosk/internal/httpx"
)

// rawTool is a found_tools entry as the service sends it, before validation.
type rawTool struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	SerialNumber string  `json:"serial_number"`
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
}

type predictResponse struct {
	FoundTools        []rawTool `json:"found_tools"`
	HandCheck         bool      `json:"hand_check"`
	ProcessedImageURL string    `json:"processed_image_url"`
	MLPredictions     []float64 `json:"ml_predictions"`
}

type ClientOpts struct {
	BaseURL string
}

// Client is the HTTP gateway to the detection service.
type Client struct {
	httpClient *resty.Client
}

func NewClient(opts ClientOpts) *Client {
	c := Client{}
	c.httpClient = resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")

	return &c
}

// Recognize sends one image to POST /predict/ and returns the normalized
// detections. A non-2xx response or transport failure returns an error and
// no result; callers must leave session state untouched in that case.
func (c *Client) Recognize(ctx context.Context, image []byte, fileName string, toolkitID int, confidence float64) (Result, error) {
	raw := &predictResponse{}

	_, err := httpx.HandleError(c.httpClient.NewRequest().
		SetContext(ctx).
		SetFileReader("image", fileName, bytes.NewReader(image)).
		SetFormData(map[string]string{
			"toolkit_id": strconv.Itoa(toolkitID),
			"confidence": strconv.FormatFloat(confidence, 'f', -1, 64),
		}).
		SetResult(raw).
		Post("/predict/"))
	if err != nil {
		return Result{}, err
	}

	return normalize(*raw), nil
}

// normalize validates the raw payload. Entries without a name are dropped
// (the service occasionally emits placeholder rows) and out-of-range
// confidences are clamped to [0,1].
func normalize(raw predictResponse) Result {
	result := Result{
		Tools:             make([]Detection, 0, len(raw.FoundTools)),
		HandCheck:         raw.HandCheck,
		ProcessedImageURL: raw.ProcessedImageURL,
		MLPredictions:     raw.MLPredictions,
	}
	if result.MLPredictions == nil {
		result.MLPredictions = []float64{}
	}

	for _, t := range raw.FoundTools {
		if t.Name == "" {
			log.Warn().Int("id", t.ID).Msg("dropping detection without a name")
			continue
		}
		conf := t.Confidence
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		id := t.ID
		if id < 0 {
			id = 0
		}
		category := t.Category
		if category == "" {
			category = "hand_tools"
		}
		result.Tools = append(result.Tools, Detection{
			CanonicalID:  id,
			Name:         t.Name,
			SerialNumber: t.SerialNumber,
			Category:     category,
			Confidence:   conf,
		})
	}

	return result
}
