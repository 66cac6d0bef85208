package recognition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognize(t *testing.T) {
	var req *http.Request
	var toolkitID, confidence string
	var imageBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		require.NoError(t, r.ParseMultipartForm(1<<20))
		toolkitID = r.FormValue("toolkit_id")
		confidence = r.FormValue("confidence")
		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		buf := make([]byte, 16)
		n, _ := file.Read(buf)
		imageBody = buf[:n]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"found_tools": [
				{"id": 1, "name": "Отвертка «-»", "serial_number": "SN001", "category": "hand_tools"},
				{"id": 11, "name": "Бокорезы", "serial_number": "SN011", "category": "hand_tools", "confidence": 0.93}
			],
			"hand_check": true,
			"processed_image_url": "http://example.com/out.jpg",
			"ml_predictions": [0.91, 0.93]
		}`))
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL})
	result, err := client.Recognize(context.Background(), []byte("jpegdata"), "tray.jpg", 1, 0.25)

	require.NoError(t, err)
	assert.Equal(t, "/predict/", req.URL.Path)
	assert.Equal(t, "1", toolkitID)
	assert.Equal(t, "0.25", confidence)
	assert.Equal(t, []byte("jpegdata"), imageBody)

	require.Len(t, result.Tools, 2)
	assert.Equal(t, Detection{
		CanonicalID:  1,
		Name:         "Отвертка «-»",
		SerialNumber: "SN001",
		Category:     "hand_tools",
		Confidence:   0, // omitted by the service
	}, result.Tools[0])
	assert.Equal(t, 0.93, result.Tools[1].Confidence)
	assert.True(t, result.HandCheck)
	assert.Equal(t, "http://example.com/out.jpg", result.ProcessedImageURL)
	assert.Equal(t, []float64{0.91, 0.93}, result.MLPredictions)
}

func TestRecognizeServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewClient(ClientOpts{BaseURL: ts.URL})
	_, err := client.Recognize(context.Background(), []byte("x"), "tray.jpg", 1, 0.5)
	assert.Error(t, err)
}

func TestNormalizeDropsNamelessAndClamps(t *testing.T) {
	raw := predictResponse{
		FoundTools: []rawTool{
			{ID: 1, Name: ""}, // dropped
			{ID: 2, Name: "Отвертка «+»", Confidence: 1.7}, // clamped to 1
			{ID: -4, Name: "Коловорот", Confidence: 0.5},   // negative id coerced to 0
			{ID: 6, Name: "Пассатижи", Confidence: -0.2},   // clamped to 0
		},
	}

	result := normalize(raw)

	require.Len(t, result.Tools, 3)
	assert.Equal(t, 1.0, result.Tools[0].Confidence)
	assert.Zero(t, result.Tools[1].CanonicalID)
	assert.Equal(t, 0.0, result.Tools[2].Confidence)
	assert.Equal(t, "hand_tools", result.Tools[0].Category)
	assert.NotNil(t, result.MLPredictions)
}
