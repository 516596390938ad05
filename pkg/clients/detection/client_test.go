package detection

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmhub/internal/config"
	"github.com/mamadbah2/farmhub/internal/domain/models"
)

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "leaf.jpg", header.Filename)
		assert.Equal(t, "pixels", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_healthy":false,"predictions":[
			{"disease":"Leaf Mold","confidence":0.2,"severity":"Mild"},
			{"disease":"Healthy","confidence":0.1},
			{"disease":"Late Blight","confidence":0.7,"severity":"severe","treatment":"remove infected leaves"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.DetectionConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	res, err := client.Detect(context.Background(), "leaf.jpg", strings.NewReader("pixels"))
	require.NoError(t, err)

	assert.False(t, res.IsHealthy)
	require.Len(t, res.Diseases, 2)
	assert.Equal(t, "Late Blight", res.Diseases[0].Name)
	assert.Equal(t, models.SeveritySevere, res.Diseases[0].Severity)
	assert.Equal(t, models.SeverityMild, res.Diseases[1].Severity)
}

func TestDetectUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"unsupported image format"}`))
	}))
	defer srv.Close()

	client := NewClient(config.DetectionConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.Detect(context.Background(), "x.gif", strings.NewReader("gif"))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.Contains(t, err.Error(), "unsupported image format")
}
