package detection

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/farmhub/internal/config"
	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Client uploads leaf images to the disease classifier.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a classifier client.
func NewClient(cfg config.DetectionConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{httpClient: client}
}

type prediction struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
	Symptoms   string  `json:"symptoms"`
	Treatment  string  `json:"treatment"`
	Pesticide  string  `json:"pesticide"`
}

type predictResponse struct {
	IsHealthy   bool         `json:"is_healthy"`
	Predictions []prediction `json:"predictions"`
}

type apiError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Detect posts the image as multipart field "file" and reshapes the answer.
// Findings are ordered by confidence, highest first.
func (c *Client) Detect(ctx context.Context, filename string, image io.Reader) (*models.DetectionResult, error) {
	if filename == "" {
		filename = "image.jpg"
	}

	var (
		body   predictResponse
		apiErr apiError
	)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, image).
		SetResult(&body).
		SetError(&apiErr).
		Post("/predict")
	if err != nil {
		return nil, fmt.Errorf("%w: detection call: %v", models.ErrUpstream, err)
	}
	if resp.IsError() {
		msg := apiErr.Detail
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = resp.String()
		}
		return nil, fmt.Errorf("%w: detection error (%d): %s", models.ErrUpstream, resp.StatusCode(), msg)
	}

	result := &models.DetectionResult{
		IsHealthy: body.IsHealthy,
		Diseases:  make([]models.DetectedDisease, 0, len(body.Predictions)),
	}
	for _, p := range body.Predictions {
		if strings.EqualFold(p.Disease, "healthy") {
			continue
		}
		result.Diseases = append(result.Diseases, models.DetectedDisease{
			Name:       p.Disease,
			Confidence: p.Confidence,
			Severity:   models.Severity(strings.ToLower(p.Severity)),
			Symptoms:   p.Symptoms,
			Treatment:  p.Treatment,
			Pesticide:  p.Pesticide,
		})
	}
	sort.SliceStable(result.Diseases, func(i, j int) bool {
		return result.Diseases[i].Confidence > result.Diseases[j].Confidence
	})
	if len(result.Diseases) == 0 {
		result.IsHealthy = true
	}
	return result, nil
}
