package diseases

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/repository/memory"
)

type stubDetector struct {
	result *models.DetectionResult
	err    error
	got    string
}

func (d *stubDetector) Detect(_ context.Context, _ string, image io.Reader) (*models.DetectionResult, error) {
	body, _ := io.ReadAll(image)
	d.got = string(body)
	return d.result, d.err
}

func setup(t *testing.T, health int, detector Detector) (*Service, *memory.Repository, *models.Crop) {
	t.Helper()
	repo := memory.New()
	crop := &models.Crop{UserID: "u1", Name: "Tomato", HealthScore: health, IsActive: true}
	require.NoError(t, repo.Crops().Insert(context.Background(), crop))
	svc := NewService(repo.Diseases(), repo.Crops(), detector, nil)
	svc.now = func() time.Time { return time.Date(2024, 8, 2, 10, 0, 0, 0, time.UTC) }
	return svc, repo, crop
}

func healthOf(t *testing.T, repo *memory.Repository, crop *models.Crop) int {
	t.Helper()
	c, err := repo.Crops().FindByID(context.Background(), crop.ID)
	require.NoError(t, err)
	return c.HealthScore
}

func TestSevereThenResolve(t *testing.T) {
	ctx := context.Background()
	svc, repo, crop := setup(t, 80, nil)

	disease, err := svc.Create(ctx, models.CreateDiseaseRequest{
		CropID:   crop.ID.Hex(),
		Name:     "Early blight",
		Severity: models.SeveritySevere,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDetected, disease.Status)
	assert.Equal(t, "u1", disease.UserID)
	assert.Equal(t, 50, healthOf(t, repo, crop))

	resolved, err := svc.UpdateStatus(ctx, disease.ID.Hex(), models.StatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, 70, healthOf(t, repo, crop))

	_, err = svc.UpdateStatus(ctx, disease.ID.Hex(), models.StatusResolved)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, 70, healthOf(t, repo, crop))
}

func TestHealthBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("floored at zero", func(t *testing.T) {
		svc, repo, crop := setup(t, 30, nil)
		_, err := svc.Create(ctx, models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Name: "Wilt", Severity: models.SeverityCritical})
		require.NoError(t, err)
		assert.Equal(t, 0, healthOf(t, repo, crop))
	})

	t.Run("capped at one hundred", func(t *testing.T) {
		svc, repo, crop := setup(t, 100, nil)
		d, err := svc.Create(ctx, models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Name: "Rust", Severity: models.SeverityMild})
		require.NoError(t, err)
		assert.Equal(t, 90, healthOf(t, repo, crop))

		_, err = svc.UpdateStatus(ctx, d.ID.Hex(), models.StatusResolved)
		require.NoError(t, err)
		assert.Equal(t, 100, healthOf(t, repo, crop))
	})
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc, repo, crop := setup(t, 100, nil)

	d, err := svc.Create(ctx, models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Name: "Mildew", Severity: models.SeverityModerate})
	require.NoError(t, err)

	treating, err := svc.UpdateStatus(ctx, d.ID.Hex(), models.StatusTreating)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTreating, treating.Status)
	assert.Equal(t, 80, healthOf(t, repo, crop))

	_, err = svc.UpdateStatus(ctx, d.ID.Hex(), models.StatusTreating)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, d.ID.Hex(), "cured")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	back, err := svc.UpdateStatus(ctx, d.ID.Hex(), models.StatusDetected)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDetected, back.Status)
}

func TestCreateValidation(t *testing.T) {
	svc, repo, crop := setup(t, 100, nil)

	tests := []struct {
		name string
		req  models.CreateDiseaseRequest
		err  error
	}{
		{"missing crop id", models.CreateDiseaseRequest{Name: "x", Severity: models.SeverityMild}, models.ErrInvalidInput},
		{"unknown crop", models.CreateDiseaseRequest{CropID: "64b7f0c2a1b2c3d4e5f60718", Name: "x", Severity: models.SeverityMild}, models.ErrNotFound},
		{"missing name", models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Severity: models.SeverityMild}, models.ErrInvalidInput},
		{"bad severity", models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Name: "x", Severity: "extreme"}, models.ErrInvalidInput},
		{"bad confidence", models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Name: "x", Severity: models.SeverityMild, Confidence: 1.5}, models.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Equal(t, 100, healthOf(t, repo, crop))
}

func TestDeleteKeepsHealth(t *testing.T) {
	ctx := context.Background()
	svc, repo, crop := setup(t, 100, nil)

	d, err := svc.Create(ctx, models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Name: "Rot", Severity: models.SeverityModerate})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, d.ID.Hex()))
	assert.Equal(t, 80, healthOf(t, repo, crop))

	list, err := svc.ListByCrop(ctx, crop.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDetect(t *testing.T) {
	ctx := context.Background()
	result := func() *models.DetectionResult {
		return &models.DetectionResult{Diseases: []models.DetectedDisease{
			{Name: "Leaf spot", Confidence: 0.41, Severity: models.SeverityMild},
			{Name: "Late blight", Confidence: 0.87, Severity: models.SeveritySevere},
		}}
	}

	t.Run("not configured", func(t *testing.T) {
		svc, _, _ := setup(t, 100, nil)
		_, err := svc.Detect(ctx, DetectRequest{Image: strings.NewReader("img")})
		assert.ErrorIs(t, err, models.ErrUpstream)
	})

	t.Run("returns findings without persisting", func(t *testing.T) {
		det := &stubDetector{result: result()}
		svc, repo, crop := setup(t, 100, det)
		out, err := svc.Detect(ctx, DetectRequest{Filename: "leaf.jpg", Image: strings.NewReader("img")})
		require.NoError(t, err)
		assert.Len(t, out.Diseases, 2)
		assert.Nil(t, out.Logged)
		assert.Equal(t, "img", det.got)
		assert.Equal(t, 100, healthOf(t, repo, crop))
	})

	t.Run("persists the most confident finding", func(t *testing.T) {
		svc, repo, crop := setup(t, 100, &stubDetector{result: result()})
		out, err := svc.Detect(ctx, DetectRequest{Image: strings.NewReader("img"), CropID: crop.ID.Hex(), Persist: true})
		require.NoError(t, err)
		require.NotNil(t, out.Logged)
		assert.Equal(t, "Late blight", out.Logged.Name)
		assert.Equal(t, 70, healthOf(t, repo, crop))
	})

	t.Run("persist requires crop", func(t *testing.T) {
		svc, _, _ := setup(t, 100, &stubDetector{result: result()})
		_, err := svc.Detect(ctx, DetectRequest{Image: strings.NewReader("img"), Persist: true})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("upstream error passes through", func(t *testing.T) {
		boom := errors.New("classifier down")
		svc, _, _ := setup(t, 100, &stubDetector{err: boom})
		_, err := svc.Detect(ctx, DetectRequest{Image: strings.NewReader("img")})
		assert.ErrorIs(t, err, boom)
	})
}

type failingHealth struct {
	*memory.CropStore
}

func (failingHealth) AdjustHealth(context.Context, primitive.ObjectID, int) (*models.Crop, error) {
	return nil, errors.New("write conflict")
}

func TestCreateRollsBackWhenPenaltyFails(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	crop := &models.Crop{UserID: "u1", Name: "Okra", HealthScore: 90, IsActive: true}
	require.NoError(t, repo.Crops().Insert(ctx, crop))
	svc := NewService(repo.Diseases(), failingHealth{repo.Crops()}, nil, nil)

	_, err := svc.Create(ctx, models.CreateDiseaseRequest{CropID: crop.ID.Hex(), Name: "Mosaic", Severity: models.SeverityModerate})
	require.Error(t, err)

	logged, err := svc.ListByCrop(ctx, crop.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, logged)
	assert.Equal(t, 90, healthOf(t, repo, crop))
}
