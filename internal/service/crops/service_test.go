package crops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/repository/memory"
)

func newService(repo *memory.Repository, now time.Time) *Service {
	svc := NewService(repo.Crops(), repo.Lands(), repo.Plots(), nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateUsesCatalogDuration(t *testing.T) {
	svc := newService(memory.New(), day("2024-06-01"))

	crop, err := svc.Create(context.Background(), models.CreateCropRequest{
		UserID:       "u1",
		Name:         "Wheat",
		PlantingDate: "2024-01-15",
	})
	require.NoError(t, err)

	assert.Equal(t, 120, crop.Duration)
	assert.Equal(t, day("2024-01-15").AddDate(0, 0, 120), crop.ExpectedHarvestDate)
	assert.Equal(t, models.MaxHealthScore, crop.HealthScore)
	assert.Equal(t, models.StageSowing, crop.CurrentStage)
	assert.True(t, crop.IsActive)
}

func TestCreateDurationFallbacks(t *testing.T) {
	svc := newService(memory.New(), day("2024-06-01"))
	ctx := context.Background()

	unknown, err := svc.Create(ctx, models.CreateCropRequest{UserID: "u1", Name: "Dragon fruit", PlantingDate: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCropDuration, unknown.Duration)
	assert.Equal(t, day("2024-05-30"), unknown.ExpectedHarvestDate)

	explicit, err := svc.Create(ctx, models.CreateCropRequest{UserID: "u1", Name: "Wheat", PlantingDate: "2024-03-01T18:30:00Z", Duration: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, explicit.Duration)
	assert.Equal(t, day("2024-06-09"), explicit.ExpectedHarvestDate)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(memory.New(), day("2024-06-01"))

	tests := []struct {
		name string
		req  models.CreateCropRequest
		err  error
	}{
		{"missing user", models.CreateCropRequest{Name: "x", PlantingDate: "2024-01-01"}, models.ErrInvalidInput},
		{"missing name", models.CreateCropRequest{UserID: "u", PlantingDate: "2024-01-01"}, models.ErrInvalidInput},
		{"missing date", models.CreateCropRequest{UserID: "u", Name: "x"}, models.ErrInvalidInput},
		{"bad date", models.CreateCropRequest{UserID: "u", Name: "x", PlantingDate: "15/01/2024"}, models.ErrInvalidInput},
		{"bad land id", models.CreateCropRequest{UserID: "u", Name: "x", PlantingDate: "2024-01-01", LandID: "zzz"}, models.ErrInvalidInput},
		{"unknown land", models.CreateCropRequest{UserID: "u", Name: "x", PlantingDate: "2024-01-01", LandID: "64b7f0c2a1b2c3d4e5f60718"}, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCreateLinksPlot(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	land := &models.Land{UserID: "u1", Size: models.LandSize{Value: 10, Unit: models.UnitAcre}, IsActive: true}
	require.NoError(t, repo.Lands().Insert(ctx, land))
	plots := []models.Plot{{LandID: land.ID, Percentage: 100, Area: 10}}
	require.NoError(t, repo.Plots().ReplaceForLand(ctx, land.ID, plots))

	svc := newService(repo, day("2024-06-01"))
	crop, err := svc.Create(ctx, models.CreateCropRequest{UserID: "u1", Name: "Rice", PlantingDate: "2024-06-01", PlotID: plots[0].ID.Hex()})
	require.NoError(t, err)

	require.NotNil(t, crop.LandID)
	assert.Equal(t, land.ID, *crop.LandID)
	assert.Equal(t, 10.0, crop.Area)

	plot, err := repo.Plots().FindByID(ctx, plots[0].ID)
	require.NoError(t, err)
	require.NotNil(t, plot.CropID)
	assert.Equal(t, crop.ID, *plot.CropID)
	assert.Equal(t, "Rice", plot.CropName)

	byLand, err := svc.ListByLand(ctx, land.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, byLand, 1)
}

func TestUpdateRecomputesHarvestDate(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New(), day("2024-06-01"))

	crop, err := svc.Create(ctx, models.CreateCropRequest{UserID: "u1", Name: "Maize", PlantingDate: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, day("2024-08-04"), crop.ExpectedHarvestDate)

	planting := "2024-05-11"
	updated, err := svc.Update(ctx, crop.ID.Hex(), models.UpdateCropRequest{PlantingDate: &planting})
	require.NoError(t, err)
	assert.Equal(t, day("2024-08-14"), updated.ExpectedHarvestDate)

	duration := 100
	updated, err = svc.Update(ctx, crop.ID.Hex(), models.UpdateCropRequest{Duration: &duration})
	require.NoError(t, err)
	assert.Equal(t, day("2024-08-19"), updated.ExpectedHarvestDate)

	name := "Okra"
	updated, err = svc.Update(ctx, crop.ID.Hex(), models.UpdateCropRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.Duration)
	assert.Equal(t, day("2024-07-10"), updated.ExpectedHarvestDate)
}

func TestUpdateVersionConflict(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New(), day("2024-06-01"))

	crop, err := svc.Create(ctx, models.CreateCropRequest{UserID: "u1", Name: "Maize", PlantingDate: "2024-05-01"})
	require.NoError(t, err)
	base := crop.Version

	notes := "first"
	updated, err := svc.Update(ctx, crop.ID.Hex(), models.UpdateCropRequest{Notes: &notes, Version: &base})
	require.NoError(t, err)
	assert.Equal(t, base+1, updated.Version)

	stale := "second"
	_, err = svc.Update(ctx, crop.ID.Hex(), models.UpdateCropRequest{Notes: &stale, Version: &base})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestDescribe(t *testing.T) {
	svc := newService(memory.New(), day("2024-06-01"))
	crop := models.Crop{
		Name:                "Maize",
		PlantingDate:        day("2024-05-01"),
		Duration:            95,
		ExpectedHarvestDate: day("2024-08-04"),
	}

	// late evening UTC still counts as the same calendar day
	details := svc.Describe(crop, time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, 60, details.DaysElapsed)
	assert.Equal(t, 35, details.DaysRemaining)
	assert.Equal(t, 63, details.Progress)
	assert.Equal(t, models.StageFlowering, details.SuggestedStage)

	before := svc.Describe(crop, day("2024-04-20"))
	assert.Equal(t, 0, before.DaysElapsed)
	assert.Equal(t, models.StageSowing, before.SuggestedStage)

	after := svc.Describe(crop, day("2024-09-01"))
	assert.Equal(t, 0, after.DaysRemaining)
	assert.Equal(t, 100, after.Progress)
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New(), day("2024-06-01"))

	crop, err := svc.Create(ctx, models.CreateCropRequest{UserID: "u1", Name: "Tomato", PlantingDate: "2024-03-01"})
	require.NoError(t, err)

	_, err = svc.SetStage(ctx, crop.ID.Hex(), "ripening")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	staged, err := svc.SetStage(ctx, crop.ID.Hex(), models.StageFlowering)
	require.NoError(t, err)
	assert.Equal(t, models.StageFlowering, staged.CurrentStage)

	harvested, err := svc.Harvest(ctx, crop.ID.Hex(), models.HarvestCropRequest{Yield: &models.Yield{Quantity: 40, Unit: "quintal"}})
	require.NoError(t, err)
	assert.True(t, harvested.IsHarvested)
	assert.Equal(t, models.StageHarvest, harvested.CurrentStage)
	require.NotNil(t, harvested.HarvestedAt)

	_, err = svc.Harvest(ctx, crop.ID.Hex(), models.HarvestCropRequest{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	deleted, err := svc.Delete(ctx, crop.ID.Hex())
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)

	active, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, active)

	details, err := svc.Details(ctx, crop.ID.Hex())
	require.NoError(t, err)
	assert.False(t, details.IsActive)
}
