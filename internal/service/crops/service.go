package crops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/catalog"
	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Store is the persistence the crop service needs.
type Store interface {
	Insert(ctx context.Context, crop *models.Crop) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Crop, error)
	ListActiveByUser(ctx context.Context, uid string) ([]models.Crop, error)
	ListActiveByLand(ctx context.Context, landID primitive.ObjectID) ([]models.Crop, error)
	Replace(ctx context.Context, crop *models.Crop) error
}

// LandFinder checks the land a crop is planted on.
type LandFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Land, error)
}

// PlotLinker links a crop to the plot hosting it.
type PlotLinker interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Plot, error)
	AssignCrop(ctx context.Context, plotID, cropID primitive.ObjectID, cropName string) error
}

// Service manages crops and their derived dates.
type Service struct {
	store   Store
	lands   LandFinder
	plots   PlotLinker
	catalog *catalog.Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a crop service.
func NewService(store Store, lands LandFinder, plots PlotLinker, cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Service{store: store, lands: lands, plots: plots, catalog: cat, logger: logger, now: time.Now}
}

// Create registers a crop. The expected harvest date is the planting date
// plus the requested duration, else the catalog duration, else 90 days.
func (s *Service) Create(ctx context.Context, req models.CreateCropRequest) (*models.Crop, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)

	if req.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", models.ErrInvalidInput)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	if req.Duration < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", models.ErrInvalidInput)
	}
	planting, err := models.ParseDate(req.PlantingDate)
	if err != nil {
		return nil, err
	}

	landID, err := models.ParseOptionalID(req.LandID, "landId")
	if err != nil {
		return nil, err
	}
	plotID, err := models.ParseOptionalID(req.PlotID, "plotId")
	if err != nil {
		return nil, err
	}

	if landID != nil {
		land, err := s.lands.FindByID(ctx, *landID)
		if err != nil {
			return nil, err
		}
		if land.UserID != req.UserID {
			return nil, fmt.Errorf("%w: land belongs to another user", models.ErrInvalidInput)
		}
	}
	if plotID != nil {
		plot, err := s.plots.FindByID(ctx, *plotID)
		if err != nil {
			return nil, err
		}
		if landID == nil {
			landID = &plot.LandID
		} else if plot.LandID != *landID {
			return nil, fmt.Errorf("%w: plot is not on the given land", models.ErrInvalidInput)
		}
		if req.Area == 0 {
			req.Area = plot.Area
		}
	}

	duration := req.Duration
	if duration == 0 {
		duration, _ = s.catalog.DurationFor(req.Name)
	}

	now := s.now().UTC()
	crop := &models.Crop{
		UserID:              req.UserID,
		LandID:              landID,
		PlotID:              plotID,
		Name:                req.Name,
		Variety:             strings.TrimSpace(req.Variety),
		PlantingDate:        planting,
		Duration:            duration,
		ExpectedHarvestDate: models.HarvestDate(planting, duration),
		CurrentStage:        models.StageSowing,
		HealthScore:         models.MaxHealthScore,
		Area:                req.Area,
		IsActive:            true,
		Notes:               req.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.Insert(ctx, crop); err != nil {
		return nil, err
	}

	if plotID != nil {
		if err := s.plots.AssignCrop(ctx, *plotID, crop.ID, crop.Name); err != nil {
			s.logger.Warn("crop created but plot link failed", zap.String("crop_id", crop.ID.Hex()), zap.Error(err))
		}
	}

	s.logger.Info("crop registered",
		zap.String("crop_id", crop.ID.Hex()),
		zap.String("name", crop.Name),
		zap.Int("duration", crop.Duration))
	return crop, nil
}

// ListByUser returns a user's active crops.
func (s *Service) ListByUser(ctx context.Context, uid string) ([]models.Crop, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", models.ErrInvalidInput)
	}
	return s.store.ListActiveByUser(ctx, uid)
}

// ListByLand returns the active crops of a land.
func (s *Service) ListByLand(ctx context.Context, landID string) ([]models.Crop, error) {
	oid, err := models.ParseID(landID, "land id")
	if err != nil {
		return nil, err
	}
	return s.store.ListActiveByLand(ctx, oid)
}

// Get loads a crop.
func (s *Service) Get(ctx context.Context, id string) (*models.Crop, error) {
	oid, err := models.ParseID(id, "crop id")
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}

// Details loads a crop with its day counters computed against the current day.
func (s *Service) Details(ctx context.Context, id string) (*models.CropDetails, error) {
	crop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	details := s.Describe(*crop, s.now())
	return &details, nil
}

// Describe computes the read-time fields of a crop as of now. Days are
// counted between UTC calendar days.
func (s *Service) Describe(crop models.Crop, now time.Time) models.CropDetails {
	elapsed := models.DaysBetween(crop.PlantingDate, now)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := models.DaysBetween(now, crop.ExpectedHarvestDate)
	if remaining < 0 {
		remaining = 0
	}

	progress := 100
	if crop.Duration > 0 && elapsed < crop.Duration {
		progress = elapsed * 100 / crop.Duration
	}
	if crop.IsHarvested {
		remaining = 0
		progress = 100
	}

	return models.CropDetails{
		Crop:           crop,
		DaysElapsed:    elapsed,
		DaysRemaining:  remaining,
		Progress:       progress,
		SuggestedStage: s.catalog.StageFor(crop.Name, models.DaysBetween(crop.PlantingDate, now), crop.Duration),
	}
}

// Update applies a partial edit. The expected harvest date is recomputed when
// the planting date or duration change.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateCropRequest) (*models.Crop, error) {
	crop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != crop.Version {
		return nil, fmt.Errorf("%w: crop has version %d, request was based on %d", models.ErrConflict, crop.Version, *req.Version)
	}

	recompute := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", models.ErrInvalidInput)
		}
		if !strings.EqualFold(name, crop.Name) && req.Duration == nil {
			if duration, found := s.catalog.DurationFor(name); found {
				crop.Duration = duration
				recompute = true
			}
		}
		crop.Name = name
	}
	if req.PlantingDate != nil {
		planting, err := models.ParseDate(*req.PlantingDate)
		if err != nil {
			return nil, err
		}
		crop.PlantingDate = planting
		recompute = true
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, fmt.Errorf("%w: duration must be greater than zero", models.ErrInvalidInput)
		}
		crop.Duration = *req.Duration
		recompute = true
	}
	if req.Variety != nil {
		crop.Variety = strings.TrimSpace(*req.Variety)
	}
	if req.Area != nil {
		if *req.Area < 0 {
			return nil, fmt.Errorf("%w: area must not be negative", models.ErrInvalidInput)
		}
		crop.Area = *req.Area
	}
	if req.Notes != nil {
		crop.Notes = *req.Notes
	}
	if recompute {
		crop.ExpectedHarvestDate = models.HarvestDate(crop.PlantingDate, crop.Duration)
	}

	return s.save(ctx, crop)
}

// Harvest marks a crop harvested.
func (s *Service) Harvest(ctx context.Context, id string, req models.HarvestCropRequest) (*models.Crop, error) {
	crop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if crop.IsHarvested {
		return nil, fmt.Errorf("%w: crop is already harvested", models.ErrInvalidInput)
	}

	harvestedAt := s.now().UTC()
	if req.HarvestedAt != "" {
		if harvestedAt, err = models.ParseDate(req.HarvestedAt); err != nil {
			return nil, err
		}
	}
	if req.Yield != nil && req.Yield.Quantity < 0 {
		return nil, fmt.Errorf("%w: yield must not be negative", models.ErrInvalidInput)
	}

	crop.IsHarvested = true
	crop.HarvestedAt = &harvestedAt
	crop.CurrentStage = models.StageHarvest
	crop.Yield = req.Yield
	return s.save(ctx, crop)
}

// SetStage moves a crop to another growth stage.
func (s *Service) SetStage(ctx context.Context, id string, stage models.Stage) (*models.Crop, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: unknown stage %q", models.ErrInvalidInput, stage)
	}
	crop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	crop.CurrentStage = stage
	return s.save(ctx, crop)
}

// Delete soft-deletes a crop.
func (s *Service) Delete(ctx context.Context, id string) (*models.Crop, error) {
	crop, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	crop.IsActive = false
	return s.save(ctx, crop)
}

func (s *Service) save(ctx context.Context, crop *models.Crop) (*models.Crop, error) {
	crop.UpdatedAt = s.now().UTC()
	if err := s.store.Replace(ctx, crop); err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("crop update lost a race", zap.String("crop_id", crop.ID.Hex()))
		}
		return nil, err
	}
	return crop, nil
}
