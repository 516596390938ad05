package plots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Store is the persistence the plot service needs.
type Store interface {
	ReplaceForLand(ctx context.Context, landID primitive.ObjectID, plots []models.Plot) error
	ListByLand(ctx context.Context, landID primitive.ObjectID) ([]models.Plot, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Plot, error)
	Replace(ctx context.Context, plot *models.Plot) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// LandStore reads lands and keeps their plot count.
type LandStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Land, error)
	AddPlots(ctx context.Context, id primitive.ObjectID, delta int) error
}

// Service divides lands into percentage plots.
type Service struct {
	store  Store
	lands  LandStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a plot service.
func NewService(store Store, lands LandStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, lands: lands, logger: logger, now: time.Now}
}

// Divide validates the requested split and replaces every plot of the land
// with the new set.
func (s *Service) Divide(ctx context.Context, req models.DividePlotsRequest) ([]models.Plot, error) {
	landID, err := models.ParseID(req.LandID, "landId")
	if err != nil {
		return nil, err
	}

	land, err := s.lands.FindByID(ctx, landID)
	if err != nil {
		return nil, err
	}
	if !land.IsActive {
		return nil, fmt.Errorf("%w: land has been deleted", models.ErrNotFound)
	}

	if err := ValidateSplits(req.Plots, land.FarmingType.MaxPlots()); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	plots := make([]models.Plot, 0, len(req.Plots))
	for i, split := range req.Plots {
		cropID, err := models.ParseOptionalID(split.CropID, fmt.Sprintf("plots[%d].cropId", i))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(split.Name)
		if name == "" {
			name = fmt.Sprintf("Plot %d", i+1)
		}
		plots = append(plots, models.Plot{
			LandID:     land.ID,
			UserID:     land.UserID,
			Name:       name,
			CropID:     cropID,
			CropName:   strings.TrimSpace(split.CropName),
			Percentage: split.Percentage,
			Area:       AreaFor(split.Percentage, land.Size.Value),
			AreaUnit:   land.Size.Unit,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if err := s.store.ReplaceForLand(ctx, land.ID, plots); err != nil {
		return nil, err
	}

	s.logger.Info("land divided", zap.String("land_id", land.ID.Hex()), zap.Int("plots", len(plots)))
	return plots, nil
}

// ListByLand returns the plots of a land.
func (s *Service) ListByLand(ctx context.Context, landID string) ([]models.Plot, error) {
	oid, err := models.ParseID(landID, "land id")
	if err != nil {
		return nil, err
	}
	return s.store.ListByLand(ctx, oid)
}

// Get returns one plot, whatever the state of its land.
func (s *Service) Get(ctx context.Context, id string) (*models.Plot, error) {
	oid, err := models.ParseID(id, "plot id")
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}

// Update edits a single plot. A new percentage recomputes the area from the
// land; the land-wide total is not re-checked.
func (s *Service) Update(ctx context.Context, id string, req models.UpdatePlotRequest) (*models.Plot, error) {
	oid, err := models.ParseID(id, "plot id")
	if err != nil {
		return nil, err
	}
	plot, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plot.Name = strings.TrimSpace(*req.Name)
	}
	if req.CropName != nil {
		plot.CropName = strings.TrimSpace(*req.CropName)
	}
	if req.CropID != nil {
		cropID, err := models.ParseOptionalID(*req.CropID, "cropId")
		if err != nil {
			return nil, err
		}
		plot.CropID = cropID
	}
	if req.Percentage != nil {
		pct := *req.Percentage
		if pct <= 0 || pct > 100 {
			return nil, fmt.Errorf("%w: percentage must be greater than 0 and at most 100", models.ErrInvalidInput)
		}
		land, err := s.lands.FindByID(ctx, plot.LandID)
		if err != nil {
			return nil, err
		}
		plot.Percentage = pct
		plot.Area = AreaFor(pct, land.Size.Value)
		plot.AreaUnit = land.Size.Unit
	}
	plot.UpdatedAt = s.now().UTC()

	if err := s.store.Replace(ctx, plot); err != nil {
		return nil, err
	}
	return plot, nil
}

// Delete removes a plot and decrements its land's plot count in a second write.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := models.ParseID(id, "plot id")
	if err != nil {
		return err
	}
	plot, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, oid); err != nil {
		return err
	}
	if err := s.lands.AddPlots(ctx, plot.LandID, -1); err != nil {
		s.logger.Warn("plot deleted but land count not updated", zap.String("land_id", plot.LandID.Hex()), zap.Error(err))
	}
	return nil
}
