package lands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Store is the persistence the land service needs.
type Store interface {
	Insert(ctx context.Context, land *models.Land) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Land, error)
	ListActiveByUser(ctx context.Context, uid string) ([]models.Land, error)
	Replace(ctx context.Context, land *models.Land) error
}

// UserFinder resolves the owner of a new land.
type UserFinder interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
}

// Service manages land parcels.
type Service struct {
	store  Store
	users  UserFinder
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a land service.
func NewService(store Store, users UserFinder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, users: users, logger: logger, now: time.Now}
}

// Create registers a land for a user. The farming type defaults to the
// owner's, then to normal.
func (s *Service) Create(ctx context.Context, req models.CreateLandRequest) (*models.Land, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)

	if req.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", models.ErrInvalidInput)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	size, err := normalizeSize(req.Size)
	if err != nil {
		return nil, err
	}

	farmingType := req.FarmingType
	if farmingType == "" {
		farmingType = s.ownerFarmingType(ctx, req.UserID)
	}
	if !farmingType.Valid() {
		return nil, fmt.Errorf("%w: farmingType must be normal, organic or terrace", models.ErrInvalidInput)
	}

	now := s.now().UTC()
	land := &models.Land{
		UserID:      req.UserID,
		Name:        req.Name,
		Size:        size,
		Location:    req.Location,
		SoilType:    req.SoilType,
		WaterSource: req.WaterSource,
		FarmingType: farmingType,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, land); err != nil {
		return nil, err
	}

	s.logger.Info("land registered", zap.String("land_id", land.ID.Hex()), zap.String("uid", land.UserID))
	return land, nil
}

func (s *Service) ownerFarmingType(ctx context.Context, uid string) models.FarmingType {
	if s.users == nil {
		return models.FarmingNormal
	}
	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("owner lookup failed", zap.String("uid", uid), zap.Error(err))
		}
		return models.FarmingNormal
	}
	if user.FarmingType.Valid() {
		return user.FarmingType
	}
	return models.FarmingNormal
}

// Get loads a land by id, including soft-deleted ones.
func (s *Service) Get(ctx context.Context, id string) (*models.Land, error) {
	oid, err := models.ParseID(id, "land id")
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}

// ListByUser returns a user's active lands.
func (s *Service) ListByUser(ctx context.Context, uid string) ([]models.Land, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", models.ErrInvalidInput)
	}
	return s.store.ListActiveByUser(ctx, uid)
}

// Update applies a partial edit. Existing plots keep their stored areas.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateLandRequest) (*models.Land, error) {
	land, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", models.ErrInvalidInput)
		}
		land.Name = name
	}
	if req.Size != nil {
		size, err := normalizeSize(*req.Size)
		if err != nil {
			return nil, err
		}
		land.Size = size
	}
	if req.FarmingType != nil {
		if !req.FarmingType.Valid() {
			return nil, fmt.Errorf("%w: farmingType must be normal, organic or terrace", models.ErrInvalidInput)
		}
		land.FarmingType = *req.FarmingType
	}
	if req.Location != nil {
		land.Location = *req.Location
	}
	if req.SoilType != nil {
		land.SoilType = *req.SoilType
	}
	if req.WaterSource != nil {
		land.WaterSource = *req.WaterSource
	}
	land.UpdatedAt = s.now().UTC()

	if err := s.store.Replace(ctx, land); err != nil {
		return nil, err
	}
	return land, nil
}

// Delete soft-deletes a land. Its plots and crops are left untouched.
func (s *Service) Delete(ctx context.Context, id string) (*models.Land, error) {
	land, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	land.IsActive = false
	land.UpdatedAt = s.now().UTC()
	if err := s.store.Replace(ctx, land); err != nil {
		return nil, err
	}

	s.logger.Info("land deactivated", zap.String("land_id", land.ID.Hex()))
	return land, nil
}

func normalizeSize(size models.LandSize) (models.LandSize, error) {
	if size.Value <= 0 {
		return size, fmt.Errorf("%w: size.value must be greater than zero", models.ErrInvalidInput)
	}
	size.Unit = strings.ToLower(strings.TrimSpace(size.Unit))
	if size.Unit == "" {
		size.Unit = models.UnitAcre
	}
	if !models.ValidLandUnit(size.Unit) {
		return size, fmt.Errorf("%w: size.unit must be acre, hectare or bigha", models.ErrInvalidInput)
	}
	return size, nil
}
