package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Store is the persistence the user service needs.
type Store interface {
	Insert(ctx context.Context, user *models.User) error
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	Replace(ctx context.Context, user *models.User) error
}

// Service manages accounts keyed by the external auth UID.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a user service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Create registers a user.
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	req.FirebaseUID = strings.TrimSpace(req.FirebaseUID)
	req.Name = strings.TrimSpace(req.Name)

	switch {
	case req.FirebaseUID == "":
		return nil, fmt.Errorf("%w: firebaseUid is required", models.ErrInvalidInput)
	case req.Name == "":
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	case !req.Role.Valid():
		return nil, fmt.Errorf("%w: role must be farmer, vendor or agent", models.ErrInvalidInput)
	case req.FarmingType != "" && !req.FarmingType.Valid():
		return nil, fmt.Errorf("%w: farmingType must be normal, organic or terrace", models.ErrInvalidInput)
	}

	now := s.now().UTC()
	user := &models.User{
		FirebaseUID: req.FirebaseUID,
		Name:        req.Name,
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Role:        req.Role,
		FarmingType: req.FarmingType,
		Location:    req.Location,
		Language:    req.Language,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("uid", user.FirebaseUID), zap.String("role", string(user.Role)))
	return user, nil
}

// GetByUID loads a user.
func (s *Service) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", models.ErrInvalidInput)
	}
	return s.store.FindByUID(ctx, uid)
}

// Update applies a partial profile edit.
func (s *Service) Update(ctx context.Context, uid string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", models.ErrInvalidInput)
		}
		user.Name = name
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("%w: role must be farmer, vendor or agent", models.ErrInvalidInput)
		}
		user.Role = *req.Role
	}
	if req.FarmingType != nil {
		if !req.FarmingType.Valid() {
			return nil, fmt.Errorf("%w: farmingType must be normal, organic or terrace", models.ErrInvalidInput)
		}
		user.FarmingType = *req.FarmingType
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Language != nil {
		user.Language = *req.Language
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.store.Replace(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
