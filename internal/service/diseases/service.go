package diseases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Store is the persistence the disease service needs.
type Store interface {
	Insert(ctx context.Context, disease *models.Disease) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Disease, error)
	ListByCrop(ctx context.Context, cropID primitive.ObjectID) ([]models.Disease, error)
	ListByUser(ctx context.Context, uid string) ([]models.Disease, error)
	Replace(ctx context.Context, disease *models.Disease) error
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.DiseaseStatus, at time.Time) (*models.Disease, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CropHealth reads crops and applies health deltas atomically.
type CropHealth interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Crop, error)
	AdjustHealth(ctx context.Context, id primitive.ObjectID, delta int) (*models.Crop, error)
}

// Detector classifies a leaf image.
type Detector interface {
	Detect(ctx context.Context, filename string, image io.Reader) (*models.DetectionResult, error)
}

// ErrDetectionUnavailable is returned when no classifier is configured.
var ErrDetectionUnavailable = fmt.Errorf("%w: disease detection is not configured", models.ErrUpstream)

// Service records diseases and keeps crop health in step with them.
type Service struct {
	store    Store
	crops    CropHealth
	detector Detector
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a disease service. detector may be nil.
func NewService(store Store, crops CropHealth, detector Detector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, crops: crops, detector: detector, logger: logger, now: time.Now}
}

// Create logs a disease and deducts the severity penalty from the crop.
func (s *Service) Create(ctx context.Context, req models.CreateDiseaseRequest) (*models.Disease, error) {
	cropID, err := models.ParseID(req.CropID, "cropId")
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	if !req.Severity.Valid() {
		return nil, fmt.Errorf("%w: severity must be mild, moderate, severe or critical", models.ErrInvalidInput)
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence must be between 0 and 1", models.ErrInvalidInput)
	}

	crop, err := s.crops.FindByID(ctx, cropID)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = crop.UserID
	}

	now := s.now().UTC()
	disease := &models.Disease{
		CropID:     crop.ID,
		UserID:     userID,
		Name:       name,
		Severity:   req.Severity,
		Confidence: req.Confidence,
		Symptoms:   strings.TrimSpace(req.Symptoms),
		Treatment:  strings.TrimSpace(req.Treatment),
		Pesticide:  strings.TrimSpace(req.Pesticide),
		ImageURL:   strings.TrimSpace(req.ImageURL),
		Status:     models.StatusDetected,
		DetectedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, disease); err != nil {
		return nil, err
	}

	updated, err := s.crops.AdjustHealth(ctx, crop.ID, -req.Severity.Penalty())
	if err != nil {
		// Drop the record so a retried request does not log it twice.
		fields := []zap.Field{
			zap.String("crop_id", crop.ID.Hex()),
			zap.String("disease_id", disease.ID.Hex()),
			zap.Error(err),
		}
		if delErr := s.store.Delete(ctx, disease.ID); delErr != nil {
			fields = append(fields, zap.NamedError("rollback_error", delErr))
		}
		s.logger.Error("failed to apply disease penalty", fields...)
		return nil, err
	}

	s.logger.Info("disease logged",
		zap.String("crop_id", crop.ID.Hex()),
		zap.String("severity", string(disease.Severity)),
		zap.Int("health_score", updated.HealthScore),
	)
	return disease, nil
}

// Get returns one disease record.
func (s *Service) Get(ctx context.Context, id string) (*models.Disease, error) {
	oid, err := models.ParseID(id, "disease id")
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}

// ListByCrop returns a crop's diseases, newest first.
func (s *Service) ListByCrop(ctx context.Context, cropID string) ([]models.Disease, error) {
	oid, err := models.ParseID(cropID, "crop id")
	if err != nil {
		return nil, err
	}
	return s.store.ListByCrop(ctx, oid)
}

// ListByUser returns a user's diseases, newest first.
func (s *Service) ListByUser(ctx context.Context, uid string) ([]models.Disease, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", models.ErrInvalidInput)
	}
	return s.store.ListByUser(ctx, uid)
}

// Update edits descriptive fields. Severity edits do not touch crop health.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateDiseaseRequest) (*models.Disease, error) {
	disease, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", models.ErrInvalidInput)
		}
		disease.Name = name
	}
	if req.Severity != nil {
		if !req.Severity.Valid() {
			return nil, fmt.Errorf("%w: severity must be mild, moderate, severe or critical", models.ErrInvalidInput)
		}
		disease.Severity = *req.Severity
	}
	if req.Confidence != nil {
		if *req.Confidence < 0 || *req.Confidence > 1 {
			return nil, fmt.Errorf("%w: confidence must be between 0 and 1", models.ErrInvalidInput)
		}
		disease.Confidence = *req.Confidence
	}
	if req.Symptoms != nil {
		disease.Symptoms = strings.TrimSpace(*req.Symptoms)
	}
	if req.Treatment != nil {
		disease.Treatment = strings.TrimSpace(*req.Treatment)
	}
	if req.Pesticide != nil {
		disease.Pesticide = strings.TrimSpace(*req.Pesticide)
	}
	disease.UpdatedAt = s.now().UTC()

	if err := s.store.Replace(ctx, disease); err != nil {
		return nil, err
	}
	return disease, nil
}

// UpdateStatus moves a disease through its lifecycle. Entering resolved
// restores ResolveHealthBonus to the crop exactly once.
func (s *Service) UpdateStatus(ctx context.Context, id string, next models.DiseaseStatus) (*models.Disease, error) {
	disease, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: status must be detected, treating or resolved", models.ErrInvalidInput)
	}
	if !disease.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: cannot move disease from %s to %s", models.ErrInvalidInput, disease.Status, next)
	}

	updated, err := s.store.TransitionStatus(ctx, disease.ID, disease.Status, next, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if next == models.StatusResolved {
		crop, err := s.crops.AdjustHealth(ctx, updated.CropID, models.ResolveHealthBonus)
		switch {
		case errors.Is(err, models.ErrNotFound):
			s.logger.Warn("resolved disease on missing crop", zap.String("disease_id", updated.ID.Hex()))
		case err != nil:
			return nil, err
		default:
			s.logger.Info("disease resolved",
				zap.String("crop_id", crop.ID.Hex()),
				zap.Int("health_score", crop.HealthScore),
			)
		}
	}
	return updated, nil
}

// Delete removes a record without touching crop health.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := models.ParseID(id, "disease id")
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, oid)
}

// DetectRequest carries an uploaded image.
type DetectRequest struct {
	Filename string
	Image    io.Reader
	CropID   string
	Persist  bool
}

// Detect forwards an image to the classifier. With Persist and a crop id the
// most confident finding is logged through Create.
func (s *Service) Detect(ctx context.Context, req DetectRequest) (*models.DetectionResult, error) {
	if s.detector == nil {
		return nil, ErrDetectionUnavailable
	}
	if req.Image == nil {
		return nil, fmt.Errorf("%w: image is required", models.ErrInvalidInput)
	}
	if req.Persist && strings.TrimSpace(req.CropID) == "" {
		return nil, fmt.Errorf("%w: cropId is required to persist a detection", models.ErrInvalidInput)
	}

	result, err := s.detector.Detect(ctx, req.Filename, req.Image)
	if err != nil {
		return nil, err
	}

	if !req.Persist || result.IsHealthy || len(result.Diseases) == 0 {
		return result, nil
	}

	top := result.Diseases[0]
	for _, d := range result.Diseases[1:] {
		if d.Confidence > top.Confidence {
			top = d
		}
	}
	severity := top.Severity
	if !severity.Valid() {
		severity = models.SeverityModerate
	}

	logged, err := s.Create(ctx, models.CreateDiseaseRequest{
		CropID:     req.CropID,
		Name:       top.Name,
		Severity:   severity,
		Confidence: top.Confidence,
		Symptoms:   top.Symptoms,
		Treatment:  top.Treatment,
		Pesticide:  top.Pesticide,
	})
	if err != nil {
		return nil, err
	}
	result.Logged = logged
	return result, nil
}
