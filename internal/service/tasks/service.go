package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Store is the persistence the task service needs.
type Store interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	ListByCrop(ctx context.Context, cropID primitive.ObjectID) ([]models.Task, error)
	ListByUser(ctx context.Context, uid string, completed *bool) ([]models.Task, error)
	Replace(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CropFinder resolves the crop a task belongs to.
type CropFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Crop, error)
}

// Service manages crop tasks.
type Service struct {
	store  Store
	crops  CropFinder
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a task service.
func NewService(store Store, crops CropFinder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, crops: crops, logger: logger, now: time.Now}
}

// Create adds a task to an existing crop.
func (s *Service) Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	cropID, err := models.ParseID(req.CropID, "cropId")
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	due, err := models.ParseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: priority must be low, medium or high", models.ErrInvalidInput)
	}

	source := req.Source
	switch source {
	case "":
		source = models.TaskSourceManual
	case models.TaskSourceManual, models.TaskSourceAI:
	default:
		return nil, fmt.Errorf("%w: source must be manual or ai", models.ErrInvalidInput)
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
	task := &models.Task{
		CropID:      crop.ID,
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		DueDate:     due,
		Priority:    priority,
		Source:      source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Debug("task created", zap.String("task_id", task.ID.Hex()), zap.String("crop_id", crop.ID.Hex()))
	return task, nil
}

// ListByCrop returns a crop's tasks by due date.
func (s *Service) ListByCrop(ctx context.Context, cropID string) ([]models.Task, error) {
	oid, err := models.ParseID(cropID, "crop id")
	if err != nil {
		return nil, err
	}
	return s.store.ListByCrop(ctx, oid)
}

// ListByUser returns a user's tasks, optionally filtered on completion.
func (s *Service) ListByUser(ctx context.Context, uid string, completed *bool) ([]models.Task, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", models.ErrInvalidInput)
	}
	return s.store.ListByUser(ctx, uid, completed)
}

// Update applies a partial edit.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", models.ErrInvalidInput)
		}
		task.Title = title
	}
	if req.DueDate != nil {
		due, err := models.ParseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, fmt.Errorf("%w: priority must be low, medium or high", models.ErrInvalidInput)
		}
		task.Priority = *req.Priority
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		task.Category = strings.TrimSpace(*req.Category)
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.store.Replace(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SetCompleted marks a task done or reopens it.
func (s *Service) SetCompleted(ctx context.Context, id string, completed bool) (*models.Task, error) {
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task.IsCompleted = completed
	if completed {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
	task.UpdatedAt = now

	if err := s.store.Replace(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := models.ParseID(id, "task id")
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, oid)
}

func (s *Service) get(ctx context.Context, id string) (*models.Task, error) {
	oid, err := models.ParseID(id, "task id")
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}
