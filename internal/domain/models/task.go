package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task sources.
const (
	TaskSourceManual = "manual"
	TaskSourceAI     = "ai"
)

// Task is a dated to-do item attached to a crop.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CropID      primitive.ObjectID `bson:"cropId" json:"cropId"`
	UserID      string             `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	DueDate     time.Time          `bson:"dueDate" json:"dueDate"`
	Priority    Priority           `bson:"priority" json:"priority"`
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Source      string             `bson:"source" json:"source"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateTaskRequest adds a task to a crop.
type CreateTaskRequest struct {
	CropID      string   `json:"cropId"`
	UserID      string   `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	DueDate     string   `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Source      string   `json:"source"`
}

// UpdateTaskRequest carries a partial task edit.
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	DueDate     *string   `json:"dueDate"`
	Priority    *Priority `json:"priority"`
}

// CompleteTaskRequest toggles completion; a missing body completes the task.
type CompleteTaskRequest struct {
	Completed *bool `json:"completed"`
}
