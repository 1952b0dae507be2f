package goal

import (
	"time"

	"github.com/wellness/portal/pkg/patch"
)

type Category string

const (
	CategoryFitness      Category = "fitness"
	CategoryNutrition    Category = "nutrition"
	CategoryMentalHealth Category = "mental_health"
	CategorySleep        Category = "sleep"
	CategoryOther        Category = "other"
)

var validCategories = map[Category]bool{
	CategoryFitness:      true,
	CategoryNutrition:    true,
	CategoryMentalHealth: true,
	CategorySleep:        true,
	CategoryOther:        true,
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusAbandoned Status = "abandoned"
)

var validStatuses = map[Status]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusPaused:    true,
	StatusAbandoned: true,
}

// Goal is a patient-owned wellness target. UserID is fixed at creation.
type Goal struct {
	ID           string     `bson:"_id" json:"_id"`
	UserID       string     `bson:"user" json:"user"`
	Title        string     `bson:"title" json:"title"`
	Description  string     `bson:"description" json:"description"`
	Category     Category   `bson:"category" json:"category"`
	TargetValue  *float64   `bson:"targetValue,omitempty" json:"targetValue,omitempty"`
	CurrentValue float64    `bson:"currentValue" json:"currentValue"`
	Unit         string     `bson:"unit" json:"unit"`
	StartDate    time.Time  `bson:"startDate" json:"startDate"`
	EndDate      *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Status       Status     `bson:"status" json:"status"`
	Progress     float64    `bson:"progress" json:"progress"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// CreateInput is the body accepted by POST /goals. Owner, progress and
// status are never taken from the client at creation.
type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	TargetValue *float64   `json:"targetValue"`
	Unit        string     `json:"unit"`
	EndDate     *time.Time `json:"endDate"`
}

// Patch is the body accepted by PUT /goals/:id. Only fields present in the
// JSON document are applied, zero values included.
type Patch struct {
	Title        patch.Optional[string]     `json:"title"`
	Description  patch.Optional[string]     `json:"description"`
	Category     patch.Optional[Category]   `json:"category"`
	TargetValue  patch.Optional[*float64]   `json:"targetValue"`
	CurrentValue patch.Optional[*float64]   `json:"currentValue"`
	Unit         patch.Optional[string]     `json:"unit"`
	StartDate    patch.Optional[*time.Time] `json:"startDate"`
	EndDate      patch.Optional[*time.Time] `json:"endDate"`
	Status       patch.Optional[Status]     `json:"status"`
}

// TouchesProgress reports whether applying p requires a progress recompute.
func (p Patch) TouchesProgress() bool {
	return p.CurrentValue.Set || p.TargetValue.Set
}
