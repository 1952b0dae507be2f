package careteam

import (
	"github.com/wellness/portal/internal/domain/goal"
)

// DirectoryEntry is one row of the compact provider directory.
type DirectoryEntry struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// PatientData is a patient record together with its goals, newest first.
type PatientData struct {
	ID               string       `json:"_id"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Age              *int         `json:"age,omitempty"`
	Gender           string       `json:"gender,omitempty"`
	HealthConditions []string     `json:"healthConditions"`
	ProfileComplete  bool         `json:"profileComplete"`
	Goals            []*goal.Goal `json:"goals"`
}

// Assignment describes a patient after a provider has been assigned.
type Assignment struct {
	ID                   string `json:"_id"`
	Name                 string `json:"name"`
	AssignedProvider     string `json:"assignedProvider"`
	AssignedProviderName string `json:"assignedProviderName"`
}

type PatientRequest struct {
	UserID string `json:"userId"`
}

type IllnessRequest struct {
	UserID  string `json:"userId"`
	Illness string `json:"illness"`
}

type AssignRequest struct {
	PatientID  string `json:"patientId"`
	ProviderID string `json:"providerId"`
}
