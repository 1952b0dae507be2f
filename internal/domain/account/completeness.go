package account

import (
	"fmt"
	"strings"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
	"github.com/wellness/portal/pkg/patch"
)

// MergePolicy decides how a profile patch combines with stored fields.
type MergePolicy string

const (
	// MergeFallback keeps the stored value whenever the incoming one is
	// absent or falsy (0, "", null).
	MergeFallback MergePolicy = "fallback"
	// MergePresence applies every field present in the patch, zero values
	// and null included.
	MergePresence MergePolicy = "presence"
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(s)) {
	case MergeFallback, "":
		return MergeFallback, nil
	case MergePresence:
		return MergePresence, nil
	}
	return "", fmt.Errorf("unknown profile merge policy %q", s)
}

// Completeness is the one-way profile state. There is no transition from
// Complete back to Incomplete.
type Completeness uint8

const (
	Incomplete Completeness = iota
	Complete
)

// Advance moves to Complete when satisfied and otherwise stays put.
func (c Completeness) Advance(satisfied bool) Completeness {
	if c == Complete || satisfied {
		return Complete
	}
	return Incomplete
}

func (c Completeness) String() string {
	if c == Complete {
		return "complete"
	}
	return "incomplete"
}

func completenessOf(u *User) Completeness {
	if u.ProfileComplete {
		return Complete
	}
	return Incomplete
}

// ProfilePatch is the body of PUT /api/data/profile. Fields that do not
// belong to the caller's role are ignored. licenseNumber is fixed at
// registration and has no field here.
type ProfilePatch struct {
	Name             patch.Optional[string]   `json:"name"`
	Age              patch.Optional[*int]     `json:"age"`
	Gender           patch.Optional[string]   `json:"gender"`
	HealthConditions patch.Optional[[]string] `json:"healthConditions"`

	Specialization    patch.Optional[string] `json:"specialization"`
	YearsOfExperience patch.Optional[*int]   `json:"yearsOfExperience"`
	Bio               patch.Optional[string] `json:"bio"`
}

// RequiredFieldsPresent reports whether u carries the fields its role needs
// for a complete profile.
func RequiredFieldsPresent(u *User) bool {
	switch u.Role {
	case auth.RolePatient:
		return u.Age != nil && *u.Age != 0 && u.Gender != ""
	case auth.RoleProvider:
		return u.Specialization != "" && u.LicenseNumber != ""
	}
	return false
}

// Evaluator merges profile patches and derives the completeness flag.
type Evaluator struct {
	policy MergePolicy
}

func NewEvaluator(policy MergePolicy) *Evaluator {
	if policy == "" {
		policy = MergeFallback
	}
	return &Evaluator{policy: policy}
}

func (e *Evaluator) Policy() MergePolicy { return e.policy }

// Evaluate returns a copy of current with in merged and ProfileComplete
// derived from the merged fields. current is not modified and nothing is
// persisted.
func (e *Evaluator) Evaluate(current *User, in ProfilePatch) (*User, error) {
	merged := *current
	if current.HealthConditions != nil {
		merged.HealthConditions = append([]string(nil), current.HealthConditions...)
	}

	if e.policy == MergePresence && in.Name.Set && strings.TrimSpace(in.Name.Value) == "" {
		return nil, apperr.Validation("Name cannot be empty")
	}
	merged.Name = e.mergeString(merged.Name, in.Name)

	switch merged.Role {
	case auth.RolePatient:
		merged.Age = e.mergeInt(merged.Age, in.Age)
		merged.Gender = e.mergeString(merged.Gender, in.Gender)
		if in.HealthConditions.Set && (in.HealthConditions.Value != nil || e.policy == MergePresence) {
			merged.HealthConditions = normalizeConditions(in.HealthConditions.Value)
		}
	case auth.RoleProvider:
		merged.Specialization = e.mergeString(merged.Specialization, in.Specialization)
		merged.YearsOfExperience = e.mergeInt(merged.YearsOfExperience, in.YearsOfExperience)
		merged.Bio = e.mergeString(merged.Bio, in.Bio)
	}

	merged.ProfileComplete = completenessOf(current).Advance(RequiredFieldsPresent(&merged)) == Complete
	return &merged, nil
}

func (e *Evaluator) mergeString(cur string, in patch.Optional[string]) string {
	if !in.Set {
		return cur
	}
	if e.policy == MergeFallback && in.Value == "" {
		return cur
	}
	return in.Value
}

func (e *Evaluator) mergeInt(cur *int, in patch.Optional[*int]) *int {
	if !in.Set {
		return cur
	}
	if e.policy == MergeFallback && (in.Value == nil || *in.Value == 0) {
		return cur
	}
	return in.Value
}

// normalizeConditions drops blanks and duplicates, keeping first-seen order.
func normalizeConditions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
