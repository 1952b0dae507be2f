package auth

import (
	"strings"

	"github.com/wellness/portal/internal/platform/apperr"
)

// Action names an operation guarded by the access policy.
type Action string

const (
	ActionProfileRead       Action = "profile.read"
	ActionProfileUpdate     Action = "profile.update"
	ActionGoalList          Action = "goal.list"
	ActionGoalCreate        Action = "goal.create"
	ActionGoalUpdate        Action = "goal.update"
	ActionGoalDelete        Action = "goal.delete"
	ActionProviderList      Action = "provider.list"
	ActionProviderGet       Action = "provider.get"
	ActionProviderDirectory Action = "provider.directory"
	ActionPatientRead       Action = "patient.read"
	ActionPatientIllnessAdd Action = "patient.illness.add"
	ActionPatientAssignProv Action = "patient.provider.assign"
)

// Rule is one row of the policy table. Empty Roles admits any
// authenticated caller.
type Rule struct {
	Roles        []Role
	RequireOwner bool
	DenyMessage  string
}

// Resource describes the target of an action. OwnerID is only consulted by
// rules with RequireOwner.
type Resource struct {
	OwnerID string
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
	Code    string `json:"code,omitempty"`
}

// Err converts a deny decision into an authorization error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.Forbidden(d.Code, d.Reason)
}

// PolicyOptions holds the deployment-specific policy switches.
type PolicyOptions struct {
	// RestrictPatientAdmin limits patient.read, patient.illness.add and
	// patient.provider.assign to providers. Off by default.
	RestrictPatientAdmin bool
}

// Policy is a stateless rule table evaluated per call.
type Policy struct {
	rules map[Action]Rule
}

// NewPolicy builds the portal rule table.
func NewPolicy(opts PolicyOptions) *Policy {
	patientOnly := []Role{RolePatient}

	var patientAdmin []Role
	if opts.RestrictPatientAdmin {
		patientAdmin = []Role{RoleProvider}
	}

	return &Policy{rules: map[Action]Rule{
		ActionProfileRead:       {RequireOwner: true, DenyMessage: "Not authorized to view this profile"},
		ActionProfileUpdate:     {RequireOwner: true, DenyMessage: "Not authorized to update this profile"},
		ActionGoalList:          {Roles: patientOnly},
		ActionGoalCreate:        {Roles: patientOnly},
		ActionGoalUpdate:        {Roles: patientOnly, RequireOwner: true, DenyMessage: "Not authorized to update this goal"},
		ActionGoalDelete:        {Roles: patientOnly, RequireOwner: true, DenyMessage: "Not authorized to delete this goal"},
		ActionProviderList:      {},
		ActionProviderGet:       {},
		ActionProviderDirectory: {},
		ActionPatientRead:       {Roles: patientAdmin},
		ActionPatientIllnessAdd: {Roles: patientAdmin},
		ActionPatientAssignProv: {Roles: patientAdmin},
	}}
}

// AuthorizeRole evaluates only the role gate of an action. It is used at
// routing time, before the target resource has been loaded.
func (p *Policy) AuthorizeRole(caller Identity, action Action) Decision {
	rule, ok := p.rules[action]
	if !ok {
		return Decision{Allowed: false, Reason: "no policy for " + string(action), Code: apperr.CodeInsufficientRole}
	}
	if len(rule.Roles) == 0 {
		return Decision{Allowed: true, Reason: "authenticated"}
	}
	for _, r := range rule.Roles {
		if caller.Role == r {
			return Decision{Allowed: true, Reason: "role " + string(r)}
		}
	}
	return Decision{
		Allowed: false,
		Reason:  "Access denied: allowed roles: " + joinRoles(rule.Roles),
		Code:    apperr.CodeInsufficientRole,
	}
}

// Authorize evaluates the full rule for an action against a loaded resource.
func (p *Policy) Authorize(caller Identity, action Action, res Resource) Decision {
	d := p.AuthorizeRole(caller, action)
	if !d.Allowed {
		return d
	}
	rule := p.rules[action]
	if rule.RequireOwner && (res.OwnerID == "" || res.OwnerID != caller.ID) {
		msg := rule.DenyMessage
		if msg == "" {
			msg = "not authorized"
		}
		return Decision{Allowed: false, Reason: msg, Code: apperr.CodeNotOwner}
	}
	return d
}

func joinRoles(roles []Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
