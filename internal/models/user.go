package models

import (
	"time"
)

type UserRole string
type Role = UserRole

const (
	RoleOwner     UserRole = "owner"
	RoleAdmin     UserRole = "admin"
	RoleManager   UserRole = "manager"
	RoleRecruiter UserRole = "recruiter"
	RoleEmployee  UserRole = "employee"
)

// User mirrors a Casdoor account. It is not stored locally.
type User struct {
	ID       string   `json:"id"`
	OrgID    string   `json:"org_id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`

	AvatarURL     *string `json:"avatar_url"`
	EmailVerified bool    `json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsManager reports whether the role may assign training and read org reports.
func (r UserRole) IsManager() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager:
		return true
	}
	return false
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleRecruiter, RoleEmployee:
		return true
	}
	return false
}

var roleAudiences = map[UserRole][]Audience{
	RoleOwner:     {AudienceCSuite, AudienceAllEmployees},
	RoleAdmin:     {AudienceHRDirectors, AudienceComplianceOfficers, AudienceAllEmployees},
	RoleManager:   {AudienceHiringManagers, AudienceManagers, AudienceAllEmployees},
	RoleRecruiter: {AudienceRecruiters, AudienceTalentAcquisition, AudienceAllEmployees},
	RoleEmployee:  {AudienceAllEmployees},
}

// Audiences returns the module audiences a role belongs to. Unknown roles
// are treated as regular employees.
func (r UserRole) Audiences() []Audience {
	if a, ok := roleAudiences[r]; ok {
		return a
	}
	return roleAudiences[RoleEmployee]
}

// ReachesAudience reports whether a module targeted at audience applies to the role.
func (r UserRole) ReachesAudience(audience []string) bool {
	for _, mine := range r.Audiences() {
		for _, a := range audience {
			if a == mine {
				return true
			}
		}
	}
	return false
}
