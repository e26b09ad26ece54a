package models

// Role names carried in access tokens issued by the identity provider.
const (
	RoleAdmin   = "Admin"
	RoleDoctor  = "Doctor"
	RoleNurse   = "Nurse"
	RolePatient = "Patient"
)

// ClinicalRoles may confirm or reject diagnoses and manage treatment plans.
var ClinicalRoles = []string{RoleDoctor, RoleNurse, RoleAdmin}

// Roles lists every role a token may carry.
var Roles = []interface{}{RoleAdmin, RoleDoctor, RoleNurse, RolePatient}

// CurrentUser is the authenticated caller of a request.
type CurrentUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsClinician reports whether the user holds a clinical role.
func (u *CurrentUser) IsClinician() bool {
	if u == nil {
		return false
	}
	for _, role := range ClinicalRoles {
		if u.Role == role {
			return true
		}
	}
	return false
}
