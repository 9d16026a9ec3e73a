package domain

import dErrors "carevault/pkg/domain-errors"

// RecipientRole labels who a consent is shared with. The role is informational
// and never participates in authorization decisions.
type RecipientRole string

// Supported recipient roles.
const (
	RoleDoctor    RecipientRole = "doctor"
	RoleLab       RecipientRole = "lab"
	RoleInsurance RecipientRole = "insurance"
	RoleFamily    RecipientRole = "family"
	RoleOther     RecipientRole = "other"
)

var validRecipientRoles = map[RecipientRole]bool{
	RoleDoctor:    true,
	RoleLab:       true,
	RoleInsurance: true,
	RoleFamily:    true,
	RoleOther:     true,
}

// ParseRecipientRole constructs a RecipientRole from external input.
func ParseRecipientRole(s string) (RecipientRole, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "recipient role cannot be empty")
	}
	r := RecipientRole(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid recipient role: "+s)
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r RecipientRole) IsValid() bool {
	return validRecipientRoles[r]
}

// String returns the string representation of the role.
func (r RecipientRole) String() string {
	return string(r)
}
