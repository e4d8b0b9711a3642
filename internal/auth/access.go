package auth

import "github.com/baharkarakas/publishing-backend/internal/models"

var (
	Admins     = models.NewRoleSet(models.RoleAdmin)
	Authors    = models.NewRoleSet(models.RoleAuthor)
	Moderators = models.NewRoleSet(models.RoleModerator)
)

// Authorize allows iff role is a member of required.
func Authorize(role models.Role, required models.RoleSet) error {
	if required.Has(role) {
		return nil
	}
	return &models.ForbiddenError{Required: required}
}
