package services

import "quill/models"

// CanModify is the single owner-or-staff rule used by post edit, draft
// visibility and profile edit.
func CanModify(actor *models.User, ownerID uint) bool {
	return actor != nil && (actor.ID == ownerID || actor.IsStaff)
}
