package auth

import "github.com/lotworks/reconboard/internal/models"

// Actions checked by CanPerform. Every mutating route consults the policy
// here instead of branching on roles inline.
const (
	ActionVehicleRead   = "vehicle.read"
	ActionVehicleCreate = "vehicle.create"
	ActionVehicleUpdate = "vehicle.update"
	ActionVehicleDelete = "vehicle.delete"
	ActionNotifySend    = "notify.send"
)

// CanPerform reports whether a role is allowed to perform an action.
// Reads are open to any authenticated role; creates and updates require
// MANAGER or above; hard deletes require ADMIN.
func CanPerform(role, action string) bool {
	switch action {
	case ActionVehicleRead, ActionNotifySend:
		return role == models.RoleAdmin || role == models.RoleManager || role == models.RoleUser
	case ActionVehicleCreate, ActionVehicleUpdate:
		return role == models.RoleAdmin || role == models.RoleManager
	case ActionVehicleDelete:
		return role == models.RoleAdmin
	}
	return false
}
