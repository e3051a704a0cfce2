package constants

import "fmt"

const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
	RoleExpert     = "expert"
)

// Error message templates for role gates
const (
	ErrOnlyAdminsCanAccess      = "Only admin may access %s."
	ErrOnlyAssignersCanAccess   = "Only admin or manager may access %s."
	ErrOnlySupervisorsCanAccess = "Only admin, manager or supervisor may access %s."
	ErrOnlyExpertsCanAccess     = "Only expert may access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorAssigner(feature string) string {
	return fmt.Sprintf(ErrOnlyAssignersCanAccess, feature)
}

func RoleErrorSupervisor(feature string) string {
	return fmt.Sprintf(ErrOnlySupervisorsCanAccess, feature)
}

func RoleErrorExpert(feature string) string {
	return fmt.Sprintf(ErrOnlyExpertsCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleManager,
		RoleSupervisor,
		RoleExpert,
	}

	// Roles that may create/cancel assignments.
	AssignerRoles = []string{
		RoleAdmin,
		RoleManager,
	}

	// Roles that may supervise submitted evaluations.
	SupervisorRoles = []string{
		RoleAdmin,
		RoleManager,
		RoleSupervisor,
	}

	// Roles that may finalize a supervised evaluation.
	// Policy decision: admin plus supervisor (see DESIGN.md).
	FinalizerRoles = []string{
		RoleAdmin,
		RoleSupervisor,
	}

	ExpertOnly = []string{
		RoleExpert,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

func IsRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
