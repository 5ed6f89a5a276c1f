package constants

// --- КОДЫ РОЛЕЙ (Совпадает с кодами в таблице roles) ---
const (
	RoleLibrarian          = "librarian"
	RoleTechnician         = "technician"
	RoleElectrician        = "electrician"
	RolePlumber            = "plumber"
	RoleClerk              = "clerk"
	RoleRegistrar          = "registrar"
	RolePrincipal          = "principal"
	RoleWorkshopInstructor = "workshop_instructor"
	RoleLabAssistant       = "lab_assistant"
	RoleAsstStore          = "asst_store"
)

var AllowedRoles = []string{
	RoleLibrarian, RoleTechnician, RoleElectrician, RolePlumber, RoleClerk,
	RoleRegistrar, RolePrincipal, RoleWorkshopInstructor, RoleLabAssistant, RoleAsstStore,
}

func IsAllowedRole(code string) bool {
	for _, r := range AllowedRoles {
		if r == code {
			return true
		}
	}
	return false
}

// --- ПРИОРИТЕТЫ ЗАЯВОК ---
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var AllowedPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func IsAllowedPriority(code string) bool {
	for _, p := range AllowedPriorities {
		if p == code {
			return true
		}
	}
	return false
}
