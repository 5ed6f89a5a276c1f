package contextkeys

type contextKey string

const (
	UserIDKey      contextKey = "UserID"
	UserRoleKey    contextKey = "UserRole"
	UserNameKey    contextKey = "UserName"
	InstituteIDKey contextKey = "InstituteID"
)
