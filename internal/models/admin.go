package models

// Factory defaults, applied on first run and by the password reset operation.
const (
	DefaultAdminName     = "Admin"
	DefaultAdminPassword = "9502"
)

type AdminData struct {
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
}
