package domain

type UserRole string

const (
	UserRoleGuest UserRole = "GUEST"
	UserRoleHost  UserRole = "HOST"
	UserRoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID        int32    `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	CreatedOn string   `json:"created_on"`
}
