package enum

// Role is an operator role
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCashier Role = "CASHIER"
)

// IsValid reports whether the role is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCashier
}
