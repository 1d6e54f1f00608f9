package user

// Roles assigned to accounts. Admins may manage the product catalog.
const (
	RoleCliente = "cliente"
	RoleAdmin   = "admin"
)

type User struct {
	ID        int    `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}
