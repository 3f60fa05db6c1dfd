package models

import "strings"

// Roles reported by the backend.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultCareer is shown for non-admin users without a career on record.
const DefaultCareer = "Estudiante - Desarrollo de Software"

// User is the cached profile of the signed-in account.
type User struct {
	ID      int64  `json:"id,omitempty"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Carrera string `json:"carrera,omitempty"`
}

// DisplayName is Name, or the capitalised local part of Email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	if local == "" {
		return ""
	}
	return strings.ToUpper(local[:1]) + local[1:]
}

// RoleLabel is the subtitle shown under the user name.
func (u User) RoleLabel() string {
	if u.Role == RoleAdmin {
		return "Administrador"
	}
	if u.Carrera != "" {
		return u.Carrera
	}
	return DefaultCareer
}

// Initials are the first two characters of the name (or e-mail), upper-cased.
func (u User) Initials() string {
	src := u.Name
	if src == "" {
		src = u.Email
	}
	r := []rune(src)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}
