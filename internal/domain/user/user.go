package user

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"

	DefaultCountry = "Deutschland"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postalCode"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is what anonymous callers may see about a user.
type PublicProfile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}

// NormalizeEmail is the identity key: emails compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

// ProfileUpdate is sparse: nil keeps the stored value.
type ProfileUpdate struct {
	FirstName  *string `json:"firstName" binding:"omitempty,max=80"`
	LastName   *string `json:"lastName" binding:"omitempty,max=80"`
	Phone      *string `json:"phone" binding:"omitempty,max=40"`
	Address    *string `json:"address" binding:"omitempty,max=200"`
	City       *string `json:"city" binding:"omitempty,max=80"`
	PostalCode *string `json:"postalCode" binding:"omitempty,max=20"`
	Country    *string `json:"country" binding:"omitempty,max=80"`
}

// Apply merges the update into u and keeps FullName in sync.
func (p ProfileUpdate) Apply(u User) User {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}

	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Phone, p.Phone)
	set(&u.Address, p.Address)
	set(&u.City, p.City)
	set(&u.PostalCode, p.PostalCode)
	set(&u.Country, p.Country)

	u.FullName = JoinName(u.FirstName, u.LastName)
	return u
}
