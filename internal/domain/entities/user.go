package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	Id        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string
	Password  string
	Watchlist []string
}

func NewUser(email, password string) *User {
	now := time.Now()
	return &User{
		Id:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Email:     NormalizeEmail(email),
		Password:  password,
		Watchlist: make([]string, 0),
	}
}

// NormalizeEmail is applied to every email before it reaches a store, so
// lookups and the uniqueness check agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) validate() error {
	if u.Email == "" {
		return errors.New("email must not be empty")
	}
	if u.Password == "" {
		return errors.New("password must not be empty")
	}
	if u.CreatedAt.After(u.UpdatedAt) {
		return errors.New("created_at must be before updated_at")
	}
	return nil
}

func (u *User) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// Watching reports whether coinID is on the watchlist.
func (u *User) Watching(coinID string) bool {
	for _, id := range u.Watchlist {
		if id == coinID {
			return true
		}
	}
	return false
}

// ToggleWatch removes coinID when present and appends it otherwise.
// It returns true when coinID is watched after the call.
func (u *User) ToggleWatch(coinID string) bool {
	watching := u.Watching(coinID)
	if watching {
		kept := make([]string, 0, len(u.Watchlist))
		for _, id := range u.Watchlist {
			if id != coinID {
				kept = append(kept, id)
			}
		}
		u.Watchlist = kept
	} else {
		u.Watchlist = append(u.Watchlist, coinID)
	}
	u.UpdatedAt = time.Now()
	return !watching
}
