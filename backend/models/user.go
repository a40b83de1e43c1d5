package models

import (
	"time"

	"gorm.io/gorm"
)

// PrimaryAdminUsername is the reserved account seeded at startup.
// It can never be deleted.
const PrimaryAdminUsername = "admin"

type User struct {
	gorm.Model
	Username     string `gorm:"size:80;unique;not null"`
	PasswordHash string `gorm:"size:256;not null"`
	IsAdmin      bool   `gorm:"default:false;not null"`
	ExpireDate   *time.Time
}

// AccessExpired reports whether the account's access window has closed.
// Access stays valid through the end of the expiration date's UTC day,
// which gives every account a one-day grace past the stored instant.
func (u *User) AccessExpired(now time.Time) bool {
	if u.ExpireDate == nil {
		return false
	}
	y, m, d := u.ExpireDate.UTC().Date()
	endOfDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return !now.UTC().Before(endOfDay)
}

// RemainingDays returns the number of whole days of access left, or nil
// for permanent accounts. Never negative.
func (u *User) RemainingDays(now time.Time) *int {
	if u.ExpireDate == nil {
		return nil
	}
	days := int(u.ExpireDate.UTC().Sub(now.UTC()).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

func (u *User) IsPrimaryAdmin() bool {
	return u.Username == PrimaryAdminUsername
}
