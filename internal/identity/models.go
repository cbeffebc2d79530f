package identity

import (
	"strings"
	"time"
	"unicode"
)

// Status is the admin-controlled lifecycle state of a user account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ResultRecord is an append-only entry in a user's result history.
type ResultRecord struct {
	Name        string    `json:"name"`
	Institution string    `json:"institution"`
	Date        time.Time `json:"date"`
}

// User is an identity awaiting or granted system access. Users are never
// hard-deleted.
type User struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastname"`
	Email         string `json:"email"`       // stored lowercased
	PhoneNumber   string `json:"phoneNumber"` // stored trimmed; uniqueness is on cleaned digits
	Organization  string `json:"organization"`
	WorkingDomain string `json:"workingDomain"`
	Status        Status `json:"status"`
	// RejectionReason is non-empty exactly when Status is rejected; approval
	// clears it unconditionally.
	RejectionReason string         `json:"rejectionReason,omitempty"`
	Results         []ResultRecord `json:"lastResults"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// DisplayName is what user-facing listings show: first name, falling back to
// the email for accounts registered without one.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}

// Profile is the redacted projection exposed to other users. It never carries
// status, phone, or the OTP challenge.
type Profile struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Registered is the redacted view returned on registration.
type Registered struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status Status `json:"status"`
}

// PendingUser is the admin-facing projection of an unapproved registration.
// The OTP challenge and credentials are deliberately absent.
type PendingUser struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstname"`
	LastName      string    `json:"lastname"`
	Email         string    `json:"email"`
	WorkingDomain string    `json:"workingDomain"`
	Organization  string    `json:"organization"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// StatusSummary is the admin-facing view returned from approve/reject.
type StatusSummary struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstname"`
	LastName        string `json:"lastname"`
	Email           string `json:"email"`
	Status          Status `json:"status"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// NormalizeEmail lowercases and trims an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PhoneDigits strips everything but digits. Uniqueness and the minimum-length
// rule both operate on this cleaned form so "+1 (234) 567-8901" and
// "12345678901" collide.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
