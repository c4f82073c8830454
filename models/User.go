package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the single durable entity of the service. Which optional code
// pair is populated encodes where the account currently sits in the
// login, recovery and email-verification flows; the pairs are kept
// separate so the flows can never clobber each other's codes.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:64"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string

	// Login second factor, present only between a successful password
	// check and OTP verification.
	OtpCode      *int
	OtpExpiresAt *time.Time

	// Password recovery code, single-use.
	ResetCode      *int
	ResetExpiresAt *time.Time

	// Email ownership proof, issued at signup.
	VerificationCode      *int
	VerificationExpiresAt *time.Time
	EmailVerified         bool
}
