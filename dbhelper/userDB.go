package dbhelper

import (
	"errors"
	"strings"
	"time"

	"github.com/securelogin/apiv1/models"
	"gorm.io/gorm"
)

// ErrStaleRecord reports a conditional update that matched no row: the
// code fields changed between the read and the write, so another
// attempt won the race or the code was already consumed.
var ErrStaleRecord = errors.New("record changed since it was read")

// FindUserByEmail returns the user or nil when no row matches.
func FindUserByEmail(tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	result := tx.Where("email = ?", email).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &user, nil
}

// FindUserByUsername returns the user or nil when no row matches.
func FindUserByUsername(tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	result := tx.Where("username = ?", username).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &user, nil
}

// FindUserByID returns the user or nil when no row matches.
func FindUserByID(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	result := tx.Where("id = ?", id).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &user, nil
}

// CreateUser inserts a new user row.
func CreateUser(tx *gorm.DB, user *models.User) error {
	return tx.Create(user).Error
}

// SetLoginOtp stores a fresh OTP pair, superseding any previous one.
func SetLoginOtp(tx *gorm.DB, userID uint, code int, expiresAt time.Time) error {
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp_code":       code,
			"otp_expires_at": expiresAt,
		}).Error
}

// ClearLoginOtp removes the OTP pair, but only if the row still holds
// the exact code the caller verified. ErrStaleRecord means a concurrent
// attempt won; the caller must treat the code as invalid.
func ClearLoginOtp(tx *gorm.DB, userID uint, code int) error {
	result := tx.Model(&models.User{}).
		Where("id = ? AND otp_code = ?", userID, code).
		Updates(map[string]interface{}{
			"otp_code":       nil,
			"otp_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}

// SetResetCode stores a fresh recovery code pair.
func SetResetCode(tx *gorm.DB, userID uint, code int, expiresAt time.Time) error {
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_code":       code,
			"reset_expires_at": expiresAt,
		}).Error
}

// UpdatePasswordClearingResetCode swaps in the new hash and consumes
// the recovery code in one conditional write.
func UpdatePasswordClearingResetCode(tx *gorm.DB, userID uint, code int, passwordHash string) error {
	result := tx.Model(&models.User{}).
		Where("id = ? AND reset_code = ?", userID, code).
		Updates(map[string]interface{}{
			"password_hash":    passwordHash,
			"reset_code":       nil,
			"reset_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}

// ConsumeVerificationCode clears the signup verification pair and marks
// the email verified, single-use.
func ConsumeVerificationCode(tx *gorm.DB, userID uint, code int) error {
	result := tx.Model(&models.User{}).
		Where("id = ? AND verification_code = ?", userID, code).
		Updates(map[string]interface{}{
			"verification_code":       nil,
			"verification_expires_at": nil,
			"email_verified":          true,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}

// IsDuplicateKeyError recognizes unique-index violations across the
// MySQL and SQLite drivers.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") || strings.Contains(msg, "UNIQUE constraint failed")
}
