package dbhelper

import (
	"errors"
	"fmt"
	"log"

	"github.com/securelogin/apiv1/models"
	"github.com/securelogin/apiv1/notify"
	"github.com/securelogin/apiv1/utils"
	"gorm.io/gorm"
)

// AuthFlows drives the signup, login and recovery state machines. Each
// method is one flow invocation: read the user row, delegate to the
// hashing, code and token helpers, persist the outcome. Emails go out
// inside the surrounding transaction, before commit, so a failed send
// rolls the code back and no code goes live silently.
type AuthFlows struct {
	db       *gorm.DB
	notifier notify.Notifier
	tokens   *utils.TokenIssuer
}

func NewAuthFlows(db *gorm.DB, notifier notify.Notifier, tokens *utils.TokenIssuer) *AuthFlows {
	return &AuthFlows{db: db, notifier: notifier, tokens: tokens}
}

// UserIdentity is the projection of a user that may leave the server.
// Never the hash, never the codes.
type UserIdentity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func identity(user *models.User) UserIdentity {
	return UserIdentity{ID: user.ID, Username: user.Username, Email: user.Email}
}

// SignupUser registers a new account and emails its verification code.
func (f *AuthFlows) SignupUser(username, email, password string) (UserIdentity, error) {
	email = utils.NormalizeEmail(email)
	if !utils.ValidEmail(email) {
		return UserIdentity{}, utils.ValidationError(utils.INVALID_EMAIL_ERROR)
	}
	if score := utils.PasswordScore(password); score < utils.MIN_PASSWORD_SCORE {
		return UserIdentity{}, utils.ValidationError(weakPasswordMessage(password, score))
	}
	var ident UserIdentity
	err := f.db.Transaction(func(tx *gorm.DB) error {
		existing, err := FindUserByEmail(tx, email)
		if err != nil {
			return utils.ServerError(err)
		}
		if existing != nil {
			return utils.ConflictError(utils.USER_EXISTS_ERROR)
		}
		existing, err = FindUserByUsername(tx, username)
		if err != nil {
			return utils.ServerError(err)
		}
		if existing != nil {
			return utils.ConflictError(utils.USERNAME_TAKEN_ERROR)
		}
		passwordHash, err := utils.HashPassword(password)
		if err != nil {
			return utils.ServerError(err)
		}
		code, expiresAt, err := utils.NewVerificationCode()
		if err != nil {
			return utils.ServerError(err)
		}
		user := models.User{
			Username:              username,
			Email:                 email,
			PasswordHash:          passwordHash,
			VerificationCode:      &code,
			VerificationExpiresAt: &expiresAt,
		}
		if err := CreateUser(tx, &user); err != nil {
			if IsDuplicateKeyError(err) {
				return utils.ConflictError(utils.USER_EXISTS_ERROR)
			}
			return utils.ServerError(err)
		}
		body := fmt.Sprintf("Welcome! Your email verification code is: %d", code)
		if err := f.notifier.Send(email, "Verify your email", body); err != nil {
			return utils.ServerError(err)
		}
		ident = identity(&user)
		return nil
	})
	if err != nil {
		return UserIdentity{}, err
	}
	return ident, nil
}

// LoginUserWithPassword checks the password and, on success, issues and
// emails a login OTP. No session token is returned here; that happens
// only after VerifyLoginOtp.
func (f *AuthFlows) LoginUserWithPassword(email, password string) error {
	email = utils.NormalizeEmail(email)
	return f.db.Transaction(func(tx *gorm.DB) error {
		user, err := FindUserByEmail(tx, email)
		if err != nil {
			return utils.ServerError(err)
		}
		if user == nil {
			return utils.NotFoundError(utils.USER_NOT_FOUND_ERROR)
		}
		ok, err := utils.ComparePasswords(user.PasswordHash, password)
		if err != nil {
			log.Printf("corrupt password hash for user %d: %v", user.ID, err)
			return utils.ServerError(err)
		}
		if !ok {
			return utils.UnauthorizedError(utils.INVALID_PASSWORD_ERROR)
		}
		code, expiresAt, err := utils.NewLoginOTP()
		if err != nil {
			return utils.ServerError(err)
		}
		if err := SetLoginOtp(tx, user.ID, code, expiresAt); err != nil {
			return utils.ServerError(err)
		}
		body := fmt.Sprintf("Your OTP for login is: %d", code)
		if err := f.notifier.Send(email, "Login OTP", body); err != nil {
			return utils.ServerError(err)
		}
		return nil
	})
}

// VerifyLoginOtp finishes the login. The OTP is cleared in the same
// conditional write that gates token issuance, so a replayed or raced
// code can never succeed twice.
func (f *AuthFlows) VerifyLoginOtp(email string, otp int) (UserIdentity, string, error) {
	email = utils.NormalizeEmail(email)
	var ident UserIdentity
	var token string
	err := f.db.Transaction(func(tx *gorm.DB) error {
		user, err := FindUserByEmail(tx, email)
		if err != nil {
			return utils.ServerError(err)
		}
		if user == nil || !utils.CodeValid(otp, user.OtpCode, user.OtpExpiresAt) {
			return utils.ValidationError(utils.INVALID_OTP_ERROR)
		}
		if err := ClearLoginOtp(tx, user.ID, otp); err != nil {
			if errors.Is(err, ErrStaleRecord) {
				return utils.ValidationError(utils.INVALID_OTP_ERROR)
			}
			return utils.ServerError(err)
		}
		token, err = f.tokens.IssueToken(user.ID, user.Email)
		if err != nil {
			return utils.ServerError(err)
		}
		ident = identity(user)
		return nil
	})
	if err != nil {
		return UserIdentity{}, "", err
	}
	return ident, token, nil
}

// ForgetPassword issues a recovery code and emails it. The returned
// confirmation message masks the address.
func (f *AuthFlows) ForgetPassword(email string) (string, error) {
	email = utils.NormalizeEmail(email)
	err := f.db.Transaction(func(tx *gorm.DB) error {
		user, err := FindUserByEmail(tx, email)
		if err != nil {
			return utils.ServerError(err)
		}
		if user == nil {
			return utils.NotFoundError(utils.USER_NOT_FOUND_ERROR)
		}
		code, expiresAt, err := utils.NewResetCode()
		if err != nil {
			return utils.ServerError(err)
		}
		if err := SetResetCode(tx, user.ID, code, expiresAt); err != nil {
			return utils.ServerError(err)
		}
		body := fmt.Sprintf("Your verification code is: %d", code)
		if err := f.notifier.Send(email, "Password Reset Verification Code", body); err != nil {
			return utils.ServerError(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Verification code sent to %s", utils.MaskEmail(email)), nil
}

// ResetPassword completes recovery. The code is checked here as well
// even when the client already verified it, and the new password must
// clear the strength gate and differ from the old one.
func (f *AuthFlows) ResetPassword(email, password string, code int) error {
	email = utils.NormalizeEmail(email)
	if score := utils.PasswordScore(password); score < utils.MIN_PASSWORD_SCORE {
		return utils.ValidationError(weakPasswordMessage(password, score))
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		user, err := FindUserByEmail(tx, email)
		if err != nil {
			return utils.ServerError(err)
		}
		if user == nil || !utils.CodeValid(code, user.ResetCode, user.ResetExpiresAt) {
			return utils.ValidationError(utils.INVALID_CODE_ERROR)
		}
		same, err := utils.ComparePasswords(user.PasswordHash, password)
		if err != nil {
			return utils.ServerError(err)
		}
		if same {
			return utils.ValidationError(utils.SAME_PASSWORD_ERROR)
		}
		passwordHash, err := utils.HashPassword(password)
		if err != nil {
			return utils.ServerError(err)
		}
		if err := UpdatePasswordClearingResetCode(tx, user.ID, code, passwordHash); err != nil {
			if errors.Is(err, ErrStaleRecord) {
				return utils.ValidationError(utils.INVALID_CODE_ERROR)
			}
			return utils.ServerError(err)
		}
		return nil
	})
}

// VerifyEmail consumes the signup verification code and marks the
// address as verified.
func (f *AuthFlows) VerifyEmail(email string, code int) error {
	email = utils.NormalizeEmail(email)
	return f.db.Transaction(func(tx *gorm.DB) error {
		user, err := FindUserByEmail(tx, email)
		if err != nil {
			return utils.ServerError(err)
		}
		if user == nil || !utils.CodeValid(code, user.VerificationCode, user.VerificationExpiresAt) {
			return utils.ValidationError(utils.INVALID_CODE_ERROR)
		}
		if err := ConsumeVerificationCode(tx, user.ID, code); err != nil {
			if errors.Is(err, ErrStaleRecord) {
				return utils.ValidationError(utils.INVALID_CODE_ERROR)
			}
			return utils.ServerError(err)
		}
		return nil
	})
}

// GetUser resolves verified token claims to the stored identity.
func (f *AuthFlows) GetUser(userID uint) (UserIdentity, error) {
	user, err := FindUserByID(f.db, userID)
	if err != nil {
		return UserIdentity{}, utils.ServerError(err)
	}
	if user == nil {
		return UserIdentity{}, utils.NotFoundError(utils.USER_NOT_FOUND_ERROR)
	}
	return identity(user), nil
}

func weakPasswordMessage(password string, score int) string {
	return fmt.Sprintf(
		"%s (%s). %s",
		utils.WEAK_PASSWORD_ERROR,
		utils.PasswordStrengthText(score),
		utils.PasswordFeedback(password),
	)
}
