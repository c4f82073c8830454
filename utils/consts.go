package utils

// one-time code windows (minutes) and ranges
const OTP_DURATION = 5
const RESET_CODE_DURATION = 60

const OTP_MIN = 1000
const OTP_MAX = 9999
const RESET_CODE_MIN = 100000
const RESET_CODE_MAX = 999999

// password policy
const MIN_PASSWORD_LENGTH = 12
const MIN_PASSWORD_SCORE = 3
const HASH_ROUNDS = 10

// success messages
const SIGNUP_SUCCESS_MESSAGE = "User registered successfully"
const LOGIN_SUCCESS_MESSAGE = "Login successful"
const OTP_SENT_MESSAGE = "OTP sent to your email"
const PASSWORD_RESET_MESSAGE = "Password reset successfully"
const EMAIL_VERIFIED_MESSAGE = "Email verified successfully"

// error messages
const INVALID_REQUEST_ERROR = "We couldn't read that request. Please check the fields and try again!"
const SHORT_USERNAME_ERROR = "Username must be at least 5 characters long"
const INVALID_EMAIL_ERROR = "That doesn't look like a valid email address"
const EMAIL_REQUIRED_ERROR = "Email is required"
const PASSWORD_MISMATCH_ERROR = "Passwords do not match"
const WEAK_PASSWORD_ERROR = "Password is not strong enough"
const USER_EXISTS_ERROR = "User already exists"
const USERNAME_TAKEN_ERROR = "Someone is already using that username! Please choose a different one!"
const USER_NOT_FOUND_ERROR = "User not found"
const INVALID_PASSWORD_ERROR = "Invalid password"
const INVALID_OTP_ERROR = "Invalid or expired OTP"
const INVALID_CODE_ERROR = "Invalid or expired verification code"
const SAME_PASSWORD_ERROR = "New password must be different from the old password"
const MISSING_TOKEN_ERROR = "Access denied"
const INVALID_TOKEN_ERROR = "Invalid token"
const SERVER_ERROR = "Server error"
