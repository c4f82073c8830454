package routes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/securelogin/apiv1/dbhelper"
	"github.com/securelogin/apiv1/middlewares"
	"github.com/securelogin/apiv1/utils"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type SignupResponse struct {
	Message  string                `json:"message"`
	User     dbhelper.UserIdentity `json:"user"`
	Redirect string                `json:"redirect"`
}

type LoginSuccessResponse struct {
	Message string                `json:"message"`
	User    dbhelper.UserIdentity `json:"user"`
	Token   string                `json:"token"`
}

type MeResponse struct {
	User dbhelper.UserIdentity `json:"user"`
}

type SignupAttempt struct {
	Username        string `json:"username" validate:"required,min=5,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,max=128,eqfield=ConfirmPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type LoginAttempt struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OtpAttempt struct {
	Email string `json:"email" validate:"required,email"`
	Otp   int    `json:"otp" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetAttempt struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,max=128"`
	VerificationCode int    `json:"verificationCode" validate:"required"`
}

type EmailVerificationAttempt struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode int    `json:"verificationCode" validate:"required"`
}

type RequestBody interface {
	SignupAttempt | LoginAttempt | OtpAttempt | PasswordResetRequest |
		PasswordResetAttempt | EmailVerificationAttempt
}

func AuthRouter(s *mux.Router, flows *dbhelper.AuthFlows, tokens *utils.TokenIssuer) {
	s.HandleFunc("/signup", Signup(flows)).Methods("POST")
	s.HandleFunc("/login", Login(flows)).Methods("POST")
	s.HandleFunc("/verify-otp", VerifyOtp(flows)).Methods("POST")
	s.HandleFunc("/forgetpassword", ForgetPassword(flows)).Methods("POST")
	s.HandleFunc("/resetpassword", ResetPassword(flows)).Methods("POST")
	s.HandleFunc("/emailverification", EmailVerification(flows)).Methods("POST")
	s.HandleFunc("/me", middlewares.IsAuthorized(tokens, Me(flows))).Methods("GET")
}

// DecodeValidBody parses and validates a JSON request body.
func DecodeValidBody[B RequestBody](r *http.Request) (B, error) {
	decoder := json.NewDecoder(r.Body)
	var requestBody B
	if err := decoder.Decode(&requestBody); err != nil {
		return requestBody, err
	}
	if err := validate.Struct(requestBody); err != nil {
		return requestBody, err
	}
	return requestBody, nil
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteError logs the internal cause, if any, and sends the
// caller-safe message with the mapped status.
func WriteError(w http.ResponseWriter, err error) {
	appErr := utils.AsAppError(err)
	if appErr.Err != nil {
		log.Println(appErr.Err)
	}
	WriteJSON(w, appErr.Status, MessageResponse{Message: appErr.Message})
}

func Signup(flows *dbhelper.AuthFlows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := DecodeValidBody[SignupAttempt](r)
		if err != nil {
			WriteError(w, utils.ValidationError(signupValidationMessage(err)))
			return
		}
		user, err := flows.SignupUser(attempt.Username, attempt.Email, attempt.Password)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, SignupResponse{
			Message:  utils.SIGNUP_SUCCESS_MESSAGE,
			User:     user,
			Redirect: "/login",
		})
	}
}

func Login(flows *dbhelper.AuthFlows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := DecodeValidBody[LoginAttempt](r)
		if err != nil {
			WriteError(w, utils.ValidationError(utils.INVALID_REQUEST_ERROR))
			return
		}
		if err := flows.LoginUserWithPassword(attempt.Email, attempt.Password); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, MessageResponse{Message: utils.OTP_SENT_MESSAGE})
	}
}

func VerifyOtp(flows *dbhelper.AuthFlows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := DecodeValidBody[OtpAttempt](r)
		if err != nil {
			WriteError(w, utils.ValidationError(utils.INVALID_REQUEST_ERROR))
			return
		}
		user, token, err := flows.VerifyLoginOtp(attempt.Email, attempt.Otp)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, LoginSuccessResponse{
			Message: utils.LOGIN_SUCCESS_MESSAGE,
			User:    user,
			Token:   token,
		})
	}
}

func ForgetPassword(flows *dbhelper.AuthFlows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request, err := DecodeValidBody[PasswordResetRequest](r)
		if err != nil {
			WriteError(w, utils.ValidationError(utils.EMAIL_REQUIRED_ERROR))
			return
		}
		message, err := flows.ForgetPassword(request.Email)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, MessageResponse{Message: message})
	}
}

func ResetPassword(flows *dbhelper.AuthFlows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := DecodeValidBody[PasswordResetAttempt](r)
		if err != nil {
			WriteError(w, utils.ValidationError(utils.INVALID_REQUEST_ERROR))
			return
		}
		if err := flows.ResetPassword(attempt.Email, attempt.Password, attempt.VerificationCode); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, MessageResponse{Message: utils.PASSWORD_RESET_MESSAGE})
	}
}

func EmailVerification(flows *dbhelper.AuthFlows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := DecodeValidBody[EmailVerificationAttempt](r)
		if err != nil {
			WriteError(w, utils.ValidationError(utils.INVALID_REQUEST_ERROR))
			return
		}
		if err := flows.VerifyEmail(attempt.Email, attempt.VerificationCode); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, MessageResponse{Message: utils.EMAIL_VERIFIED_MESSAGE})
	}
}

func Me(flows *dbhelper.AuthFlows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middlewares.ClaimsFromContext(r.Context())
		if !ok {
			WriteError(w, utils.UnauthorizedError(utils.INVALID_TOKEN_ERROR))
			return
		}
		user, err := flows.GetUser(claims.UserID)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, MeResponse{User: user})
	}
}

func signupValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch {
			case fe.Field() == "Password" && fe.Tag() == "eqfield":
				return utils.PASSWORD_MISMATCH_ERROR
			case fe.Field() == "Username" && fe.Tag() == "min":
				return utils.SHORT_USERNAME_ERROR
			case fe.Field() == "Email":
				return utils.INVALID_EMAIL_ERROR
			}
		}
	}
	return utils.INVALID_REQUEST_ERROR
}
