package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/securelogin/apiv1/dbhelper"
	"github.com/securelogin/apiv1/models"
	"github.com/securelogin/apiv1/utils"
)

type sentMessage struct {
	to      string
	subject string
	body    string
}

type capturingNotifier struct {
	sends []sentMessage
	fail  bool
}

func (n *capturingNotifier) Send(to, subject, body string) error {
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sends = append(n.sends, sentMessage{to: to, subject: subject, body: body})
	return nil
}

type testServer struct {
	router   *mux.Router
	notifier *capturingNotifier
	db       *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dbhelper.InitDB(db))

	notifier := &capturingNotifier{}
	tokens := utils.NewTokenIssuer([]byte("test-secret"), time.Hour)
	flows := dbhelper.NewAuthFlows(db, notifier, tokens)

	router := mux.NewRouter()
	router.StrictSlash(true)
	CreateRoutes(router, flows, tokens)
	return &testServer{router: router, notifier: notifier, db: db}
}

func (s *testServer) post(t *testing.T, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *testServer) signup(t *testing.T, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return s.post(t, "/signup", map[string]interface{}{
		"username":        username,
		"email":           email,
		"password":        password,
		"confirmPassword": password,
	})
}

func (s *testServer) storedOtp(t *testing.T, email string) int {
	t.Helper()
	user, err := dbhelper.FindUserByEmail(s.db, email)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, user.OtpCode)
	return *user.OtpCode
}

func (s *testServer) storedResetCode(t *testing.T, email string) int {
	t.Helper()
	user, err := dbhelper.FindUserByEmail(s.db, email)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, user.ResetCode)
	return *user.ResetCode
}

func TestSignupEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.signup(t, "alice", "alice@x.com", "Str0ng!Passw0rd")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, utils.SIGNUP_SUCCESS_MESSAGE, body["message"])
	assert.Equal(t, "/login", body["redirect"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@x.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "Str0ng!Passw0rd")
	assert.NotContains(t, rec.Body.String(), "$2a$", "hash never leaves the server")
}

func TestSignupEndpoint_Rejections(t *testing.T) {
	s := newTestServer(t)
	rec := s.signup(t, "alice", "alice@x.com", "Str0ng!Passw0rd")
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{
			name: "short username",
			body: map[string]interface{}{
				"username": "bob", "email": "bob@x.com",
				"password": "Str0ng!Passw0rd", "confirmPassword": "Str0ng!Passw0rd",
			},
			status: http.StatusBadRequest,
		},
		{
			name: "password mismatch",
			body: map[string]interface{}{
				"username": "bobby", "email": "bob@x.com",
				"password": "Str0ng!Passw0rd", "confirmPassword": "Different!Pass1",
			},
			status: http.StatusBadRequest,
		},
		{
			name: "weak password",
			body: map[string]interface{}{
				"username": "bobby", "email": "bob@x.com",
				"password": "weakpw", "confirmPassword": "weakpw",
			},
			status: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: map[string]interface{}{
				"username": "different", "email": "alice@x.com",
				"password": "Str0ng!Passw0rd", "confirmPassword": "Str0ng!Passw0rd",
			},
			status: http.StatusConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.post(t, "/signup", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoginEndpoint_StatusCodes(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice", "alice@x.com", "Str0ng!Passw0rd")

	rec := s.post(t, "/login", map[string]interface{}{"email": "ghost@x.com", "password": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.post(t, "/login", map[string]interface{}{"email": "alice@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.post(t, "/login", map[string]interface{}{"email": "alice@x.com", "password": "Str0ng!Passw0rd"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, utils.OTP_SENT_MESSAGE, decodeBody(t, rec)["message"])
}

func TestLoginFlow_EndToEnd(t *testing.T) {
	s := newTestServer(t)

	rec := s.signup(t, "alice", "alice@x.com", "Str0ng!Passw0rd")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.post(t, "/login", map[string]interface{}{
		"email": "alice@x.com", "password": "Str0ng!Passw0rd",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	otp := s.storedOtp(t, "alice@x.com")

	rec = s.post(t, "/verify-otp", map[string]interface{}{"email": "alice@x.com", "otp": otp})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, utils.LOGIN_SUCCESS_MESSAGE, body["message"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	// Replaying the consumed OTP must fail.
	rec = s.post(t, "/verify-otp", map[string]interface{}{"email": "alice@x.com", "otp": otp})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.INVALID_OTP_ERROR, decodeBody(t, rec)["message"])

	// The issued token opens the gated endpoint.
	rec = s.get(t, "/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "alice", me["username"])

	rec = s.get(t, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordResetFlow_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice", "alice@x.com", "Str0ng!Passw0rd")

	rec := s.post(t, "/forgetpassword", map[string]interface{}{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Verification code sent to al***@x.com", decodeBody(t, rec)["message"])
	code := s.storedResetCode(t, "alice@x.com")

	rec = s.post(t, "/resetpassword", map[string]interface{}{
		"email": "alice@x.com", "password": "NewStr0ng!Pass1", "verificationCode": code,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Same password again: fresh code, then must-differ rejection.
	rec = s.post(t, "/forgetpassword", map[string]interface{}{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code = s.storedResetCode(t, "alice@x.com")
	rec = s.post(t, "/resetpassword", map[string]interface{}{
		"email": "alice@x.com", "password": "NewStr0ng!Pass1", "verificationCode": code,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.SAME_PASSWORD_ERROR, decodeBody(t, rec)["message"])

	// The new password logs in.
	rec = s.post(t, "/login", map[string]interface{}{
		"email": "alice@x.com", "password": "NewStr0ng!Pass1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForgetPasswordEndpoint_Failures(t *testing.T) {
	s := newTestServer(t)

	rec := s.post(t, "/forgetpassword", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.EMAIL_REQUIRED_ERROR, decodeBody(t, rec)["message"])

	rec = s.post(t, "/forgetpassword", map[string]interface{}{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmailVerificationEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice", "alice@x.com", "Str0ng!Passw0rd")

	user, err := dbhelper.FindUserByEmail(s.db, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.VerificationCode)
	code := *user.VerificationCode

	rec := s.post(t, "/emailverification", map[string]interface{}{
		"email": "alice@x.com", "verificationCode": code,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, utils.EMAIL_VERIFIED_MESSAGE, decodeBody(t, rec)["message"])

	rec = s.post(t, "/emailverification", map[string]interface{}{
		"email": "alice@x.com", "verificationCode": code,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.INVALID_CODE_ERROR, decodeBody(t, rec)["message"])
}

func TestNotifierFailureSurfacesAsServerError(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice", "alice@x.com", "Str0ng!Passw0rd")
	s.notifier.fail = true

	rec := s.post(t, "/login", map[string]interface{}{
		"email": "alice@x.com", "password": "Str0ng!Passw0rd",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, utils.SERVER_ERROR, decodeBody(t, rec)["message"])
}
