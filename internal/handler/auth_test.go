package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/hanriver/taxi-booking/internal/config"
	"github.com/hanriver/taxi-booking/internal/kakao"
	"github.com/hanriver/taxi-booking/internal/repository"
	"github.com/hanriver/taxi-booking/internal/utils"
)

func newAuthTestHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 14,
		BcryptCost:     bcrypt.MinCost,
	}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), kakao.New("http://127.0.0.1:1"))
	return h, mock, func() { db.Close() }
}

func newAuthContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func userRowColumns() []string {
	return []string{
		"id", "name", "email", "password_hash", "kakao_id",
		"phone_number", "profile_url", "point", "created_at", "updated_at",
	}
}

func TestSignup_CreatesUser(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Kim", "kim@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newAuthContext(t, `{"name":"Kim","email":"kim@example.com","password":"pass12!"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"created_user":"Kim"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignup_RejectsBadInput(t *testing.T) {
	h, _, done := newAuthTestHandler(t)
	defer done()

	cases := []struct {
		body string
		want string
	}{
		{`{"email":"kim@example.com","password":"pass12!"}`, "key_error"},
		{`{"name":"Kim","email":"not-an-email","password":"pass12!"}`, "invalid_email"},
		{`{"name":"Kim","email":"kim@example.com","password":"short"}`, "invalid_password"},
		{`{"name":"Kim","email":"kim@example.com","password":"aaaaaaa"}`, "invalid_password"},
		{`{"name":"K","email":"kim@example.com","password":"pass12!"}`, "invalid_name"},
	}
	for _, tc := range cases {
		c, rec := newAuthContext(t, tc.body)
		if err := h.Signup(c); err != nil {
			t.Fatalf("handler error for %s: %v", tc.body, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status for %s: got %d want 400", tc.body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Fatalf("body for %s: got %s want %s", tc.body, rec.Body.String(), tc.want)
		}
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Kim", "kim@example.com", sqlmock.AnyArg()).
		WillReturnError(errMySQL1062{})

	c, rec := newAuthContext(t, `{"name":"Kim","email":"kim@example.com","password":"pass12!"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "already_exists") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

// errMySQL1062 mimics the duplicate-key error text the MySQL driver
// produces.
type errMySQL1062 struct{}

func (errMySQL1062) Error() string { return "Error 1062: Duplicate entry" }

func TestSignin_IssuesTokenPair(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	hash, err := utils.HashPassword("pass12!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("kim@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns()).
			AddRow(10, "Kim", "kim@example.com", hash, nil, nil, nil, 0, now, now))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(10), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newAuthContext(t, `{"email":"kim@example.com","password":"pass12!"}`)
	if err := h.Signin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "access_token") || !strings.Contains(rec.Body.String(), "refresh_token") {
		t.Fatalf("token pair missing: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignin_WrongPassword(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	hash, err := utils.HashPassword("pass12!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("kim@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns()).
			AddRow(10, "Kim", "kim@example.com", hash, nil, nil, nil, 0, now, now))

	c, rec := newAuthContext(t, `{"email":"kim@example.com","password":"wrong1!"}`)
	if err := h.Signin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid_password") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSignin_UnknownEmail(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns()))

	c, rec := newAuthContext(t, `{"email":"nobody@example.com","password":"pass12!"}`)
	if err := h.Signin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid_email") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	raw := "some-raw-refresh-token"
	hash := utils.HashRefreshRaw(raw)
	mock.ExpectQuery("SELECT user_id FROM refresh_tokens WHERE token_hash=").
		WithArgs(hash, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(10))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=").
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(10), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newAuthContext(t, `{"refresh_token":"`+raw+`"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefresh_UnknownTokenIsUnauthorized(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	mock.ExpectQuery("SELECT user_id FROM refresh_tokens WHERE token_hash=").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	c, rec := newAuthContext(t, `{"refresh_token":"bogus"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401, body %s", rec.Code, rec.Body.String())
	}
}

func TestUserInfo_FallsBackToDefaultProfile(t *testing.T) {
	h, mock, done := newAuthTestHandler(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE id=").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows(userRowColumns()).
			AddRow(10, "Kim", "kim@example.com", "x", nil, nil, nil, 0, now, now))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/userinfo", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(10))
	if err := h.UserInfo(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), defaultProfileURL) {
		t.Fatalf("default profile url missing: %s", rec.Body.String())
	}
}
