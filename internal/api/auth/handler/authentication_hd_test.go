package authHandler

import (
	"FallWatch/internal/api/auth"
	authRepository "FallWatch/internal/api/auth/repository"
	authService "FallWatch/internal/api/auth/service"
	"FallWatch/internal/entity"
	"FallWatch/internal/middleware"
	"FallWatch/pkg/bcrypt"
	jwtPkg "FallWatch/pkg/jwt"
	"FallWatch/pkg/utils"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	xbcrypt "golang.org/x/crypto/bcrypt"
)

type memoryUsers map[string]entity.User

func (m memoryUsers) CreateUser(ctx context.Context, user entity.User) error {
	for _, u := range m {
		if u.Email == user.Email {
			return auth.ErrEmailAlreadyExists
		}
	}
	m[user.ID] = user
	return nil
}

func (m memoryUsers) GetByID(ctx context.Context, id string) (entity.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return entity.User{}, auth.ErrUserNotFound
}

func (m memoryUsers) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	for _, u := range m {
		if u.Email == email {
			return u, nil
		}
	}
	return entity.User{}, auth.ErrUserNotFound
}

type fakeRepo struct {
	users memoryUsers
}

func (r fakeRepo) NewClient(tx bool) (authRepository.Client, error) {
	return authRepository.Client{
		Users:    r.users,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv(jwtPkg.AccessTokenSecret, "handler-test-secret")

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := authService.New(log, fakeRepo{users: memoryUsers{}}, bcrypt.NewWithCost(xbcrypt.MinCost), utils.New())
	mw := middleware.New(log)

	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	New(log, svc, validator.New(), mw).Start(app.Group("/api/v1"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestSignupLoginMe(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup",
		`{"username":"carer","email":"carer@example.com","password":"correct-horse"}`, "")
	if status != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%v)", status, body)
	}
	if _, leaked := body["password"]; leaked {
		t.Error("signup response must not include the password")
	}
	userID, _ := body["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login",
		`{"email":"carer@example.com","password":"correct-horse"}`, "")
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", status, body)
	}
	token, _ := body["accessToken"].(string)
	if token == "" {
		t.Fatalf("login: expected accessToken, got %v", body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", "", token)
	if status != http.StatusOK {
		t.Fatalf("me: expected 200, got %d (%v)", status, body)
	}
	if body["id"] != userID || body["email"] != "carer@example.com" {
		t.Errorf("me: unexpected body %v", body)
	}
}

func TestSignup_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"malformed json", `{"username":`, http.StatusBadRequest, "Invalid request body"},
		{"missing email", `{"username":"carer","password":"correct-horse"}`, http.StatusBadRequest, ""},
		{"short password", `{"username":"carer","email":"carer@example.com","password":"short"}`, http.StatusBadRequest, ""},
		{"invalid email", `{"username":"carer","email":"not-an-email","password":"correct-horse"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", tt.body, "")
			if status != tt.status {
				t.Errorf("expected %d, got %d (%v)", tt.status, status, body)
			}
			if tt.errMsg != "" && body["error"] != tt.errMsg {
				t.Errorf("expected error %q, got %v", tt.errMsg, body["error"])
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	payload := `{"username":"carer","email":"carer@example.com","password":"correct-horse"}`

	if status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", payload, ""); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, body)
	}

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", payload, "")
	if status != http.StatusConflict {
		t.Errorf("expected 409, got %d", status)
	}
	if body["error"] != "Email already registered" {
		t.Errorf("unexpected error %v", body["error"])
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/api/v1/auth/signup",
		`{"username":"carer","email":"carer@example.com","password":"correct-horse"}`, "")

	for _, payload := range []string{
		`{"email":"carer@example.com","password":"wrong-horse"}`,
		`{"email":"nobody@example.com","password":"correct-horse"}`,
	} {
		status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", payload, "")
		if status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
		if body["error"] != "Invalid credentials" {
			t.Errorf("unexpected error %v", body["error"])
		}
	}
}

func TestMe_RequiresToken(t *testing.T) {
	app := newTestApp(t)

	for _, token := range []string{"", "garbage"} {
		status, body := doJSON(t, app, http.MethodGet, "/api/v1/auth/me", "", token)
		if status != http.StatusUnauthorized {
			t.Errorf("token %q: expected 401, got %d", token, status)
		}
		if body["error"] != "Unauthorized, access token invalid or expired" {
			t.Errorf("token %q: unexpected error %v", token, body["error"])
		}
	}
}
