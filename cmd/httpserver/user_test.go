//go:build integration

package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/internal/integrationtest"
	"github.com/concierge-bank/backend/pkg/randompkg"
	"github.com/concierge-bank/backend/pkg/web"
)

type userData struct {
	User domain.UserWithoutPassword `json:"user,omitempty"`
}

func postJSON(t *testing.T, server http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Encoding request body error: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	return w
}

func TestUserAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	username := randompkg.Owner()
	password := randompkg.String(10)
	email := randompkg.Email()

	t.Run("Signup", func(t *testing.T) {
		w := postJSON(t, server, "/users", map[string]string{
			"username": username,
			"password": password,
			"fullname": "First Last",
			"email":    email,
		})

		if got := w.Code; got != http.StatusOK {
			t.Fatalf("Status code: got %v, want %v, body %v", got, http.StatusOK, w.Body.String())
		}

		res := web.Response{Data: &userData{}}
		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Fatalf("Decoding response body error: %v", err)
		}

		if res.AccessToken == "" || res.RefreshToken == "" {
			t.Errorf("tokens = (%q, %q), want both set", res.AccessToken, res.RefreshToken)
		}

		got := res.Data.(*userData).User
		if got.Username != username || got.Email != email {
			t.Errorf("user = %+v, want username %v and email %v", got, username, email)
		}

		if strings.Contains(w.Body.String(), "hashed_password") {
			t.Error("response leaks hashed_password")
		}
	})

	t.Run("SignupDuplicateUsername", func(t *testing.T) {
		w := postJSON(t, server, "/users", map[string]string{
			"username": username,
			"password": password,
			"fullname": "First Last",
			"email":    randompkg.Email(),
		})

		if got := w.Code; got != http.StatusConflict {
			t.Errorf("Status code: got %v, want %v", got, http.StatusConflict)
		}

		var res web.Response
		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Fatalf("Decoding response body error: %v", err)
		}

		if res.Error != domain.ErrUsernameAlreadyExists.Error() {
			t.Errorf("res.Error=%q, want %q", res.Error, domain.ErrUsernameAlreadyExists.Error())
		}
	})

	t.Run("SignupInvalidEmail", func(t *testing.T) {
		w := postJSON(t, server, "/users", map[string]string{
			"username": randompkg.Owner(),
			"password": password,
			"fullname": "First Last",
			"email":    "not-an-email",
		})

		if got := w.Code; got != http.StatusBadRequest {
			t.Errorf("Status code: got %v, want %v", got, http.StatusBadRequest)
		}

		var res web.Response
		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Fatalf("Decoding response body error: %v", err)
		}

		if res.Error != "Email must be a valid email" {
			t.Errorf("res.Error=%q, want %q", res.Error, "Email must be a valid email")
		}
	})

	t.Run("LoginAndRenew", func(t *testing.T) {
		w := postJSON(t, server, "/users/login", map[string]string{
			"username": username,
			"password": password,
		})

		if got := w.Code; got != http.StatusOK {
			t.Fatalf("Status code: got %v, want %v, body %v", got, http.StatusOK, w.Body.String())
		}

		res := web.Response{Data: &userData{}}
		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Fatalf("Decoding response body error: %v", err)
		}

		if res.AccessToken == "" || res.RefreshToken == "" {
			t.Fatalf("tokens = (%q, %q), want both set", res.AccessToken, res.RefreshToken)
		}

		w = postJSON(t, server, "/sessions", map[string]string{
			"refresh_token": res.RefreshToken,
		})

		if got := w.Code; got != http.StatusOK {
			t.Fatalf("Status code: got %v, want %v, body %v", got, http.StatusOK, w.Body.String())
		}

		var renewed struct {
			AccessToken string `json:"access_token"`
		}

		if err := json.NewDecoder(w.Body).Decode(&renewed); err != nil {
			t.Fatalf("Decoding response body error: %v", err)
		}

		if renewed.AccessToken == "" {
			t.Error("renewed access token is empty")
		}
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		w := postJSON(t, server, "/users/login", map[string]string{
			"username": username,
			"password": "wrong-password",
		})

		if got := w.Code; got != http.StatusUnauthorized {
			t.Errorf("Status code: got %v, want %v", got, http.StatusUnauthorized)
		}
	})

	t.Run("LoginUnknownUser", func(t *testing.T) {
		w := postJSON(t, server, "/users/login", map[string]string{
			"username": randompkg.Owner(),
			"password": password,
		})

		if got := w.Code; got != http.StatusNotFound {
			t.Errorf("Status code: got %v, want %v", got, http.StatusNotFound)
		}
	})
}
