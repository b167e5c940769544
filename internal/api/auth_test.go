package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestLoginStoresToken(t *testing.T) {
	var creds Credentials
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&creds)
		w.Write([]byte(`{"token":"jwt-123","user":{"id":"u1","name":"Sam","email":"sam@example.com"}}`))
	})

	user, err := client.Login(context.Background(), Credentials{Email: "sam@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if creds.Email != "sam@example.com" || creds.Password != "pw" {
		t.Errorf("sent credentials = %+v", creds)
	}
	if user.ID != "u1" || user.Name != "Sam" {
		t.Errorf("user = %+v", user)
	}
	if got, _ := tokens.Token(); got != "jwt-123" {
		t.Errorf("stored token = %q, want jwt-123", got)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	})

	_, err := client.Login(context.Background(), Credentials{Email: "x", Password: "y"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestRegister(t *testing.T) {
	var reg Registration
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&reg)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"jwt-new","user":{"_id":"u2","name":"Ana","email":"ana@example.com"}}`))
	})

	user, err := client.Register(context.Background(), Registration{Name: "Ana", Email: "ana@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.Name != "Ana" {
		t.Errorf("sent registration = %+v", reg)
	}
	if user.ID != "u2" {
		t.Errorf("user.ID = %q, want u2", user.ID)
	}
	if got, _ := tokens.Token(); got != "jwt-new" {
		t.Errorf("stored token = %q, want jwt-new", got)
	}
}

func TestLogoutClearsTokenOnFailure(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_ = tokens.SetToken("jwt")

	if err := client.Logout(context.Background()); err == nil {
		t.Error("Logout() expected error from failing server")
	}
	if client.HasToken() {
		t.Error("token still stored after logout")
	}
}

func TestCurrentUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "enveloped", body: `{"user":{"id":"u1","name":"Sam","email":"sam@example.com"}}`},
		{name: "bare", body: `{"id":"u1","name":"Sam","email":"sam@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/api/auth/me" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})

			user, err := client.CurrentUser(context.Background())
			if err != nil {
				t.Fatalf("CurrentUser() error = %v", err)
			}
			if user.ID != "u1" || user.Email != "sam@example.com" {
				t.Errorf("user = %+v", user)
			}
		})
	}
}
