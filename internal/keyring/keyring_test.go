package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestTokenLifecycle(t *testing.T) {
	gokeyring.MockInit()

	if _, err := GetToken(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetToken() on empty keyring error = %v, want ErrNotFound", err)
	}

	if err := SetToken("abc.def.ghi"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	got, err := GetToken()
	if err != nil {
		t.Fatalf("GetToken() error = %v", err)
	}
	if got != "abc.def.ghi" {
		t.Errorf("GetToken() = %q, want %q", got, "abc.def.ghi")
	}

	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}
	if err := DeleteToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteToken() error = %v, want ErrNotFound", err)
	}
}

func TestSetTokenEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken(""); err == nil {
		t.Error("SetToken(\"\") expected error")
	}
}

func TestTokenStore(t *testing.T) {
	gokeyring.MockInit()
	store := TokenStore{}

	token, err := store.Token()
	if err != nil || token != "" {
		t.Fatalf("Token() on empty keyring = %q, %v; want empty, nil", token, err)
	}

	if err := store.SetToken("tok"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if token, _ := store.Token(); token != "tok" {
		t.Errorf("Token() = %q, want tok", token)
	}

	if err := store.ClearToken(); err != nil {
		t.Fatalf("ClearToken() error = %v", err)
	}
	if err := store.ClearToken(); err != nil {
		t.Errorf("ClearToken() on empty keyring error = %v, want nil", err)
	}
}

func TestKeyringUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus not running"))

	if _, err := GetToken(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("GetToken() error = %v, want ErrKeyringUnavailable", err)
	}
	if IsAvailable() {
		t.Error("IsAvailable() = true with failing keyring")
	}
	if _, err := (TokenStore{}).Token(); err == nil {
		t.Error("TokenStore.Token() expected error with failing keyring")
	}
}
