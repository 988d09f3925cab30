package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.vokalia.id/voicecheck/internal/types"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["npm"] != "npm001" || body["password"] != "rahasia" {
			t.Errorf("credentials not forwarded: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "jwt-abc",
			"user":  types.User{NPM: "npm001", Nama: "Budi", Role: "member"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Login(context.Background(), "npm001", "rahasia")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "jwt-abc" || res.User.NPM != "npm001" {
		t.Errorf("result = %+v", res)
	}
}

func TestLoginFillsMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user": types.User{NPM: "npm001", Nama: "Budi"},
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Login(context.Background(), "npm001", "x")
	if err != nil {
		t.Fatal(err)
	}
	if res.Token == "" {
		t.Error("client must supply a pass-through token when the backend omits one")
	}
}

func TestLoginNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).Login(context.Background(), "npm001", "bad"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestRegisterUnreachableBackend(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.Register(context.Background(), types.User{NPM: "npm001", Nama: "Budi", Password: "x", Role: "member"})
	if err == nil {
		t.Fatal("expected transport error")
	}
}
