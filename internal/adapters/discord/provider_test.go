package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func testConfig(tokenURL, userURL string) Config {
	return Config{
		ClientID:     "client-123",
		ClientSecret: "secret-456",
		RedirectURL:  "https://game.example/callback",
		TokenURL:     tokenURL,
		UserURL:      userURL,
	}
}

func TestLoginURL(t *testing.T) {
	p := NewProvider(http.DefaultClient, testConfig("", ""))

	raw := p.LoginURL("state-token")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad login url: %v", err)
	}

	q := parsed.Query()
	for key, want := range map[string]string{
		"client_id":     "client-123",
		"redirect_uri":  "https://game.example/callback",
		"response_type": "code",
		"scope":         "identify email",
		"state":         "state-token",
	} {
		if got := q.Get(key); got != want {
			t.Errorf("param %s: expected %q, got %q", key, want, got)
		}
	}
}

func TestExchange(t *testing.T) {
	var gotGrant, gotCode string

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotGrant = r.PostFormValue("grant_type")
		gotCode = r.PostFormValue("code")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-789",
			"token_type":   "Bearer",
			"expires_in":   604800,
		})
	}))
	defer tokenSrv.Close()

	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-789" {
			t.Errorf("expected bearer header, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "190285014",
			"username":    "bugfan",
			"global_name": "Bug Fan",
			"avatar":      "a1b2c3",
		})
	}))
	defer userSrv.Close()

	p := NewProvider(http.DefaultClient, testConfig(tokenSrv.URL, userSrv.URL))

	identity, credential, err := p.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotGrant != "authorization_code" || gotCode != "auth-code" {
		t.Errorf("token request sent grant=%q code=%q", gotGrant, gotCode)
	}
	if credential != "access-789" {
		t.Errorf("expected credential access-789, got %q", credential)
	}
	if identity.ID != "190285014" {
		t.Errorf("expected id 190285014, got %q", identity.ID)
	}
	if identity.DisplayName != "Bug Fan" {
		t.Errorf("expected global_name preferred, got %q", identity.DisplayName)
	}
	if want := "https://cdn.discordapp.com/avatars/190285014/a1b2c3.png"; identity.AvatarURL != want {
		t.Errorf("expected avatar %q, got %q", want, identity.AvatarURL)
	}
}

func TestExchange_TokenEndpointFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	p := NewProvider(http.DefaultClient, testConfig(tokenSrv.URL, "http://unused.invalid"))

	if _, _, err := p.Exchange(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error from failing token endpoint")
	}
}

func TestFetchIdentity_FallbackAvatarAndName(t *testing.T) {
	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "42",
			"username":      "plainuser",
			"discriminator": "0007",
		})
	}))
	defer userSrv.Close()

	p := NewProvider(http.DefaultClient, testConfig("http://unused.invalid", userSrv.URL))

	identity, err := p.FetchIdentity(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.DisplayName != "plainuser" {
		t.Errorf("expected username fallback, got %q", identity.DisplayName)
	}
	// 7 % 5 = 2
	if want := "https://cdn.discordapp.com/embed/avatars/2.png"; identity.AvatarURL != want {
		t.Errorf("expected default avatar %q, got %q", want, identity.AvatarURL)
	}
}

func TestFetchIdentity_MalformedProfile(t *testing.T) {
	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"username":"missing-id"}`))
	}))
	defer userSrv.Close()

	p := NewProvider(http.DefaultClient, testConfig("http://unused.invalid", userSrv.URL))

	if _, err := p.FetchIdentity(context.Background(), "tok"); err == nil {
		t.Fatal("expected error for profile without id")
	}
}
