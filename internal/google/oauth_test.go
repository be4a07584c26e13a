package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeAccount(t *testing.T) {
	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"plain name", "acme", "acme"},
		{"hyphenated", "acme-support", "acme-support"},
		{"email style", "ops@acme.example", "ops@acme.example"},
		{"path separators replaced", "acme/eu", "acme_eu"},
		{"backslash replaced", "acme\\eu", "acme_eu"},
		{"parent traversal neutralized", "../acme", "__acme"},
		{"empty falls back to default", "", "default"},
		{"whitespace trimmed", "  acme  ", "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeAccount(tt.account); got != tt.want {
				t.Errorf("sanitizeAccount(%q) = %q, want %q", tt.account, got, tt.want)
			}
		})
	}
}

func TestTokenFileForAccount(t *testing.T) {
	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"tenant account", "acme", "google-acme.token"},
		{"default account", "default", "google-default.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenFileForAccount(tt.account)
			if filepath.Base(got) != tt.want {
				t.Errorf("tokenFileForAccount() = %v, want base %v", got, tt.want)
			}
			if !strings.Contains(got, cacheDirName) {
				t.Errorf("tokenFileForAccount() = %v, want path under %s cache dir", got, cacheDirName)
			}
		})
	}
}

func TestHasTokenForAccount(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if HasTokenForAccount("acme") {
		t.Error("HasTokenForAccount() should return false when no token file exists")
	}

	tokenFile := tokenFileForAccount("acme")
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tokenFile, []byte("access refresh"), 0600); err != nil {
		t.Fatal(err)
	}

	if !HasTokenForAccount("acme") {
		t.Error("HasTokenForAccount() should return true once a token file exists")
	}
	if HasTokenForAccount("other") {
		t.Error("HasTokenForAccount() should not see another account's token")
	}
}

func TestGetTokenSourceForAccount_InvalidFormat(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	tokenFile := tokenFileForAccount("acme")
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tokenFile, []byte("only-one-field"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := GetTokenSourceForAccount(context.Background(), "acme"); err == nil {
		t.Error("GetTokenSourceForAccount() should reject a malformed token file")
	}
}

func TestGetTokenSourceForAccount_Missing(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if _, err := GetTokenSourceForAccount(context.Background(), "acme"); err == nil {
		t.Error("GetTokenSourceForAccount() should fail when no token is stored")
	}
}

func TestGetOAuthConfig(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "")

	conf := GetOAuthConfig()

	if conf.ClientID != "client-id" {
		t.Errorf("ClientID = %q, want value from environment", conf.ClientID)
	}
	if conf.ClientSecret != "client-secret" {
		t.Errorf("ClientSecret = %q, want value from environment", conf.ClientSecret)
	}
	if conf.RedirectURL != "urn:ietf:wg:oauth:2.0:oob" {
		t.Errorf("RedirectURL = %q, want OOB fallback", conf.RedirectURL)
	}

	foundCalendar := false
	for _, scope := range conf.Scopes {
		if strings.Contains(scope, "gmail") || strings.Contains(scope, "drive") {
			t.Errorf("scope %q goes beyond calendar access", scope)
		}
		if strings.Contains(scope, "calendar") {
			foundCalendar = true
		}
	}
	if !foundCalendar {
		t.Error("OAuth config should request a calendar scope")
	}
}

func TestGetAuthURLForAccount(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")

	url := GetAuthURLForAccount("acme")
	if url == "" {
		t.Fatal("GetAuthURLForAccount() returned empty URL")
	}
	if !strings.Contains(url, "state-acme") {
		t.Errorf("auth URL %q should carry the account in its state", url)
	}
}
