package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hfnukal/morotasks/internal/commands"
	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoginCommand_NoOAuthClient(t *testing.T) {
	dir := t.TempDir()
	var outBuf, errBuf bytes.Buffer

	code := (&commands.LoginCmd{}).Run(context.Background(), &config.Config{Dir: dir}, nil, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	if !strings.HasPrefix(errBuf.String(), "error: oauth_client.json not found in "+dir) {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "morotasks login") {
		t.Error("setup instructions should name the login command")
	}
}

// A stored token that cannot be refreshed must start a new login instead of
// reporting "already logged in". The context is cancelled so the flow stops
// while waiting for the browser callback.
func TestLoginCommand_StaleToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"corrupt", `{not json`},
		{"no refresh token", `{"access_token":"expired","token_type":"Bearer"}`},
		{"expired without refresh token", `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, config.OAuthClientFile, testOAuthClient)
			writeFile(t, dir, config.TokenFile, tt.token)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var outBuf, errBuf bytes.Buffer
			code := (&commands.LoginCmd{}).Run(ctx, &config.Config{Dir: dir}, nil, nil, &outBuf, &errBuf)

			if outBuf.String() == "already logged in\n" {
				t.Fatal("should not report an unusable token as logged in")
			}
			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
			if !strings.Contains(errBuf.String(), "accounts.google.com") {
				t.Errorf("expected an authorization URL, got %q", errBuf.String())
			}
		})
	}
}

func TestLogoutCommand_RemovesOnlyToken(t *testing.T) {
	dir := t.TempDir()
	oauthPath := writeFile(t, dir, config.OAuthClientFile, testOAuthClient)
	tokenPath := writeFile(t, dir, config.TokenFile, `{"access_token":"test","refresh_token":"test"}`)

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LogoutCmd{}).Run(context.Background(), &config.Config{Dir: dir}, nil, nil, &outBuf, &errBuf)

	expectSuccess(t, outBuf.String(), errBuf.String(), code, "ok\n")
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token file should have been deleted")
	}
	if _, err := os.Stat(oauthPath); err != nil {
		t.Error("oauth client file must be kept")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	tests := []struct {
		quiet bool
		want  string
	}{
		{false, "not logged in\n"},
		{true, ""},
	}

	for _, tt := range tests {
		var outBuf, errBuf bytes.Buffer
		cfg := &config.Config{Dir: t.TempDir(), Quiet: tt.quiet}

		code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)
		expectSuccess(t, outBuf.String(), errBuf.String(), code, tt.want)
	}
}
