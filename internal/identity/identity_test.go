package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/ajiwai-labs/internal/domain"
)

func TestMiddlewareIssuesCookie(t *testing.T) {
	var gotUser, gotSession string
	h := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotSession = SessionIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	if !strings.HasPrefix(gotUser, "anon_") {
		t.Fatalf("user id = %q, want anon_ prefix", gotUser)
	}
	if gotSession != DefaultSessionIDValue {
		t.Fatalf("session id = %q, want %q", gotSession, DefaultSessionIDValue)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != AnonCookieName || cookies[0].Value != gotUser {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
}

func TestMiddlewareReusesValidCookie(t *testing.T) {
	const existing = "anon_0123456789abcdef0123456789abcdef"
	var gotUser string
	h := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AnonCookieName, Value: existing})
	req.Header.Set(SessionHeaderName, "tab-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotUser != existing {
		t.Fatalf("user id = %q, want %q", gotUser, existing)
	}
}

func TestSanitizeSessionID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"tab-1", "tab-1"},
		{"  tab.2 ", "tab.2"},
		{"", DefaultSessionIDValue},
		{"a:b", DefaultSessionIDValue},
		{"<script>", DefaultSessionIDValue},
		{strings.Repeat("x", 129), DefaultSessionIDValue},
	}
	for _, tc := range cases {
		if got := sanitizeSessionID(tc.in); got != tc.want {
			t.Errorf("sanitizeSessionID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSessionKeySeparatesPages(t *testing.T) {
	ctx := WithIdentity(context.Background(), "anon_x", "tab")

	chat := SessionKey(ctx, domain.PageChat)
	sim := SessionKey(ctx, domain.PageSimulator)
	if chat == sim {
		t.Fatalf("chat and simulator keys collide: %q", chat)
	}
	if chat != "anon_x:tab:chat" {
		t.Fatalf("SessionKey = %q", chat)
	}
}
