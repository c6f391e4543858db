package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zcircle/internal/avatar"
	"github.com/zarlcorp/zcircle/internal/contact"
	"github.com/zarlcorp/zcircle/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeContacts map[string]contact.Contact

func (f fakeContacts) Get(id string) (contact.Contact, error) {
	c, ok := f[id]
	if !ok {
		return contact.Contact{}, errors.New("not found")
	}
	return c, nil
}

func testServer(cfg Config) *Server {
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, testServer(Config{}), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAvatarInitials(t *testing.T) {
	rec := get(t, testServer(Config{}), "/avatar.svg?name=bob&address=125&size=50")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != svgContentType {
		t.Errorf("content type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{`width="50"`, `fill="#BF97FF"`, `>B</text>`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestAvatarNoNameIsDefaultIcon(t *testing.T) {
	rec := get(t, testServer(Config{}), "/avatar.svg")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<text") {
		t.Error("no name should render the default icon, not text")
	}
}

func TestAvatarEmptyNameIsPresent(t *testing.T) {
	rec := get(t, testServer(Config{}), "/avatar.svg?name=")

	if !strings.Contains(rec.Body.String(), ">#</text>") {
		t.Errorf("empty name should render the placeholder initial:\n%s", rec.Body.String())
	}
}

func TestAvatarThumbnailUsesLoader(t *testing.T) {
	loader := avatar.LoaderFunc(func(ref string) (string, error) {
		return "https://cdn.example.com/" + ref, nil
	})
	rec := get(t, testServer(Config{Loader: loader}), "/avatar.svg?thumbnail=a.png")

	if !strings.Contains(rec.Body.String(), `href="https://cdn.example.com/a.png"`) {
		t.Errorf("loader href missing:\n%s", rec.Body.String())
	}
}

func TestAvatarLoaderFailure(t *testing.T) {
	loader := avatar.LoaderFunc(func(string) (string, error) { return "", errors.New("gone") })
	rec := get(t, testServer(Config{Loader: loader}), "/avatar.svg?thumbnail=a.png")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAvatarThumbnailPathNotInlined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(path, []byte("TOP-SECRET-KEY"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	thumbs, err := store.Open(zfilesystem.NewMemFS(), "testpass")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer thumbs.Close()

	rec := get(t, testServer(Config{Loader: thumbs}), "/avatar.svg?thumbnail="+url.QueryEscape(path))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := rec.Body.String()
	if strings.Contains(body, "data:") || strings.Contains(body, "VE9QLVNFQ1JFVC1LRVk") {
		t.Errorf("file contents inlined:\n%s", body)
	}
	if !strings.Contains(body, `href="`+path+`"`) {
		t.Errorf("path should pass through as the href:\n%s", body)
	}
}

func TestAvatarInvalidSize(t *testing.T) {
	s := testServer(Config{})
	for _, size := range []string{"abc", "0", "-4", "99999"} {
		rec := get(t, s, "/avatar.svg?name=x&size="+size)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("size %s: status = %d, want 400", size, rec.Code)
		}
	}
}

func TestContactAvatar(t *testing.T) {
	contacts := fakeContacts{
		"c1": {ID: "c1", DisplayName: "Mobile #", Address: "124"},
	}
	rec := get(t, testServer(Config{Contacts: contacts}), "/contacts/c1/avatar.svg")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "data:image/svg+xml;base64,") {
		t.Errorf("unknown contact name should render the unknown-user asset:\n%s", rec.Body.String())
	}
}

func TestContactAvatarNotFound(t *testing.T) {
	rec := get(t, testServer(Config{Contacts: fakeContacts{}}), "/contacts/nope/avatar.svg")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestContactRoutesDisabledWithoutSource(t *testing.T) {
	rec := get(t, testServer(Config{}), "/contacts/c1/avatar.svg")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := testServer(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}
