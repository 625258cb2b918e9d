package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	testUser     = "admin"
	testPassword = "secret"
)

// testToken is a signed JWT the fake API issues and expects back
var testToken = func() string {
	claims := jwt.RegisteredClaims{
		Subject:   testUser,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return signed
}()

// fakeAPI serves the public and admin endpoints from in-memory collections
type fakeAPI struct {
	mu       sync.Mutex
	data     map[string][]map[string]any
	writes   []string
	payloads []map[string]any
	nextID   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{data: make(map[string][]map[string]any), nextID: 100}
}

func (f *fakeAPI) seed(collection string, rows ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[collection] = append(f.data[collection], rows...)
}

func (f *fakeAPI) rows(collection string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(make([]map[string]any, 0, len(f.data[collection])), f.data[collection]...)
}

func (f *fakeAPI) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// recorded returns the admin requests and their decoded bodies
func (f *fakeAPI) recorded() ([]string, []map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...), append([]map[string]any(nil), f.payloads...)
}

func idField(collection string) string {
	switch collection {
	case "news":
		return "news_id"
	case "games":
		return "game_id"
	case "sports":
		return "sport_id"
	default:
		return "team_id"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != testUser || body["password"] != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": testToken,
			"user":         map[string]any{"username": testUser, "role": "admin"},
		})
	})

	mux.HandleFunc("GET /api/{collection}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.rows(r.PathValue("collection")))
	})

	admin := func(next func(w http.ResponseWriter, r *http.Request, collection string)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
				return
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			f.writes = append(f.writes, r.Method+" "+r.URL.Path)
			next(w, r, r.PathValue("collection"))
		}
	}

	mux.HandleFunc("POST /api/admin/{collection}", admin(func(w http.ResponseWriter, r *http.Request, collection string) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.payloads = append(f.payloads, payload)
		f.nextID++
		row := map[string]any{idField(collection): f.nextID}
		for k, v := range payload {
			row[k] = v
		}
		f.data[collection] = append(f.data[collection], row)
		writeJSON(w, http.StatusCreated, row)
	}))

	mux.HandleFunc("PUT /api/admin/{collection}/{id}", admin(func(w http.ResponseWriter, r *http.Request, collection string) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.payloads = append(f.payloads, payload)
		for _, row := range f.data[collection] {
			if fmt.Sprint(row[idField(collection)]) == r.PathValue("id") {
				for k, v := range payload {
					row[k] = v
				}
				writeJSON(w, http.StatusOK, row)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}))

	mux.HandleFunc("DELETE /api/admin/{collection}/{id}", admin(func(w http.ResponseWriter, r *http.Request, collection string) {
		rows := f.data[collection]
		for i, row := range rows {
			if fmt.Sprint(row[idField(collection)]) == r.PathValue("id") {
				f.data[collection] = append(rows[:i:i], rows[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}))

	return mux
}

// resetFlags restores every flag of c and its subcommands to its default
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupCmdTest points the CLI at a fake API and a throwaway session file. It
// returns the buffer collecting both output streams.
func setupCmdTest(t *testing.T, api *fakeAPI) *bytes.Buffer {
	t.Helper()

	resetFlags(rootCmd)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("JIFMACTL_SESSION_PATH", filepath.Join(home, "session.yaml"))
	t.Setenv("JIFMACTL_SESSION_BACKEND", "file")
	t.Setenv("JIFMACTL_OUTPUT_COLORS", "false")
	t.Setenv("JIFMACTL_DISPLAY_TIMEZONE", "America/Fortaleza")
	t.Setenv("JIFMACTL_ADMIN_MESSAGE_TTL", "0s")

	if api != nil {
		srv := httptest.NewServer(api.handler())
		t.Cleanup(srv.Close)
		t.Setenv("JIFMACTL_API_BASE_URL", srv.URL)
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	return buf
}

// run executes the CLI with args and stdin
func run(t *testing.T, stdin io.Reader, args ...string) error {
	t.Helper()
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// login stores a session for the fake API's administrator
func login(t *testing.T) {
	t.Helper()
	if err := run(t, strings.NewReader(testPassword+"\n"), "login", "-u", testUser, "--password-stdin"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	resetFlags(rootCmd)
}
