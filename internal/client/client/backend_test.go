package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/scanpilot/internal/client/session"

	_ "modernc.org/sqlite"
)

const (
	testEmail    = "ann@example.com"
	testPassword = "correct-horse"
)

/*************
 * Fake backend
 *************/

type fakeBackend struct {
	mu       sync.Mutex
	token    string
	uploads  map[string]models.Upload
	nextID   int
	lastAuth string
	lastReq  string

	hits atomic.Int32
}

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		token:   mintToken(t, time.Now().Add(time.Hour)),
		uploads: map[string]models.Upload{},
	}

	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fb.mu.Lock()
			want := "Bearer " + fb.token
			fb.mu.Unlock()
			if r.Header.Get("Authorization") != want {
				detail(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != testEmail || req.Password != testPassword {
			detail(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		fb.mu.Lock()
		tok := fb.token
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: tok, TokenType: "bearer"})
	})

	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == testEmail {
			detail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeJSON(w, http.StatusOK, models.User{ID: "2", Email: req.Email, FullName: req.FullName})
	})

	mux.HandleFunc("GET /api/users/profile", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.User{ID: "1", Email: testEmail, FullName: "Ann"})
	}))

	mux.HandleFunc("PUT /api/users/profile", authed(func(w http.ResponseWriter, r *http.Request) {
		var req models.UpdateProfileRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, models.User{ID: "1", Email: testEmail, FullName: req.FullName})
	}))

	mux.HandleFunc("POST /api/uploads/{$}", authed(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			detail(w, http.StatusUnprocessableEntity, "file is required")
			return
		}
		defer f.Close()
		n, _ := io.Copy(io.Discard, f)

		fb.mu.Lock()
		fb.nextID++
		u := models.Upload{
			ID:               fmt.Sprintf("u%d", fb.nextID),
			OriginalFilename: hdr.Filename,
			FileSize:         n,
			Status:           models.UploadStatusPending,
			CreatedAt:        time.Now().UTC(),
		}
		fb.uploads[u.ID] = u
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, u)
	}))

	mux.HandleFunc("GET /api/uploads/{$}", authed(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		out := make([]models.Upload, 0, len(fb.uploads))
		for _, u := range fb.uploads {
			out = append(out, u)
		}
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	}))

	mux.HandleFunc("POST /api/uploads/process", authed(func(w http.ResponseWriter, r *http.Request) {
		var req models.ProcessFileRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		fb.mu.Lock()
		u, ok := fb.uploads[req.UploadID]
		if ok {
			u.Status = models.UploadStatusProcessing
			fb.uploads[u.ID] = u
		}
		fb.mu.Unlock()
		if !ok {
			detail(w, http.StatusNotFound, "Upload not found")
			return
		}
		writeJSON(w, http.StatusOK, models.FileProcessingResponse{UploadID: u.ID, Status: "processing", Message: "started"})
	}))

	mux.HandleFunc("GET /api/uploads/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		u, ok := fb.uploads[r.PathValue("id")]
		fb.mu.Unlock()
		if !ok {
			detail(w, http.StatusNotFound, "Upload not found")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}))

	mux.HandleFunc("DELETE /api/uploads/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		fb.mu.Lock()
		_, ok := fb.uploads[id]
		delete(fb.uploads, id)
		fb.mu.Unlock()
		if !ok {
			detail(w, http.StatusNotFound, "Upload not found")
			return
		}
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "deleted"})
	}))

	mux.HandleFunc("POST /api/results/process", authed(func(w http.ResponseWriter, r *http.Request) {
		var req models.ProcessRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		score := 8.0
		writeJSON(w, http.StatusOK, models.AnalysisResult{
			ID:         "r1",
			InputText:  req.Text,
			ResultJSON: models.ResultPayload{Status: "completed", Analysis: "ok", QualityScore: &score},
			Status:     "completed",
		})
	}))

	mux.HandleFunc("GET /api/results/{$}", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.AnalysisResult{{ID: "r1", Status: "completed"}, {ID: "r2", Status: "pending"}})
	}))

	mux.HandleFunc("GET /api/results/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AnalysisResult{ID: r.PathValue("id"), Status: "completed"})
	}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.hits.Add(1)
		fb.mu.Lock()
		fb.lastAuth = r.Header.Get("Authorization")
		fb.lastReq = r.Header.Get(RequestIDHeader)
		fb.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return fb, srv
}

// revoke makes the backend reject the currently issued token.
func (fb *fakeBackend) revoke(t *testing.T) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.token = mintToken(t, time.Now().Add(2*time.Hour))
}

/*************
 * Client wiring
 *************/

type testEnv struct {
	client        *HTTPClient
	store         *session.Store
	unauthorizedN atomic.Int32
	backend       *fakeBackend
	server        *httptest.Server
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return session.NewStore(metadata.NewSQLiteRepository(db))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fb, srv := newFakeBackend(t)
	env := &testEnv{backend: fb, server: srv, store: newTestStore(t)}
	env.client = NewHTTPClient(srv.URL+"/", env.store,
		WithRequestTimeout(5*time.Second),
		WithUnauthorizedHandler(func(context.Context) { env.unauthorizedN.Add(1) }),
	)
	return env
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	_, err := e.client.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
}
