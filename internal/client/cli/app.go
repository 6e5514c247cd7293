package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/scanpilot/internal/client/client"
	"github.com/dmitrijs2005/scanpilot/internal/client/config"
	"github.com/dmitrijs2005/scanpilot/internal/client/export"
	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/scanpilot/internal/client/services"
	"github.com/dmitrijs2005/scanpilot/internal/client/session"
	"github.com/dmitrijs2005/scanpilot/internal/client/uploads"
	"github.com/dmitrijs2005/scanpilot/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config        *config.Config
	log           logging.Logger
	authService   services.AuthService
	fileService   services.FileService
	resultService services.ResultService
	closers       []func()
	reader        *bufio.Reader

	out io.Writer

	userMu     sync.Mutex
	user       *models.User
	lastStatus map[string]models.UploadStatus
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.New(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	app := &App{
		config:     c,
		log:        log,
		reader:     bufio.NewReader(os.Stdin),
		out:        newSyncWriter(os.Stdout),
		lastStatus: map[string]models.UploadStatus{},
	}
	app.wire(db)
	return app, nil
}

func (a *App) wire(db *sql.DB) {
	c := a.config

	store := session.NewStore(
		metadata.NewSQLiteRepository(db),
		session.WithSafetyMargin(c.TokenSafetyMargin),
		session.WithLogger(a.log),
	)

	burst := max(1, int(c.RequestsPerSecond))
	api := client.NewHTTPClient(c.APIBaseURL, store,
		client.WithRequestTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestsPerSecond, burst),
		client.WithLogger(a.log),
		client.WithUnauthorizedHandler(a.onUnauthorized),
	)

	ctrl := uploads.NewController(api,
		uploads.WithPollInterval(c.PollInterval),
		uploads.WithPollTimeout(c.PollTimeout),
		uploads.WithLogger(a.log),
		uploads.WithObserver(a.onUploadEvent),
	)

	exporter := export.New(export.Options{Dir: c.ExportDir, S3: export.S3Config(c.S3)})

	a.authService = services.NewAuthService(api, store, a.log)
	a.fileService = services.NewFileService(api, ctrl, a.log)
	a.resultService = services.NewResultService(api, exporter)
	a.closers = append(a.closers, ctrl.Close, func() { _ = db.Close() })
}

// Run starts the REPL and releases everything once the user leaves.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close stops polling and closes the local database.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated(context.Background())
}

func (a *App) setUser(u *models.User) {
	a.userMu.Lock()
	defer a.userMu.Unlock()
	a.user = u
}

func (a *App) currentUser() *models.User {
	a.userMu.Lock()
	defer a.userMu.Unlock()
	return a.user
}

// onUnauthorized runs whenever the session is found missing or rejected,
// possibly from a polling goroutine. The notice is printed once per session.
func (a *App) onUnauthorized(context.Context) {
	a.userMu.Lock()
	hadUser := a.user != nil
	a.user = nil
	a.userMu.Unlock()

	if hadUser {
		a.println("Your session has ended. Please log in again.")
	}
}

// onUploadEvent prints status transitions observed while polling.
func (a *App) onUploadEvent(e uploads.Event) {
	if e.State != uploads.StatePolling || e.Upload == nil {
		return
	}

	a.userMu.Lock()
	prev, seen := a.lastStatus[e.UploadID]
	a.lastStatus[e.UploadID] = e.Upload.Status
	a.userMu.Unlock()

	if !seen || prev != e.Upload.Status {
		a.println(fmt.Sprintf("  %s: %s", e.UploadID, e.Upload.Status))
	}
}

func (a *App) forgetStatus(id string) {
	a.userMu.Lock()
	defer a.userMu.Unlock()
	delete(a.lastStatus, id)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// syncWriter serializes writes; polling goroutines print concurrently with
// the REPL.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
