package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/scanpilot/internal/client/config"
	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/client/services"
	"github.com/dmitrijs2005/scanpilot/internal/client/uploads"
	"github.com/dmitrijs2005/scanpilot/internal/logging"
)

// ---- output / input helpers ----

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var mu sync.Mutex
	lines := []string{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		var sb strings.Builder
		for i, v := range a {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(toString(v))
		}
		lines = append(lines, sb.String())
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	default:
		return ""
	}
}

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if i >= len(pws) {
			return nil, io.EOF
		}
		pw := []byte(pws[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func newTestApp(t *testing.T, input string) (*App, *lockedBuffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	out := &lockedBuffer{}
	return &App{
		config:     cfg,
		log:        logging.Discard(),
		reader:     bufio.NewReader(strings.NewReader(input)),
		out:        out,
		lastStatus: map[string]models.UploadStatus{},
	}, out
}

// ---- fake services ----

type fakeAuth struct {
	authed bool

	regEmail, regName, regPass string
	regErr                     error

	loginEmail, loginPass string
	loginUser             *models.User
	loginErr              error

	logoutCalled bool

	profile    *models.User
	profileErr error

	update    *models.UpdateProfileRequest
	updateErr error
}

func (f *fakeAuth) Register(_ context.Context, email string, password []byte, fullName string) (*models.User, error) {
	f.regEmail, f.regPass, f.regName = email, string(password), fullName
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "new", Email: email}, nil
}

func (f *fakeAuth) Login(_ context.Context, email string, password []byte) (*models.User, error) {
	f.loginEmail, f.loginPass = email, string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.authed = true
	return f.loginUser, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	f.authed = false
	return nil
}

func (f *fakeAuth) IsAuthenticated(context.Context) bool { return f.authed }

func (f *fakeAuth) Profile(context.Context) (*models.User, error) {
	return f.profile, f.profileErr
}

func (f *fakeAuth) UpdateProfile(_ context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	f.update = &req
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.User{ID: "1", Email: "ann@example.com", FullName: req.FullName}, nil
}

// pollAPI backs a real uploads.Controller for the Process command.
type pollAPI struct {
	status models.UploadStatus
	errMsg string
}

func (p *pollAPI) UploadFile(context.Context, string, io.Reader) (*models.Upload, error) {
	return nil, io.ErrUnexpectedEOF
}
func (p *pollAPI) GetUpload(_ context.Context, id string) (*models.Upload, error) {
	return &models.Upload{ID: id, Status: p.status, ErrorMessage: p.errMsg}, nil
}
func (p *pollAPI) ProcessUpload(_ context.Context, req models.ProcessFileRequest) (*models.FileProcessingResponse, error) {
	return &models.FileProcessingResponse{UploadID: req.UploadID}, nil
}
func (p *pollAPI) DeleteUpload(context.Context, string) error { return nil }

type fakeFiles struct {
	ctrl *uploads.Controller

	uploadPath string
	uploadRet  *models.Upload
	uploadErr  error

	list    []models.Upload
	listErr error

	deleted []string

	retry    []services.RetryResult
	retryErr error
}

func newFakeFiles(t *testing.T, api *pollAPI, opts ...uploads.Option) *fakeFiles {
	t.Helper()
	opts = append([]uploads.Option{uploads.WithPollInterval(5 * time.Millisecond), uploads.WithPollTimeout(time.Second)}, opts...)
	ctrl := uploads.NewController(api, opts...)
	t.Cleanup(ctrl.Close)
	return &fakeFiles{ctrl: ctrl}
}

func (f *fakeFiles) UploadPath(_ context.Context, path string) (*models.Upload, error) {
	f.uploadPath = path
	return f.uploadRet, f.uploadErr
}
func (f *fakeFiles) List(context.Context) ([]models.Upload, error) { return f.list, f.listErr }
func (f *fakeFiles) Get(_ context.Context, id string) (*models.Upload, error) {
	return &models.Upload{ID: id}, nil
}
func (f *fakeFiles) Process(ctx context.Context, id, model string) (*uploads.Task, error) {
	return f.ctrl.Process(ctx, id, model)
}
func (f *fakeFiles) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeFiles) Cancel(id string) bool {
	if f.ctrl == nil {
		return false
	}
	return f.ctrl.Cancel(id)
}
func (f *fakeFiles) RetryFailed(context.Context, string) ([]services.RetryResult, error) {
	return f.retry, f.retryErr
}

type fakeResults struct {
	list    []models.AnalysisResult
	listErr error
	get     *models.AnalysisResult
	getID   string

	analyzeReq models.ProcessRequest
	stats      models.Stats

	exportID  string
	exportLoc string
	exportErr error
}

func (f *fakeResults) List(context.Context) ([]models.AnalysisResult, error) {
	return f.list, f.listErr
}
func (f *fakeResults) Get(_ context.Context, id string) (*models.AnalysisResult, error) {
	f.getID = id
	return f.get, nil
}
func (f *fakeResults) Analyze(_ context.Context, req models.ProcessRequest) (*models.AnalysisResult, error) {
	f.analyzeReq = req
	return &models.AnalysisResult{ID: "r9", Status: "completed", InputText: req.Text}, nil
}
func (f *fakeResults) Stats(context.Context) (models.Stats, error) { return f.stats, nil }
func (f *fakeResults) Export(_ context.Context, id string) (string, error) {
	f.exportID = id
	return f.exportLoc, f.exportErr
}
