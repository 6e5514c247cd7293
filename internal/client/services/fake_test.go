package services

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/scanpilot/internal/client/client"
	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

// fakeClient implements client.Client for unit tests of the services.
type fakeClient struct {
	mu sync.Mutex

	// behaviour / canned results
	RegisterErr   error
	LoginErr      error
	ProfileRet    *models.User
	ProfileErr    error
	UpdateErr     error
	UploadsRet    []models.Upload
	ListErr       error
	UploadStatus  models.UploadStatus // what GetUpload reports
	ProcessErrFor map[string]error
	ResultsRet    []models.AnalysisResult
	ResultsErr    error
	AnalyzeErr    error

	// argument capture
	LastRegister models.RegisterRequest
	LastLogin    models.LoginRequest
	LastUpdate   *models.UpdateProfileRequest
	LastAnalyze  models.ProcessRequest
	LastUpload   string
	Processed    []string
	Deleted      []string
	LogoutCalls  int
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	f.LastRegister = req
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return &models.User{ID: "u-new", Email: req.Email, FullName: req.FullName}, nil
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*models.TokenResponse, error) {
	f.LastLogin = models.LoginRequest{Email: email, Password: password}
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return &models.TokenResponse{AccessToken: "a.b.c", TokenType: "bearer"}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	return nil
}

func (f *fakeClient) GetProfile(context.Context) (*models.User, error) {
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeClient) UpdateProfile(_ context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	f.LastUpdate = &req
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return &models.User{ID: "1", Email: req.Email, FullName: req.FullName}, nil
}

func (f *fakeClient) UploadFile(_ context.Context, filename string, content io.Reader) (*models.Upload, error) {
	b, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	f.LastUpload = filename
	return &models.Upload{ID: "new", OriginalFilename: filename, FileSize: int64(len(b)), Status: models.UploadStatusPending}, nil
}

func (f *fakeClient) ListUploads(context.Context) ([]models.Upload, error) {
	return f.UploadsRet, f.ListErr
}

func (f *fakeClient) GetUpload(_ context.Context, id string) (*models.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.Upload{ID: id, Status: f.UploadStatus}, nil
}

func (f *fakeClient) ProcessUpload(_ context.Context, req models.ProcessFileRequest) (*models.FileProcessingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ProcessErrFor[req.UploadID]; err != nil {
		return nil, err
	}
	f.Processed = append(f.Processed, req.UploadID)
	return &models.FileProcessingResponse{UploadID: req.UploadID, Status: "processing"}, nil
}

func (f *fakeClient) DeleteUpload(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, id)
	return nil
}

func (f *fakeClient) ProcessDocument(_ context.Context, req models.ProcessRequest) (*models.AnalysisResult, error) {
	f.LastAnalyze = req
	if f.AnalyzeErr != nil {
		return nil, f.AnalyzeErr
	}
	return &models.AnalysisResult{ID: "r-new", InputText: req.Text, Status: "completed"}, nil
}

func (f *fakeClient) ListResults(context.Context) ([]models.AnalysisResult, error) {
	return f.ResultsRet, f.ResultsErr
}

func (f *fakeClient) GetResult(_ context.Context, id string) (*models.AnalysisResult, error) {
	if f.ResultsErr != nil {
		return nil, f.ResultsErr
	}
	for _, r := range f.ResultsRet {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, &client.RequestError{Status: 404, Message: "Result not found"}
}

type fakeSession struct{ authed bool }

func (s fakeSession) IsAuthenticated(context.Context) bool { return s.authed }
