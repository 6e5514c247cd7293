package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

// Client is the ScanPilot backend API as seen by the rest of the client.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Logout(ctx context.Context) error

	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)

	UploadFile(ctx context.Context, filename string, content io.Reader) (*models.Upload, error)
	ListUploads(ctx context.Context) ([]models.Upload, error)
	GetUpload(ctx context.Context, id string) (*models.Upload, error)
	ProcessUpload(ctx context.Context, req models.ProcessFileRequest) (*models.FileProcessingResponse, error)
	DeleteUpload(ctx context.Context, id string) error

	ProcessDocument(ctx context.Context, req models.ProcessRequest) (*models.AnalysisResult, error)
	ListResults(ctx context.Context) ([]models.AnalysisResult, error)
	GetResult(ctx context.Context, id string) (*models.AnalysisResult, error)
}

// TokenStore is the session slot the client reads on every request.
// session.Store implements it. GetValidToken reports a missing or expired
// token as ok=false and a failed read as an error.
type TokenStore interface {
	GetValidToken(ctx context.Context) (string, bool, error)
	SetToken(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}
