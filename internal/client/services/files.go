package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/scanpilot/internal/client/client"
	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/client/uploads"
	"github.com/dmitrijs2005/scanpilot/internal/logging"
)

// maxConcurrentRetries bounds how many uploads RetryFailed drives at once.
const maxConcurrentRetries = 4

// Lifecycle is the part of uploads.Controller the file service uses.
type Lifecycle interface {
	Upload(ctx context.Context, name string, content io.Reader) (*models.Upload, error)
	Process(ctx context.Context, uploadID, model string) (*uploads.Task, error)
	Delete(ctx context.Context, id string) error
	Cancel(id string) bool
}

// RetryResult is the outcome of re-processing one failed upload. Err is set
// when the trigger itself failed.
type RetryResult struct {
	UploadID string
	Outcome  uploads.Outcome
	Err      error
}

type FileService interface {
	UploadPath(ctx context.Context, path string) (*models.Upload, error)
	List(ctx context.Context) ([]models.Upload, error)
	Get(ctx context.Context, id string) (*models.Upload, error)
	Process(ctx context.Context, id, model string) (*uploads.Task, error)
	Delete(ctx context.Context, id string) error
	// Cancel stops following id. It reports whether a task was running.
	Cancel(id string) bool
	RetryFailed(ctx context.Context, model string) ([]RetryResult, error)
}

type fileService struct {
	client    client.Client
	lifecycle Lifecycle
	log       logging.Logger
}

func NewFileService(c client.Client, l Lifecycle, log logging.Logger) FileService {
	return &fileService{client: c, lifecycle: l, log: log}
}

// UploadPath uploads a local file under its base name.
func (s *fileService) UploadPath(ctx context.Context, path string) (*models.Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return s.lifecycle.Upload(ctx, filepath.Base(path), f)
}

func (s *fileService) List(ctx context.Context) ([]models.Upload, error) {
	return s.client.ListUploads(ctx)
}

func (s *fileService) Get(ctx context.Context, id string) (*models.Upload, error) {
	return s.client.GetUpload(ctx, id)
}

func (s *fileService) Process(ctx context.Context, id, model string) (*uploads.Task, error) {
	return s.lifecycle.Process(ctx, id, model)
}

func (s *fileService) Delete(ctx context.Context, id string) error {
	return s.lifecycle.Delete(ctx, id)
}

func (s *fileService) Cancel(id string) bool {
	return s.lifecycle.Cancel(id)
}

// RetryFailed re-triggers every failed upload concurrently and waits for
// each to settle. Per-upload failures are reported in the results; the
// returned error is only set when listing fails or ctx ends, in which case
// every task it started is cancelled before it returns.
func (s *fileService) RetryFailed(ctx context.Context, model string) ([]RetryResult, error) {
	list, err := s.client.ListUploads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	var failed []models.Upload
	for _, u := range list {
		if u.Status == models.UploadStatusFailed {
			failed = append(failed, u)
		}
	}
	if len(failed) == 0 {
		return nil, nil
	}

	// each goroutine owns one slot
	results := make([]RetryResult, len(failed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRetries)

	for i, u := range failed {
		g.Go(func() error {
			r := RetryResult{UploadID: u.ID}
			task, err := s.lifecycle.Process(gctx, u.ID, model)
			if err != nil {
				r.Err = err
			} else {
				r.Outcome, err = task.Wait(gctx)
				if err != nil {
					// nobody is waiting any more
					s.lifecycle.Cancel(u.ID)
					return err
				}
			}

			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	s.log.Info(ctx, "retried failed uploads", "count", len(failed))
	return results, nil
}
