package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/scanpilot/internal/client/client"
	"github.com/dmitrijs2005/scanpilot/internal/client/export"
	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

type ResultService interface {
	List(ctx context.Context) ([]models.AnalysisResult, error)
	Get(ctx context.Context, id string) (*models.AnalysisResult, error)
	// Analyze runs the synchronous analysis of raw text or of an upload.
	Analyze(ctx context.Context, req models.ProcessRequest) (*models.AnalysisResult, error)
	Stats(ctx context.Context) (models.Stats, error)
	// Export fetches result id and hands it to the configured exporter.
	Export(ctx context.Context, id string) (string, error)
}

type resultService struct {
	client   client.Client
	exporter export.Exporter
}

func NewResultService(c client.Client, e export.Exporter) ResultService {
	return &resultService{client: c, exporter: e}
}

func (s *resultService) List(ctx context.Context) ([]models.AnalysisResult, error) {
	return s.client.ListResults(ctx)
}

func (s *resultService) Get(ctx context.Context, id string) (*models.AnalysisResult, error) {
	return s.client.GetResult(ctx, id)
}

func (s *resultService) Analyze(ctx context.Context, req models.ProcessRequest) (*models.AnalysisResult, error) {
	req.Text = strings.TrimSpace(req.Text)
	res, err := s.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return res, nil
}

func (s *resultService) Stats(ctx context.Context) (models.Stats, error) {
	list, err := s.client.ListResults(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return models.ComputeStats(list), nil
}

func (s *resultService) Export(ctx context.Context, id string) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("%w: export is not configured", client.ErrValidation)
	}
	res, err := s.client.GetResult(ctx, id)
	if err != nil {
		return "", err
	}
	loc, err := s.exporter.Export(ctx, res)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", id, err)
	}
	return loc, nil
}
