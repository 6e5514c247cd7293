package models

import (
	"math"
	"time"
)

type DocumentMetrics struct {
	WordCount             *int     `json:"word_count,omitempty"`
	CharacterCount        *int     `json:"character_count,omitempty"`
	LineCount             *int     `json:"line_count,omitempty"`
	SentenceCount         *int     `json:"sentence_count,omitempty"`
	AverageWordLength     *float64 `json:"average_word_length,omitempty"`
	AverageSentenceLength *float64 `json:"average_sentence_length,omitempty"`
	QualityIssues         []string `json:"quality_issues,omitempty"`
	ReadabilityScore      *float64 `json:"readability_score,omitempty"`
}

// ResultPayload is the structured analysis output.
// QualityScore is on a 0..10 scale.
type ResultPayload struct {
	Status          string           `json:"status"`
	Analysis        string           `json:"analysis,omitempty"`
	Suggestions     []string         `json:"suggestions,omitempty"`
	QualityScore    *float64         `json:"quality_score,omitempty"`
	DocumentMetrics *DocumentMetrics `json:"document_metrics,omitempty"`
}

// AnalysisResult is immutable once created by the backend.
type AnalysisResult struct {
	ID         string        `json:"id"`
	InputText  string        `json:"input_text,omitempty"`
	ResultJSON ResultPayload `json:"result_json"`
	Status     string        `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ProcessRequest is the synchronous analysis variant: either raw text or an
// upload id.
type ProcessRequest struct {
	Text      string `json:"text,omitempty"`
	UploadID  string `json:"upload_id,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}

// Stats summarises a result list the way the dashboard shows it.
type Stats struct {
	Total       int
	Completed   int
	Pending     int
	SuccessRate int // percent, rounded
}

// ComputeStats counts completed results; everything else is pending.
func ComputeStats(results []AnalysisResult) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		if r.Status == string(UploadStatusCompleted) {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.SuccessRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
