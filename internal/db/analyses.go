package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-fit/internal/types"
)

// AnalysisSummary is a lightweight view of a recorded analysis for listing
type AnalysisSummary struct {
	ID         uuid.UUID `json:"id"`
	JobTitle   string    `json:"job_title"`
	Company    string    `json:"company"`
	JobURL     string    `json:"job_url,omitempty"`
	Score      *float64  `json:"score"`
	MatchLevel *string   `json:"match_level"`
	Degraded   bool      `json:"degraded"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalysisStore records completed analyses for auditing
type AnalysisStore struct {
	db *DB
}

// NewAnalysisStore creates an analysis store
func NewAnalysisStore(db *DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// RecordAnalysis stores an analysis. A missing or malformed AnalysisID is replaced with a new UUID.
func (s *AnalysisStore) RecordAnalysis(ctx context.Context, job types.JobPosting, analysis *types.FitAnalysis) (uuid.UUID, error) {
	if analysis == nil {
		return uuid.Nil, fmt.Errorf("analysis is nil")
	}
	id, err := uuid.Parse(analysis.AnalysisID)
	if err != nil {
		id = uuid.New()
	}

	content, err := json.Marshal(analysis)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	var level *string
	if analysis.MatchLevel != nil {
		l := string(*analysis.MatchLevel)
		level = &l
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO analyses (id, job_title, company, job_url, score, match_level, degraded, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET score = $5, match_level = $6, degraded = $7, result = $8`,
		id, job.Title, job.Company, job.URL, analysis.Score, level, analysis.Flags.Degraded(), content,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis retrieves a recorded analysis, or nil if it does not exist
func (s *AnalysisStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*types.FitAnalysis, error) {
	var content []byte
	err := s.db.pool.QueryRow(ctx, `SELECT result FROM analyses WHERE id = $1`, id).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var analysis types.FitAnalysis
	if err := json.Unmarshal(content, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &analysis, nil
}

// ListAnalyses returns the most recent analyses, newest first
func (s *AnalysisStore) ListAnalyses(ctx context.Context, limit int) ([]AnalysisSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.pool.Query(ctx,
		`SELECT id, job_title, company, job_url, score, match_level, degraded, created_at
		 FROM analyses ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var summaries []AnalysisSummary
	for rows.Next() {
		var a AnalysisSummary
		if err := rows.Scan(&a.ID, &a.JobTitle, &a.Company, &a.JobURL, &a.Score, &a.MatchLevel, &a.Degraded, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		summaries = append(summaries, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return summaries, nil
}
