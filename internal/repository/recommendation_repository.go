package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cinepulse-recommendation-service/internal/models"
)

// RecommendationRepository persists ranked picks per request.
type RecommendationRepository struct {
	db *sql.DB
}

func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// SaveSnapshots stores the ranked picks of one request in a single transaction.
func (r *RecommendationRepository) SaveSnapshots(ctx context.Context, snapshots []models.RecommendationSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendation_snapshots (request_id, mood, movie_id, rank, score, fallback, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (request_id, movie_id)
		DO UPDATE SET rank = EXCLUDED.rank, score = EXCLUDED.score, generated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		if _, err := stmt.ExecContext(ctx, s.RequestID, s.Mood, s.MovieID, s.Rank, s.Score, s.Fallback); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}
	return nil
}

// GetSnapshots retrieves the ranked picks of a previous request.
func (r *RecommendationRepository) GetSnapshots(ctx context.Context, requestID string) ([]models.RecommendationSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, mood, movie_id, rank, score, fallback, generated_at
		FROM recommendation_snapshots
		WHERE request_id = $1
		ORDER BY rank
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]models.RecommendationSnapshot, 0)
	for rows.Next() {
		var s models.RecommendationSnapshot
		if err := rows.Scan(&s.ID, &s.RequestID, &s.Mood, &s.MovieID, &s.Rank, &s.Score, &s.Fallback, &s.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
