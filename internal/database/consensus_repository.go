package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/consilium-ai/consilium-go/internal/models"
)

// DatabasePool is the subset of pool operations the repository needs. It is
// satisfied by both pgxpool.Pool and pgxmock.
type DatabasePool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// ConsensusRepository persists the decision history. The full decision is
// stored as a JSON document alongside a few indexed columns; the document is
// the source of truth when reading back.
type ConsensusRepository struct {
	pool DatabasePool
}

func NewConsensusRepository(pool DatabasePool) *ConsensusRepository {
	return &ConsensusRepository{pool: pool}
}

// Insert records one consensus decision.
func (r *ConsensusRepository) Insert(ctx context.Context, decision *models.ConsensusDecision) error {
	doc, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to encode consensus decision: %w", err)
	}

	query := `
		INSERT INTO consensus_decisions (id, produced_at, overall_signal, conviction_level, risk_level, execution_priority, decision)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		decision.ID,
		decision.ProducedAt,
		string(decision.OverallSignal),
		decision.ConvictionLevel.InexactFloat64(),
		decision.RiskLevel.InexactFloat64(),
		string(decision.ExecutionPriority),
		doc,
	)
	if err != nil {
		return fmt.Errorf("failed to insert consensus decision: %w", err)
	}
	return nil
}

// Latest returns the most recent decision, or pgx.ErrNoRows when the history
// is empty.
func (r *ConsensusRepository) Latest(ctx context.Context) (*models.ConsensusDecision, error) {
	query := `
		SELECT decision FROM consensus_decisions
		ORDER BY produced_at DESC
		LIMIT 1
	`

	var doc []byte
	if err := r.pool.QueryRow(ctx, query).Scan(&doc); err != nil {
		return nil, err
	}

	var decision models.ConsensusDecision
	if err := json.Unmarshal(doc, &decision); err != nil {
		return nil, fmt.Errorf("failed to decode consensus decision: %w", err)
	}
	return &decision, nil
}

// ListRecent returns up to limit decisions, newest first.
func (r *ConsensusRepository) ListRecent(ctx context.Context, limit int) ([]*models.ConsensusDecision, error) {
	query := `
		SELECT decision FROM consensus_decisions
		ORDER BY produced_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query consensus decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.ConsensusDecision
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan consensus decision: %w", err)
		}
		var decision models.ConsensusDecision
		if err := json.Unmarshal(doc, &decision); err != nil {
			return nil, fmt.Errorf("failed to decode consensus decision: %w", err)
		}
		decisions = append(decisions, &decision)
	}
	return decisions, rows.Err()
}
