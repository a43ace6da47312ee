package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skyblockz/sbz-giveaway/database"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const gateColumns = `message_id, guild_id, channel_id, expires_at, requirements, created_at`

// GateRepository implements gate data access
type GateRepository struct {
	q       Queryable
	guildID int64
}

// NewGateRepository creates an unscoped repository on the pool
func NewGateRepository(db *database.DB) interfaces.GateRepository {
	return &GateRepository{q: db.Pool}
}

// NewGateRepositoryScoped creates a repository bound to a transaction and guild
func NewGateRepositoryScoped(tx Queryable, guildID int64) interfaces.GateRepository {
	return &GateRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create inserts a gate; a second gate on the same message is rejected
func (r *GateRepository) Create(ctx context.Context, gate *entities.Gate) error {
	query := `
		INSERT INTO gates (message_id, guild_id, channel_id, expires_at, requirements, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.q.Exec(ctx, query,
		gate.MessageID,
		gate.GuildID,
		gate.ChannelID,
		gate.ExpiresAt,
		gate.Requirements,
		gate.CreatedAt,
	)
	if isUniqueViolation(err) {
		return entities.ErrGateExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert gate %d: %w", gate.MessageID, err)
	}
	return nil
}

// GetByMessageID returns nil, nil when the message is not gated
func (r *GateRepository) GetByMessageID(ctx context.Context, messageID int64) (*entities.Gate, error) {
	query := `SELECT ` + gateColumns + ` FROM gates WHERE message_id = $2 AND ` + scopeFilter

	gate, err := scanGate(r.q.QueryRow(ctx, query, r.guildID, messageID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gate %d: %w", messageID, err)
	}
	return gate, nil
}

// UpdateRequirements replaces the requirement set
func (r *GateRepository) UpdateRequirements(ctx context.Context, messageID int64, requirements []int64) error {
	query := `UPDATE gates SET requirements = $3 WHERE message_id = $2 AND ` + scopeFilter

	result, err := r.q.Exec(ctx, query, r.guildID, messageID, requirements)
	if err != nil {
		return fmt.Errorf("failed to update gate %d: %w", messageID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrGateNotFound
	}
	return nil
}

// Delete removes a gate and reports whether it existed
func (r *GateRepository) Delete(ctx context.Context, messageID int64) (bool, error) {
	query := `DELETE FROM gates WHERE message_id = $2 AND ` + scopeFilter

	result, err := r.q.Exec(ctx, query, r.guildID, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to delete gate %d: %w", messageID, err)
	}
	return result.RowsAffected() > 0, nil
}

// List returns gates ordered by creation
func (r *GateRepository) List(ctx context.Context) ([]*entities.Gate, error) {
	query := `SELECT ` + gateColumns + ` FROM gates WHERE ` + scopeFilter + ` ORDER BY created_at, message_id`
	return r.getMany(ctx, query)
}

// ListExpiringBetween returns gates whose expiry lies in [from, to]
func (r *GateRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*entities.Gate, error) {
	query := `
		SELECT ` + gateColumns + `
		FROM gates
		WHERE ` + scopeFilter + `
		  AND expires_at IS NOT NULL
		  AND expires_at BETWEEN $2 AND $3
		ORDER BY expires_at`
	return r.getMany(ctx, query, from, to)
}

// ListIndefinite returns gates that never expire
func (r *GateRepository) ListIndefinite(ctx context.Context) ([]*entities.Gate, error) {
	query := `SELECT ` + gateColumns + ` FROM gates WHERE ` + scopeFilter + ` AND expires_at IS NULL ORDER BY message_id`
	return r.getMany(ctx, query)
}

// DeleteExpired removes every gate with expires_at before now and returns their message ids
func (r *GateRepository) DeleteExpired(ctx context.Context, now time.Time) ([]int64, error) {
	query := `
		DELETE FROM gates
		WHERE ` + scopeFilter + ` AND expires_at < $2
		RETURNING message_id`

	rows, err := r.q.Query(ctx, query, r.guildID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired gates: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect expired gate ids: %w", err)
	}
	return ids, nil
}

func (r *GateRepository) getMany(ctx context.Context, query string, args ...any) ([]*entities.Gate, error) {
	rows, err := r.q.Query(ctx, query, append([]any{r.guildID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gates: %w", err)
	}
	defer rows.Close()

	var gates []*entities.Gate
	for rows.Next() {
		gate, err := scanGate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gate: %w", err)
		}
		gates = append(gates, gate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gate rows: %w", err)
	}

	return gates, nil
}

func scanGate(row pgx.Row) (*entities.Gate, error) {
	var gate entities.Gate
	err := row.Scan(
		&gate.MessageID,
		&gate.GuildID,
		&gate.ChannelID,
		&gate.ExpiresAt,
		&gate.Requirements,
		&gate.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &gate, nil
}
