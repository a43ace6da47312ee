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

// drawingIDLock is the advisory lock key that serializes id allocation
const drawingIDLock int64 = 7_421_001

const drawingColumns = `
	id, guild_id, channel_id, message_id, host_id, prize_name, image_url,
	winner_count, length_seconds, requirements, participants, winners,
	outcome, created_at, resolved_at`

// DrawingRepository implements drawing data access
type DrawingRepository struct {
	q       Queryable
	guildID int64
}

// NewDrawingRepository creates an unscoped repository on the pool
func NewDrawingRepository(db *database.DB) interfaces.DrawingRepository {
	return &DrawingRepository{q: db.Pool}
}

// NewDrawingRepositoryScoped creates a repository bound to a transaction and guild.
// A guild of 0 leaves the repository unscoped.
func NewDrawingRepositoryScoped(tx Queryable, guildID int64) interfaces.DrawingRepository {
	return &DrawingRepository{
		q:       tx,
		guildID: guildID,
	}
}

// NextID allocates the next drawing id. The lock is held until the
// surrounding transaction ends, so Create must run in the same transaction.
func (r *DrawingRepository) NextID(ctx context.Context) (int64, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, drawingIDLock); err != nil {
		return 0, fmt.Errorf("failed to lock drawing ids: %w", err)
	}

	var id int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM drawings`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next drawing id: %w", err)
	}
	return id, nil
}

// Create inserts a new drawing
func (r *DrawingRepository) Create(ctx context.Context, drawing *entities.Drawing) error {
	query := `
		INSERT INTO drawings (
			id, guild_id, channel_id, message_id, host_id, prize_name, image_url,
			winner_count, length_seconds, requirements, participants, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.q.Exec(ctx, query,
		drawing.ID,
		drawing.GuildID,
		drawing.ChannelID,
		drawing.MessageID,
		drawing.HostID,
		drawing.PrizeName,
		drawing.ImageURL,
		drawing.WinnerCount,
		drawing.LengthSecs,
		drawing.Requirements,
		drawing.Participants,
		drawing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert drawing %d: %w", drawing.ID, err)
	}
	return nil
}

// GetByID returns nil, nil when no drawing has that id
func (r *DrawingRepository) GetByID(ctx context.Context, id int64) (*entities.Drawing, error) {
	query := `SELECT ` + drawingColumns + ` FROM drawings WHERE id = $2 AND ` + scopeFilter
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate is GetByID with a row lock held until the transaction ends
func (r *DrawingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Drawing, error) {
	query := `SELECT ` + drawingColumns + ` FROM drawings WHERE id = $2 AND ` + scopeFilter + ` FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// GetByMessageID finds the drawing announced by a message
func (r *DrawingRepository) GetByMessageID(ctx context.Context, messageID int64) (*entities.Drawing, error) {
	query := `SELECT ` + drawingColumns + ` FROM drawings WHERE message_id = $2 AND ` + scopeFilter
	return r.getOne(ctx, query, messageID)
}

// SetMessage records where the announcement was posted
func (r *DrawingRepository) SetMessage(ctx context.Context, id, channelID, messageID int64) error {
	query := `UPDATE drawings SET channel_id = $3, message_id = $4 WHERE id = $2 AND ` + scopeFilter

	result, err := r.q.Exec(ctx, query, r.guildID, id, channelID, messageID)
	if err != nil {
		return fmt.Errorf("failed to set message for drawing %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrDrawingNotFound
	}
	return nil
}

// AddParticipant appends a member unless already present. Reports whether the roster changed.
func (r *DrawingRepository) AddParticipant(ctx context.Context, id, memberID int64) (bool, error) {
	query := `
		UPDATE drawings
		SET participants = array_append(participants, $3::BIGINT)
		WHERE id = $2 AND ` + scopeFilter + `
		  AND winners IS NULL
		  AND NOT ($3::BIGINT = ANY(participants))`

	result, err := r.q.Exec(ctx, query, r.guildID, id, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to add participant %d to drawing %d: %w", memberID, id, err)
	}
	return result.RowsAffected() > 0, nil
}

// RemoveParticipant removes a member if present. Reports whether the roster changed.
func (r *DrawingRepository) RemoveParticipant(ctx context.Context, id, memberID int64) (bool, error) {
	query := `
		UPDATE drawings
		SET participants = array_remove(participants, $3::BIGINT)
		WHERE id = $2 AND ` + scopeFilter + `
		  AND winners IS NULL
		  AND $3::BIGINT = ANY(participants)`

	result, err := r.q.Exec(ctx, query, r.guildID, id, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to remove participant %d from drawing %d: %w", memberID, id, err)
	}
	return result.RowsAffected() > 0, nil
}

// SetWinnersIfUnrolled writes a roll result only when none has been written yet
func (r *DrawingRepository) SetWinnersIfUnrolled(ctx context.Context, id int64, winners []int64, outcome entities.DrawingOutcome, at time.Time) (bool, error) {
	query := `
		UPDATE drawings
		SET winners = $3, outcome = $4, resolved_at = $5
		WHERE id = $2 AND ` + scopeFilter + ` AND winners IS NULL`

	result, err := r.q.Exec(ctx, query, r.guildID, id, winners, string(outcome), at)
	if err != nil {
		return false, fmt.Errorf("failed to set winners for drawing %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

// OverwriteWinners replaces any previous roll result
func (r *DrawingRepository) OverwriteWinners(ctx context.Context, id int64, winners []int64, outcome entities.DrawingOutcome, at time.Time) error {
	query := `
		UPDATE drawings
		SET winners = $3, outcome = $4, resolved_at = $5
		WHERE id = $2 AND ` + scopeFilter

	result, err := r.q.Exec(ctx, query, r.guildID, id, winners, string(outcome), at)
	if err != nil {
		return fmt.Errorf("failed to overwrite winners for drawing %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrDrawingNotFound
	}
	return nil
}

// GetDue returns unrolled drawings whose deadline is not after now, oldest first
func (r *DrawingRepository) GetDue(ctx context.Context, now time.Time) ([]*entities.Drawing, error) {
	query := `
		SELECT ` + drawingColumns + `
		FROM drawings
		WHERE ` + scopeFilter + `
		  AND winners IS NULL
		  AND created_at + make_interval(secs => length_seconds) <= $2
		ORDER BY created_at + make_interval(secs => length_seconds), id`

	return r.getMany(ctx, query, now)
}

// ListOpen returns every unrolled drawing, newest first
func (r *DrawingRepository) ListOpen(ctx context.Context) ([]*entities.Drawing, error) {
	query := `
		SELECT ` + drawingColumns + `
		FROM drawings
		WHERE ` + scopeFilter + ` AND winners IS NULL
		ORDER BY id DESC`

	return r.getMany(ctx, query)
}

func (r *DrawingRepository) getOne(ctx context.Context, query string, arg int64) (*entities.Drawing, error) {
	drawing, err := scanDrawing(r.q.QueryRow(ctx, query, r.guildID, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	return drawing, nil
}

func (r *DrawingRepository) getMany(ctx context.Context, query string, args ...any) ([]*entities.Drawing, error) {
	rows, err := r.q.Query(ctx, query, append([]any{r.guildID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drawings: %w", err)
	}
	defer rows.Close()

	var drawings []*entities.Drawing
	for rows.Next() {
		drawing, err := scanDrawing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drawing: %w", err)
		}
		drawings = append(drawings, drawing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drawing rows: %w", err)
	}

	return drawings, nil
}

func scanDrawing(row pgx.Row) (*entities.Drawing, error) {
	var (
		drawing entities.Drawing
		outcome *string
	)
	err := row.Scan(
		&drawing.ID,
		&drawing.GuildID,
		&drawing.ChannelID,
		&drawing.MessageID,
		&drawing.HostID,
		&drawing.PrizeName,
		&drawing.ImageURL,
		&drawing.WinnerCount,
		&drawing.LengthSecs,
		&drawing.Requirements,
		&drawing.Participants,
		&drawing.Winners,
		&outcome,
		&drawing.CreatedAt,
		&drawing.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if outcome != nil {
		o := entities.DrawingOutcome(*outcome)
		drawing.Outcome = &o
	}
	return &drawing, nil
}
