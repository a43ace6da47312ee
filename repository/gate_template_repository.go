package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyblockz/sbz-giveaway/database"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

const templateSelect = `
	SELECT t.key, t.roles,
	       ARRAY(SELECT a.alias FROM gate_template_aliases a WHERE a.template_key = t.key ORDER BY a.alias)
	FROM gate_templates t`

// GateTemplateRepository implements gate template data access.
// Templates are shared by every guild the bot serves.
type GateTemplateRepository struct {
	q Queryable
}

// NewGateTemplateRepository creates a repository on the pool
func NewGateTemplateRepository(db *database.DB) interfaces.GateTemplateRepository {
	return &GateTemplateRepository{q: db.Pool}
}

// NewGateTemplateRepositoryWithTx creates a repository bound to a transaction
func NewGateTemplateRepositoryWithTx(tx Queryable) interfaces.GateTemplateRepository {
	return &GateTemplateRepository{q: tx}
}

// Create inserts a template
func (r *GateTemplateRepository) Create(ctx context.Context, key string, roles []int64) error {
	if roles == nil {
		roles = []int64{}
	}

	_, err := r.q.Exec(ctx, `INSERT INTO gate_templates (key, roles) VALUES ($1, $2)`, key, roles)
	if isUniqueViolation(err) {
		return entities.ErrTemplateExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert template %q: %w", key, err)
	}
	return nil
}

// Delete removes a template; its aliases go with it
func (r *GateTemplateRepository) Delete(ctx context.Context, key string) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM gate_templates WHERE key = $1`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete template %q: %w", key, err)
	}
	return result.RowsAffected() > 0, nil
}

// List returns every template ordered by key
func (r *GateTemplateRepository) List(ctx context.Context) ([]*entities.GateTemplate, error) {
	rows, err := r.q.Query(ctx, templateSelect+` ORDER BY t.key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []*entities.GateTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}

	return templates, nil
}

// GetByKey returns nil, nil when no template has that key
func (r *GateTemplateRepository) GetByKey(ctx context.Context, key string) (*entities.GateTemplate, error) {
	return r.getOne(ctx, templateSelect+` WHERE t.key = $1`, key)
}

// GetByAlias returns the template owning alias, or nil, nil
func (r *GateTemplateRepository) GetByAlias(ctx context.Context, alias string) (*entities.GateTemplate, error) {
	query := templateSelect + ` WHERE t.key = (SELECT template_key FROM gate_template_aliases WHERE alias = $1)`
	return r.getOne(ctx, query, alias)
}

// AddAlias binds alias to key
func (r *GateTemplateRepository) AddAlias(ctx context.Context, key, alias string) error {
	_, err := r.q.Exec(ctx, `INSERT INTO gate_template_aliases (alias, template_key) VALUES ($1, $2)`, alias, key)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return entities.ErrAliasTaken
		case foreignKeyViolation:
			return entities.ErrTemplateNotFound
		}
	}
	if err != nil {
		return fmt.Errorf("failed to add alias %q: %w", alias, err)
	}
	return nil
}

// RemoveAlias drops an alias and reports whether it existed
func (r *GateTemplateRepository) RemoveAlias(ctx context.Context, alias string) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM gate_template_aliases WHERE alias = $1`, alias)
	if err != nil {
		return false, fmt.Errorf("failed to remove alias %q: %w", alias, err)
	}
	return result.RowsAffected() > 0, nil
}

// AddRole appends a role unless the template already has it. Reports whether the template exists.
func (r *GateTemplateRepository) AddRole(ctx context.Context, key string, roleID int64) (bool, error) {
	query := `
		UPDATE gate_templates
		SET roles = CASE WHEN $2::BIGINT = ANY(roles) THEN roles ELSE array_append(roles, $2::BIGINT) END
		WHERE key = $1`

	result, err := r.q.Exec(ctx, query, key, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to add role %d to template %q: %w", roleID, key, err)
	}
	return result.RowsAffected() > 0, nil
}

// RemoveRole drops a role. Reports whether the template exists.
func (r *GateTemplateRepository) RemoveRole(ctx context.Context, key string, roleID int64) (bool, error) {
	query := `UPDATE gate_templates SET roles = array_remove(roles, $2::BIGINT) WHERE key = $1`

	result, err := r.q.Exec(ctx, query, key, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to remove role %d from template %q: %w", roleID, key, err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *GateTemplateRepository) getOne(ctx context.Context, query string, arg string) (*entities.GateTemplate, error) {
	template, err := scanTemplate(r.q.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func scanTemplate(row pgx.Row) (*entities.GateTemplate, error) {
	var template entities.GateTemplate
	if err := row.Scan(&template.Key, &template.Roles, &template.Aliases); err != nil {
		return nil, err
	}
	return &template, nil
}
