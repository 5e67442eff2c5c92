package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// projectRepository implements repository.ProjectRepository.
// errPriceOutOfRange is returned when a price overflows the NUMERIC column.
var errPriceOutOfRange = domain.Invalid("price", "price must be at most 9999999999.99")

type projectRepository struct {
	db *DB
}

// NewProjectRepository creates a new PostgreSQL project repository.
func NewProjectRepository(db *DB) repository.ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id::text, title, description, long_description, image_url, price::float8,
	category, technologies, demo_url, source_url, status, featured, owner_id::text,
	created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	p := &domain.Project{}
	var status string

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.LongDescription,
		&p.ImageURL,
		&p.Price,
		&p.Category,
		&p.Technologies,
		&p.DemoURL,
		&p.SourceURL,
		&status,
		&p.Featured,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = domain.ProjectStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// whereClause renders a filter into a WHERE clause with numbered placeholders.
// A malformed owner or exclude id yields ok=false when it could never match.
func whereClause(filter domain.ProjectFilter) (clause string, args []any, ok bool) {
	var conds []string
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.FeaturedOnly {
		conds = append(conds, "featured")
	}
	if filter.OwnerID != "" {
		if !validID(filter.OwnerID) {
			return "", nil, false
		}
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.ExcludeID != "" && validID(filter.ExcludeID) {
		add("id <> $%d", filter.ExcludeID)
	}

	if len(conds) == 0 {
		return "", args, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

// Create creates a new project.
func (r *projectRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (id, title, description, long_description, image_url, price,
			category, technologies, demo_url, source_url, status, featured, owner_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	if !validID(p.OwnerID) {
		return domain.Invalid("userId", "owner account does not exist")
	}

	_, err := r.db.Pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.LongDescription,
		p.ImageURL,
		p.Price,
		p.Category,
		p.Technologies,
		p.DemoURL,
		p.SourceURL,
		string(p.Status),
		p.Featured,
		p.OwnerID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("userId", "owner account does not exist")
		}
		if isNumericOutOfRange(err) {
			return errPriceOutOfRange
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID.
func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	p, err := scanProject(r.db.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List returns projects matching the filter.
func (r *projectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	where, args, ok := whereClause(filter)
	if !ok {
		return []*domain.Project{}, nil
	}

	query := `SELECT ` + projectColumns + ` FROM projects` + where +
		` ORDER BY ` + filter.OrderBy()
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	return r.query(ctx, query, args...)
}

// Search returns active projects containing query in any searchable column.
func (r *projectRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects
		WHERE status = 'active' AND (
			title ILIKE $1 OR
			description ILIKE $1 OR
			technologies ILIKE $1 OR
			category ILIKE $1
		)
		ORDER BY featured DESC, created_at DESC
		LIMIT $2`

	return r.query(ctx, q, "%"+escapeLike(query)+"%", limit)
}

func (r *projectRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// Categories returns the distinct categories of active projects.
func (r *projectRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT DISTINCT category FROM projects WHERE status = 'active' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Update overwrites the mutable fields of an existing project.
func (r *projectRepository) Update(ctx context.Context, p *domain.Project) error {
	if !validID(p.ID) {
		return repository.ErrNotFound
	}

	query := `
		UPDATE projects
		SET title = $1, description = $2, long_description = $3, image_url = $4, price = $5,
			category = $6, technologies = $7, demo_url = $8, source_url = $9, status = $10,
			featured = $11, updated_at = $12
		WHERE id = $13
	`

	result, err := r.db.Pool.Exec(ctx, query,
		p.Title,
		p.Description,
		p.LongDescription,
		p.ImageURL,
		p.Price,
		p.Category,
		p.Technologies,
		p.DemoURL,
		p.SourceURL,
		string(p.Status),
		p.Featured,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isNumericOutOfRange(err) {
			return errPriceOutOfRange
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete deletes a project by ID.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the number of projects matching the filter.
func (r *projectRepository) Count(ctx context.Context, filter domain.ProjectFilter) (int64, error) {
	where, args, ok := whereClause(filter)
	if !ok {
		return 0, nil
	}

	var count int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Ensure projectRepository implements repository.ProjectRepository.
var _ repository.ProjectRepository = (*projectRepository)(nil)
