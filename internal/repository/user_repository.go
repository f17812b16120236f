package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketai/triage-service/internal/domain"
)

// UserFilter defines query params for user listing.
type UserFilter struct {
	Role   *domain.UserRole
	Limit  int
	Offset int
}

// UserRepository is both account persistence and the moderator directory
// queried by the assignment workflow.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	FindModeratorBySkills(ctx context.Context, skills []string) (*domain.User, error)
	FindAnyAdmin(ctx context.Context) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, skills, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, skills)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	if user.Skills == nil {
		user.Skills = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Skills,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, role=$4, skills=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Skills,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id=$1`, userColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email=$1`, userColumns)
	return r.fetchSingle(ctx, query, email)
}

// FindModeratorBySkills returns the first moderator (by creation order) whose
// declared skills intersect the given list, comparing case-insensitively.
// No overlap ranking is performed.
func (r *userRepository) FindModeratorBySkills(ctx context.Context, skills []string) (*domain.User, error) {
	normalized := domain.NormalizeSkills(skills)
	if len(normalized) == 0 {
		return nil, pgx.ErrNoRows
	}
	query := fmt.Sprintf(`
        SELECT %s FROM users u
        WHERE u.role=$1
          AND EXISTS (SELECT 1 FROM unnest(u.skills) AS s WHERE LOWER(s) = ANY($2))
        ORDER BY u.created_at ASC
        LIMIT 1`, userColumns)
	return r.fetchSingle(ctx, query, domain.UserRoleModerator, normalized)
}

// FindAnyAdmin returns the oldest admin account, the assignment fallback.
func (r *userRepository) FindAnyAdmin(ctx context.Context) (*domain.User, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM users WHERE role=$1 ORDER BY created_at ASC LIMIT 1`, userColumns)
	return r.fetchSingle(ctx, query, domain.UserRoleAdmin)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Skills,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users`, userColumns)
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Skills,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
