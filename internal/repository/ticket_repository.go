package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketai/triage-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CreatorID   *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence. The workflow write
// methods carry forward-only status preconditions in SQL so a stale or
// duplicate run can never move a ticket backwards.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	MarkTriaging(ctx context.Context, id string) error
	ApplyClassification(ctx context.Context, id string, priority domain.TicketPriority, notes string, skills []string) error
	Assign(ctx context.Context, id string, assigneeID *string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, helpful_notes, related_skills, assignee_user_id, creator_user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.HelpfulNotes,
		ticket.RelatedSkills,
		ticket.AssigneeID,
		ticket.CreatorID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, priority, helpful_notes, related_skills,
               assignee_user_id, creator_user_id, created_at, updated_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.HelpfulNotes,
		&ticket.RelatedSkills,
		&ticket.AssigneeID,
		&ticket.CreatorID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// MarkTriaging advances a created ticket to triaging. Re-running on a ticket
// already at or past triaging is a no-op rather than an error.
func (r *ticketRepository) MarkTriaging(ctx context.Context, id string) error {
	const query = `
        UPDATE tickets SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusTriaging, id, domain.TicketStatusCreated)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

func (r *ticketRepository) ApplyClassification(ctx context.Context, id string, priority domain.TicketPriority, notes string, skills []string) error {
	const query = `
        UPDATE tickets SET priority=$1, helpful_notes=$2, related_skills=$3, status=$4, updated_at=NOW()
        WHERE id=$5 AND status IN ($6,$7)`
	if skills == nil {
		skills = []string{}
	}
	cmd, err := r.pool.Exec(ctx, query,
		priority,
		notes,
		skills,
		domain.TicketStatusClassified,
		id,
		domain.TicketStatusCreated,
		domain.TicketStatusTriaging,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

func (r *ticketRepository) Assign(ctx context.Context, id string, assigneeID *string) error {
	const query = `
        UPDATE tickets SET assignee_user_id=$1, status=$2, updated_at=NOW()
        WHERE id=$3 AND status<>$2`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, domain.TicketStatusAssigned, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

// ensureExists distinguishes "precondition already satisfied" from "row
// gone": workflow steps are idempotent only while the ticket still exists.
func (r *ticketRepository) ensureExists(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]domain.Ticket, error) {
	filter := TicketFilter{
		CreatorID: &creatorID,
		Limit:     limit,
		Offset:    offset,
	}
	return r.ListWithFilter(ctx, filter)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, description, status, priority, helpful_notes, related_skills,
                    assignee_user_id, creator_user_id, created_at, updated_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_user_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.HelpfulNotes,
			&ticket.RelatedSkills,
			&ticket.AssigneeID,
			&ticket.CreatorID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
