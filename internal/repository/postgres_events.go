package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresEventsRepository 家族活动Repository实现（family_events 表）
type PostgresEventsRepository struct {
	db *sql.DB
}

func NewPostgresEventsRepository(db *sql.DB) *PostgresEventsRepository {
	return &PostgresEventsRepository{db: db}
}

var _ EventsRepository = (*PostgresEventsRepository)(nil)

const eventColumns = `
			event_id::text,
			family_id::text,
			title,
			COALESCE(description, '') as description,
			event_type,
			event_date,
			end_date,
			COALESCE(location, '') as location,
			related_persons,
			COALESCE(created_by, '') as created_by,
			status,
			created_at,
			updated_at`

func scanEvent(row rowScanner) (*domain.FamilyEvent, error) {
	var e domain.FamilyEvent
	var eventType, status string
	var endDate sql.NullTime
	var related []string

	err := row.Scan(
		&e.ID,
		&e.FamilyID,
		&e.Title,
		&e.Description,
		&eventType,
		&e.Date,
		&endDate,
		&e.Location,
		pq.Array(&related),
		&e.CreatedBy,
		&status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EventType(eventType)
	e.Status = domain.ParseEventStatus(status)
	if endDate.Valid {
		t := endDate.Time
		e.EndDate = &t
	}
	e.RelatedPersons = domain.EdgeSetFromStrings(related)
	return &e, nil
}

// CreateEvent 创建活动
func (r *PostgresEventsRepository) CreateEvent(ctx context.Context, event *domain.FamilyEvent) (string, error) {
	if event == nil || event.FamilyID == "" {
		return "", fmt.Errorf("family_id is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	var endDate any
	if event.EndDate != nil {
		endDate = *event.EndDate
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO family_events (
			event_id, family_id, title, description, event_type, event_date, end_date,
			location, related_persons, created_by, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), $11, $12, $12)`,
		event.ID, event.FamilyID, event.Title, event.Description, string(event.Type), event.Date, endDate,
		event.Location, pq.Array(event.RelatedPersons.Strings()), event.CreatedBy, string(event.Status), now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	event.CreatedAt, event.UpdatedAt = now, now
	return event.ID, nil
}

// ListEvents 时间线查询（按 event_date 升序）
func (r *PostgresEventsRepository) ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]*domain.FamilyEvent, error) {
	if familyID == "" {
		return nil, fmt.Errorf("family_id is required")
	}
	query := `SELECT ` + eventColumns + `
		FROM family_events
		WHERE family_id::text = $1 AND event_date BETWEEN $2 AND $3
		ORDER BY event_date, created_at
	`
	rows, err := r.db.QueryContext(ctx, query, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	out := []*domain.FamilyEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return out, nil
}

// CountUpcoming 统计即将到来的活动
func (r *PostgresEventsRepository) CountUpcoming(ctx context.Context, familyID string, now time.Time) (int, error) {
	if familyID == "" {
		return 0, fmt.Errorf("family_id is required")
	}
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM family_events
		WHERE family_id::text = $1 AND status = 'upcoming' AND event_date >= $2::date`,
		familyID, now.UTC().Format("2006-01-02"),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming events: %w", err)
	}
	return n, nil
}
