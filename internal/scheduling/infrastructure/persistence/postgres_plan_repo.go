package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS time_slots (
	id UUID PRIMARY KEY,
	activity_id TEXT NOT NULL,
	priority INTEGER NOT NULL,
	slot_date DATE NOT NULL,
	start_time TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	prep_duration_minutes INTEGER NOT NULL,
	specialist_id TEXT,
	equipment_ids TEXT NOT NULL DEFAULT '',
	is_backup BOOLEAN NOT NULL DEFAULT FALSE,
	original_activity_id TEXT,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_time_slots_date ON time_slots(slot_date);
`

// PostgresPlanRepository implements domain.PlanRepository using PostgreSQL.
type PostgresPlanRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPlanRepository creates a new PostgreSQL plan repository.
func NewPostgresPlanRepository(pool *pgxpool.Pool) *PostgresPlanRepository {
	return &PostgresPlanRepository{pool: pool}
}

// EnsureSchema creates the slot table if it does not exist.
func (r *PostgresPlanRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure postgres schema: %w", err)
	}
	return nil
}

// Save persists every booked slot of the plan in one transaction.
func (r *PostgresPlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO time_slots (
			id, activity_id, priority, slot_date, start_time,
			duration_minutes, prep_duration_minutes, specialist_id,
			equipment_ids, is_backup, original_activity_id, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

	for _, slot := range plan.BookedSlots() {
		var specialistID, originalID *string
		if slot.SpecialistID() != "" {
			id := slot.SpecialistID()
			specialistID = &id
		}
		if slot.OriginalActivityID() != "" {
			id := slot.OriginalActivityID()
			originalID = &id
		}

		_, err := tx.Exec(ctx, insert,
			slot.ID().String(),
			slot.ActivityID(),
			slot.Priority(),
			slot.Date(),
			slot.StartTime().String(),
			slot.DurationMinutes(),
			slot.PrepMinutes(),
			specialistID,
			strings.Join(slot.EquipmentIDs(), ","),
			slot.IsBackup(),
			originalID,
			string(slot.Status()),
			slot.CreatedAt(),
			slot.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("insert slot %s: %w", slot.ID(), err)
		}
	}

	return tx.Commit(ctx)
}

// FindSlotsByDateRange returns persisted slots in the inclusive date range,
// ordered by date and start time.
func (r *PostgresPlanRepository) FindSlotsByDateRange(ctx context.Context, start, end time.Time) ([]*domain.TimeSlot, error) {
	const query = `
		SELECT id, activity_id, priority, slot_date, start_time,
			duration_minutes, prep_duration_minutes, specialist_id,
			equipment_ids, is_backup, original_activity_id, status,
			created_at, updated_at
		FROM time_slots
		WHERE slot_date >= $1 AND slot_date <= $2
		ORDER BY slot_date, start_time`

	rows, err := r.pool.Query(ctx, query, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		var (
			id                         string
			activityID, startStr       string
			equipmentStr, status       string
			specialistID, originalID   *string
			date, createdAt, updatedAt time.Time
			priority, duration, prep   int
			isBackup                   bool
		)
		if err := rows.Scan(&id, &activityID, &priority, &date, &startStr,
			&duration, &prep, &specialistID, &equipmentStr, &isBackup,
			&originalID, &status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}

		slot, err := rehydrateSlot(slotRow{
			ID:           id,
			ActivityID:   activityID,
			Priority:     priority,
			Date:         date.Format(domain.DateFormat),
			StartTime:    startStr,
			Duration:     duration,
			Prep:         prep,
			SpecialistID: derefString(specialistID),
			EquipmentIDs: equipmentStr,
			IsBackup:     isBackup,
			OriginalID:   derefString(originalID),
			Status:       status,
			CreatedAt:    createdAt.Format(time.RFC3339),
			UpdatedAt:    updatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
