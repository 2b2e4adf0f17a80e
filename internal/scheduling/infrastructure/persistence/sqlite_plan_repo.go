package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/vita/internal/shared/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS time_slots (
	id TEXT PRIMARY KEY,
	activity_id TEXT NOT NULL,
	priority INTEGER NOT NULL,
	slot_date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	prep_duration_minutes INTEGER NOT NULL,
	specialist_id TEXT,
	equipment_ids TEXT NOT NULL DEFAULT '',
	is_backup INTEGER NOT NULL DEFAULT 0,
	original_activity_id TEXT,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_time_slots_date ON time_slots(slot_date);
`

// OpenSQLite opens (and creates if needed) the SQLite plan store.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite doesn't support multiple writers, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}

// SQLitePlanRepository implements domain.PlanRepository on SQLite.
type SQLitePlanRepository struct {
	db *sql.DB
}

// NewSQLitePlanRepository creates a new SQLite plan repository.
func NewSQLitePlanRepository(db *sql.DB) *SQLitePlanRepository {
	return &SQLitePlanRepository{db: db}
}

// EnsureSchema creates the slot table if it does not exist.
func (r *SQLitePlanRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return nil
}

// Save persists every booked slot of the plan in one transaction.
func (r *SQLitePlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = `
		INSERT OR REPLACE INTO time_slots (
			id, activity_id, priority, slot_date, start_time,
			duration_minutes, prep_duration_minutes, specialist_id,
			equipment_ids, is_backup, original_activity_id, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, slot := range plan.BookedSlots() {
		_, err := tx.ExecContext(ctx, insert,
			slot.ID().String(),
			slot.ActivityID(),
			slot.Priority(),
			domain.DateKey(slot.Date()),
			slot.StartTime().String(),
			slot.DurationMinutes(),
			slot.PrepMinutes(),
			nullableString(slot.SpecialistID()),
			strings.Join(slot.EquipmentIDs(), ","),
			boolToInt64(slot.IsBackup()),
			nullableString(slot.OriginalActivityID()),
			string(slot.Status()),
			slot.CreatedAt().Format(time.RFC3339),
			slot.UpdatedAt().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert slot %s: %w", slot.ID(), err)
		}
	}

	return tx.Commit()
}

// FindSlotsByDateRange returns persisted slots in the inclusive date range,
// ordered by date and start time.
func (r *SQLitePlanRepository) FindSlotsByDateRange(ctx context.Context, start, end time.Time) ([]*domain.TimeSlot, error) {
	const query = `
		SELECT id, activity_id, priority, slot_date, start_time,
			duration_minutes, prep_duration_minutes, specialist_id,
			equipment_ids, is_backup, original_activity_id, status,
			created_at, updated_at
		FROM time_slots
		WHERE slot_date >= ? AND slot_date <= ?
		ORDER BY slot_date, start_time`

	rows, err := r.db.QueryContext(ctx, query, domain.DateKey(start), domain.DateKey(end))
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		var (
			id, activityID, dateStr, startStr, status string
			createdStr, updatedStr, equipmentStr      string
			specialistID, originalID                  sql.NullString
			priority, duration, prep                  int
			isBackup                                  int64
		)
		if err := rows.Scan(&id, &activityID, &priority, &dateStr, &startStr,
			&duration, &prep, &specialistID, &equipmentStr, &isBackup,
			&originalID, &status, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}

		slot, err := rehydrateSlot(slotRow{
			ID:           id,
			ActivityID:   activityID,
			Priority:     priority,
			Date:         dateStr,
			StartTime:    startStr,
			Duration:     duration,
			Prep:         prep,
			SpecialistID: specialistID.String,
			EquipmentIDs: equipmentStr,
			IsBackup:     isBackup != 0,
			OriginalID:   originalID.String,
			Status:       status,
			CreatedAt:    createdStr,
			UpdatedAt:    updatedStr,
		})
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// slotRow is the flat scanned form of a persisted slot.
type slotRow struct {
	ID           string
	ActivityID   string
	Priority     int
	Date         string
	StartTime    string
	Duration     int
	Prep         int
	SpecialistID string
	EquipmentIDs string
	IsBackup     bool
	OriginalID   string
	Status       string
	CreatedAt    string
	UpdatedAt    string
}

func rehydrateSlot(row slotRow) (*domain.TimeSlot, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("parse slot id %q: %w", row.ID, err)
	}
	date, err := time.Parse(domain.DateFormat, row.Date)
	if err != nil {
		return nil, fmt.Errorf("parse slot date %q: %w", row.Date, err)
	}
	start, err := domain.ParseClockTime(row.StartTime)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", row.CreatedAt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", row.UpdatedAt, err)
	}

	var equipmentIDs []string
	if row.EquipmentIDs != "" {
		equipmentIDs = strings.Split(row.EquipmentIDs, ",")
	}

	status := domain.SlotStatus(row.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("slot %s: %w: %q", row.ID, domain.ErrSlotInvalidStatus, row.Status)
	}

	return domain.RehydrateTimeSlot(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		row.ActivityID,
		row.Priority,
		date,
		start,
		row.Duration,
		row.Prep,
		row.SpecialistID,
		equipmentIDs,
		row.IsBackup,
		row.OriginalID,
		status,
	), nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
