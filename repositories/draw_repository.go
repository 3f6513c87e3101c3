package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/lib/pq"
)

var (
	ErrDrawNotFound        = errors.New("draw not found")
	ErrDrawConflict        = errors.New("draw with this id already exists")
	ErrDrawVersionConflict = errors.New("draw was modified concurrently")
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type DrawRepository interface {
	Create(ctx context.Context, exec SQLExecutor, rec *models.DrawRecord) error
	GetByID(ctx context.Context, drawID string) (*models.DrawRecord, error)
	GetByIDs(ctx context.Context, drawIDs []string) ([]*models.DrawRecord, error)
	ListByEvent(ctx context.Context, eventID string) ([]*models.DrawSummary, error)
	// Update writes rec if the stored version still equals rec.Version and
	// bumps rec.Version on success.
	Update(ctx context.Context, exec SQLExecutor, rec *models.DrawRecord) error
	Delete(ctx context.Context, exec SQLExecutor, drawID string) error
}

type postgresDrawRepository struct {
	db *sql.DB
}

func NewPostgresDrawRepository(db *sql.DB) DrawRepository {
	return &postgresDrawRepository{db: db}
}

func (r *postgresDrawRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresDrawRepository) Create(ctx context.Context, exec SQLExecutor, rec *models.DrawRecord) error {
	doc, err := json.Marshal(rec.Definition)
	if err != nil {
		return fmt.Errorf("failed to encode draw definition: %w", err)
	}
	query := `
		INSERT INTO draws (id, event_id, draw_name, draw_type, definition, version)
		VALUES ($1, $2, $3, $4, $5, 1)
		RETURNING version, created_at, updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		rec.DrawID,
		rec.EventID,
		rec.DrawName,
		rec.DrawType,
		doc,
	).Scan(&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrDrawConflict
		}
		return fmt.Errorf("failed to create draw: %w", err)
	}
	return nil
}

const selectDrawSQL = `SELECT id, event_id, draw_name, draw_type, definition, version, created_at, updated_at FROM draws`

func scanDraw(row interface{ Scan(dest ...interface{}) error }) (*models.DrawRecord, error) {
	rec := &models.DrawRecord{}
	var doc []byte
	if err := row.Scan(&rec.DrawID, &rec.EventID, &rec.DrawName, &rec.DrawType, &doc, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Definition = &models.DrawDefinition{}
	if err := json.Unmarshal(doc, rec.Definition); err != nil {
		return nil, fmt.Errorf("failed to decode draw %s: %w", rec.DrawID, err)
	}
	return rec, nil
}

func (r *postgresDrawRepository) GetByID(ctx context.Context, drawID string) (*models.DrawRecord, error) {
	rec, err := scanDraw(r.db.QueryRowContext(ctx, selectDrawSQL+` WHERE id = $1`, drawID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get draw by id: %w", err)
	}
	return rec, nil
}

func (r *postgresDrawRepository) GetByIDs(ctx context.Context, drawIDs []string) ([]*models.DrawRecord, error) {
	if len(drawIDs) == 0 {
		return []*models.DrawRecord{}, nil
	}
	rows, err := r.db.QueryContext(ctx, selectDrawSQL+` WHERE id = ANY($1) ORDER BY created_at`, pq.Array(drawIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get draws by ids: %w", err)
	}
	defer rows.Close()

	records := make([]*models.DrawRecord, 0, len(drawIDs))
	for rows.Next() {
		rec, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draw rows: %w", err)
	}
	return records, nil
}

func (r *postgresDrawRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.DrawSummary, error) {
	query := `
		SELECT id, event_id, draw_name, draw_type, version, updated_at
		FROM draws
		WHERE event_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws by event: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.DrawSummary, 0)
	for rows.Next() {
		var s models.DrawSummary
		if err := rows.Scan(&s.DrawID, &s.EventID, &s.DrawName, &s.DrawType, &s.Version, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw summary row: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draw summary rows: %w", err)
	}
	return summaries, nil
}

func (r *postgresDrawRepository) Update(ctx context.Context, exec SQLExecutor, rec *models.DrawRecord) error {
	doc, err := json.Marshal(rec.Definition)
	if err != nil {
		return fmt.Errorf("failed to encode draw definition: %w", err)
	}
	query := `
		UPDATE draws
		SET   definition = $1, draw_name = $2, draw_type = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5
		RETURNING version, updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		doc, rec.DrawName, rec.DrawType, rec.DrawID, rec.Version,
	).Scan(&rec.Version, &rec.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update draw: %w", err)
	}
	// No row matched: either the draw is gone or another writer won.
	var exists bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM draws WHERE id = $1)`, rec.DrawID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check draw existence: %w", err)
	}
	if !exists {
		return ErrDrawNotFound
	}
	return ErrDrawVersionConflict
}

func (r *postgresDrawRepository) Delete(ctx context.Context, exec SQLExecutor, drawID string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM draws WHERE id = $1`, drawID)
	if err != nil {
		return fmt.Errorf("failed to delete draw: %w", err)
	}
	return checkAffectedRows(result, ErrDrawNotFound)
}
