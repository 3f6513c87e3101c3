package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("participant with this id already exists")
)

// ParticipantRepository reads the tournament's participants. Draws only
// reference them by id.
type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, id string) (*models.Participant, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	if p.ParticipantType == "" {
		p.ParticipantType = models.ParticipantTypeIndividual
	}
	query := `
		INSERT INTO participants (id, tournament_id, participant_name, participant_type, nationality, club_code, individual_participant_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ParticipantID,
		p.TournamentID,
		p.ParticipantName,
		p.ParticipantType,
		p.Nationality,
		p.ClubCode,
		pq.Array(p.IndividualParticipantIDs),
	).Scan(&p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrParticipantConflict
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

const selectParticipantSQL = `
	SELECT id, tournament_id, participant_name, participant_type, nationality, club_code, individual_participant_ids, created_at
	FROM participants`

func scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ParticipantID,
		&p.TournamentID,
		&p.ParticipantName,
		&p.ParticipantType,
		&p.Nationality,
		&p.ClubCode,
		pq.Array(&p.IndividualParticipantIDs),
		&p.CreatedAt,
	)
}

func (r *postgresParticipantRepository) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	p := &models.Participant{}
	err := scanParticipant(r.db.QueryRowContext(ctx, selectParticipantSQL+` WHERE id = $1`, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

// FindByIDs returns the participants found, keyed by id. Unknown ids are
// absent from the map.
func (r *postgresParticipantRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Participant, error) {
	found := make(map[string]*models.Participant, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	rows, err := r.db.QueryContext(ctx, selectParticipantSQL+` WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find participants by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Participant{}
		if err := scanParticipant(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		found[p.ParticipantID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return found, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, selectParticipantSQL+` WHERE tournament_id = $1 ORDER BY created_at ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by tournament: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := scanParticipant(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}
