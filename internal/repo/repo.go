package repo

import (
	"context"
	"database/sql"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetByLogin(ctx context.Context, login string) (int, string, error)
}

// Design is one saved parameter set. The geometry columns hold the solved
// tuple, never a raw candidate.
type Design struct {
	ID               int       `json:"id"`
	UserID           int       `json:"-"`
	Name             string    `json:"name"`
	Span             float64   `json:"span"`
	CarriagewayWidth float64   `json:"carriageway_width"`
	SkewAngle        float64   `json:"skew_angle"`
	OverallWidth     float64   `json:"overall_width"`
	GirderSpacing    float64   `json:"girder_spacing"`
	GirderCount      int       `json:"girder_count"`
	DeckOverhang     float64   `json:"deck_overhang"`
	CreatedAt        time.Time `json:"created_at"`
}

type DesignRepository interface {
	SaveDesign(ctx context.Context, d Design) (int, error)
	ListDesigns(ctx context.Context, userID int) ([]Design, error)
	GetDesign(ctx context.Context, userID, id int) (Design, bool, error)
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"
	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

type PostgresDesignRepository struct {
	db *sql.DB
}

func NewPostgresDesignDB(db *sql.DB) *PostgresDesignRepository {
	return &PostgresDesignRepository{db: db}
}

const designColumns = "id, user_id, name, span, carriageway_width, skew_angle, overall_width, girder_spacing, girder_count, deck_overhang, created_at"

func (r *PostgresDesignRepository) SaveDesign(ctx context.Context, d Design) (int, error) {
	var id int
	query := `INSERT INTO designs
		(user_id, name, span, carriageway_width, skew_angle, overall_width, girder_spacing, girder_count, deck_overhang)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		d.UserID, d.Name, d.Span, d.CarriagewayWidth, d.SkewAngle,
		d.OverallWidth, d.GirderSpacing, d.GirderCount, d.DeckOverhang,
	).Scan(&id)
	return id, err
}

func (r *PostgresDesignRepository) ListDesigns(ctx context.Context, userID int) ([]Design, error) {
	query := "SELECT " + designColumns + " FROM designs WHERE user_id=$1 ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var designs []Design
	for rows.Next() {
		var d Design
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Span, &d.CarriagewayWidth, &d.SkewAngle,
			&d.OverallWidth, &d.GirderSpacing, &d.GirderCount, &d.DeckOverhang, &d.CreatedAt); err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

func (r *PostgresDesignRepository) GetDesign(ctx context.Context, userID, id int) (Design, bool, error) {
	query := "SELECT " + designColumns + " FROM designs WHERE user_id=$1 AND id=$2"
	var d Design
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&d.ID, &d.UserID, &d.Name, &d.Span, &d.CarriagewayWidth, &d.SkewAngle,
		&d.OverallWidth, &d.GirderSpacing, &d.GirderCount, &d.DeckOverhang, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Design{}, false, nil
		}
		return Design{}, false, err
	}
	return d, true, nil
}
