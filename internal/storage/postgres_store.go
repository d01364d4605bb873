package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/tdenemark/hokieride/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Insert(ctx context.Context, o models.RideOffer) (models.RideOffer, error) {
	o.ID = uuid.NewString()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO offers(id, driver_id, direction, date_time, pickup, dropoff, seats, seats_left, price, notes, venmo, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		o.ID, o.DriverID, string(o.Direction), o.ScheduledAt, o.Pickup, o.Dropoff,
		o.SeatsTotal, o.SeatsLeft, o.Price, o.Notes, o.Venmo, o.CreatedAt)
	if err != nil {
		return models.RideOffer{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return o, nil
}

func (p *PostgresStore) QueryByDirection(ctx context.Context, d models.Direction) ([]models.RideOffer, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, driver_id, direction, date_time, pickup, dropoff, seats, seats_left, price, notes, venmo, created_at
		 FROM offers WHERE direction=$1 ORDER BY date_time ASC, created_at ASC`, string(d))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]models.RideOffer, 0)
	for rows.Next() {
		var o models.RideOffer
		var dir string
		if err := rows.Scan(&o.ID, &o.DriverID, &dir, &o.ScheduledAt, &o.Pickup, &o.Dropoff,
			&o.SeatsTotal, &o.SeatsLeft, &o.Price, &o.Notes, &o.Venmo, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		o.Direction = models.Direction(dir)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

// ReserveSeats uses a conditional UPDATE so two concurrent reservations can
// never take the seat count below zero.
func (p *PostgresStore) ReserveSeats(ctx context.Context, id string, count int) (models.RideOffer, error) {
	var o models.RideOffer
	var dir string
	err := p.db.QueryRowContext(ctx,
		`UPDATE offers SET seats_left = seats_left - $2
		 WHERE id = $1 AND seats_left >= $2
		 RETURNING id, driver_id, direction, date_time, pickup, dropoff, seats, seats_left, price, notes, venmo, created_at`,
		id, count).Scan(&o.ID, &o.DriverID, &dir, &o.ScheduledAt, &o.Pickup, &o.Dropoff,
		&o.SeatsTotal, &o.SeatsLeft, &o.Price, &o.Notes, &o.Venmo, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// distinguish a missing offer from one that is simply full
		var left int
		if e := p.db.QueryRowContext(ctx, `SELECT seats_left FROM offers WHERE id=$1`, id).Scan(&left); e != nil {
			if errors.Is(e, sql.ErrNoRows) {
				return models.RideOffer{}, ErrNotFound
			}
			return models.RideOffer{}, fmt.Errorf("%w: %v", ErrUnavailable, e)
		}
		return models.RideOffer{}, ErrConflict
	}
	if err != nil {
		return models.RideOffer{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	o.Direction = models.Direction(dir)
	return o, nil
}
