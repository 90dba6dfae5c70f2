package calendar

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Repository stores manually created events. Vacation markers never touch it.
type Repository interface {
	StoreEvent(ctx context.Context, accountId string, event Event) error
	GetEvents(ctx context.Context, accountId string, from, to time.Time) ([]Event, error)
	DeleteEvent(ctx context.Context, accountId string, eventUid string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, accountId string, event Event) error {
	query := `INSERT INTO calendar_event (uid, account_id, title, description, start_time, end_time)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		event.UID, accountId, event.Title, event.Description,
		event.StartTime.UnixMilli(), event.EndTime.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not insert calendar event: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, accountId string, from, to time.Time) ([]Event, error) {
	// All events that overlap the period: start before the period ends and
	// end after the period starts.
	query := `SELECT uid, title, description, start_time, end_time
	          FROM calendar_event
	          WHERE account_id = $1 AND start_time <= $2 AND end_time >= $3
	          ORDER BY start_time`

	rows, err := r.db.QueryContext(ctx, query, accountId, to.UnixMilli(), from.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		var e Event
		var startMillis, endMillis int64
		if err := rows.Scan(&e.UID, &e.Title, &e.Description, &startMillis, &endMillis); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		e.StartTime = time.UnixMilli(startMillis)
		e.EndTime = time.UnixMilli(endMillis)
		e.Source = SourceManual
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, accountId string, eventUid string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM calendar_event WHERE uid = $1 AND account_id = $2`, eventUid, accountId)
	if err != nil {
		err := fmt.Errorf("could not delete calendar event: %w", err)
		log.Error(err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventNotFound
	}
	return nil
}
