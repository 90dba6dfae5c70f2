package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreSession(ctx context.Context, accountId string, session Session) error
	GetSession(ctx context.Context, accountId string, sessionId string) (Session, error)
	ListSessions(ctx context.Context, accountId string) ([]Session, error)
	StoreMessage(ctx context.Context, message Message) error
	GetMessage(ctx context.Context, accountId string, sessionId string, messageId string) (Message, error)
	SetFavorite(ctx context.Context, accountId string, sessionId string, messageId string, favorite bool) error
	ListFavorites(ctx context.Context, accountId string) ([]Message, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreSession(ctx context.Context, accountId string, session Session) error {
	query := `INSERT INTO chat_session (id, account_id, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, session.Id, accountId, session.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not insert chat session: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetSession(ctx context.Context, accountId string, sessionId string) (Session, error) {
	query := `SELECT id, created_at FROM chat_session WHERE id = $1 AND account_id = $2`

	var session Session
	var createdMillis int64
	err := r.db.QueryRowContext(ctx, query, sessionId, accountId).Scan(&session.Id, &createdMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query chat session: %w", err)
		log.Error(err)
		return Session{}, err
	}
	session.CreatedAt = time.UnixMilli(createdMillis)

	messages, err := r.sessionMessages(ctx, session.Id)
	if err != nil {
		return Session{}, err
	}
	session.Messages = messages
	return session, nil
}

func (r *RepositoryImpl) ListSessions(ctx context.Context, accountId string) ([]Session, error) {
	query := `SELECT id, created_at FROM chat_session WHERE account_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountId)
	if err != nil {
		err := fmt.Errorf("could not query chat sessions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	sessions := make([]Session, 0, 10)
	for rows.Next() {
		var session Session
		var createdMillis int64
		if err := rows.Scan(&session.Id, &createdMillis); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		session.CreatedAt = time.UnixMilli(createdMillis)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		messages, err := r.sessionMessages(ctx, sessions[i].Id)
		if err != nil {
			return nil, err
		}
		sessions[i].Messages = messages
	}
	return sessions, nil
}

func (r *RepositoryImpl) StoreMessage(ctx context.Context, message Message) error {
	query := `INSERT INTO chat_message (id, session_id, role, content, favorite, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		message.Id, message.SessionId, string(message.Role), message.Content,
		message.Favorite, message.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not insert chat message: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetMessage(ctx context.Context, accountId string, sessionId string, messageId string) (Message, error) {
	query := `SELECT m.id, m.session_id, m.role, m.content, m.favorite, m.created_at
	          FROM chat_message m
	          JOIN chat_session s ON s.id = m.session_id
	          WHERE m.id = $1 AND m.session_id = $2 AND s.account_id = $3`

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, messageId, sessionId, accountId))
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrMessageNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query chat message: %w", err)
		log.Error(err)
		return Message{}, err
	}
	return m, nil
}

func (r *RepositoryImpl) SetFavorite(ctx context.Context, accountId string, sessionId string, messageId string, favorite bool) error {
	query := `UPDATE chat_message SET favorite = $1
	          WHERE id = $2 AND session_id = $3
	            AND session_id IN (SELECT id FROM chat_session WHERE account_id = $4)`

	res, err := r.db.ExecContext(ctx, query, favorite, messageId, sessionId, accountId)
	if err != nil {
		err := fmt.Errorf("could not update chat message: %w", err)
		log.Error(err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListFavorites(ctx context.Context, accountId string) ([]Message, error) {
	query := `SELECT m.id, m.session_id, m.role, m.content, m.favorite, m.created_at
	          FROM chat_message m
	          JOIN chat_session s ON s.id = m.session_id
	          WHERE s.account_id = $1 AND m.favorite
	          ORDER BY m.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountId)
	if err != nil {
		err := fmt.Errorf("could not query favorite messages: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0, 10)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *RepositoryImpl) sessionMessages(ctx context.Context, sessionId string) ([]Message, error) {
	query := `SELECT id, session_id, role, content, favorite, created_at
	          FROM chat_message WHERE session_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, sessionId)
	if err != nil {
		err := fmt.Errorf("could not query chat messages: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0, 10)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var m Message
	var role string
	var createdMillis int64
	if err := row.Scan(&m.Id, &m.SessionId, &role, &m.Content, &m.Favorite, &createdMillis); err != nil {
		return Message{}, err
	}
	m.Role = Role(role)
	m.CreatedAt = time.UnixMilli(createdMillis)
	return m, nil
}
