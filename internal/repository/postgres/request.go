package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/repository"
)

var requestColumns = []string{"id", "sender_id", "receiver_id", "status", "request_date"}

type RequestStore struct {
	pool *pgxpool.Pool
}

func NewRequestStore(pool *pgxpool.Pool) *RequestStore {
	return &RequestStore{pool: pool}
}

// Create relies on the partial unique index over pending (sender, receiver)
// pairs, so two concurrent sends store one request.
func (s *RequestStore) Create(ctx context.Context, r *models.ConnectionRequest) (*models.ConnectionRequest, error) {
	sql, args, err := psql.Insert("connection_requests").
		Columns("sender_id", "receiver_id", "status").
		Values(r.SenderID, r.ReceiverID, string(models.RequestPending)).
		Suffix("RETURNING id, sender_id, receiver_id, status, request_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert request: %w", err)
	}

	req, err := scanRequest(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert request: %w", err)
	}
	return req, nil
}

func (s *RequestStore) GetByID(ctx context.Context, requestID uuid.UUID) (*models.ConnectionRequest, error) {
	return s.getOne(ctx, squirrel.Eq{"id": requestID})
}

func (s *RequestStore) FindPending(ctx context.Context, senderID, receiverID uuid.UUID) (*models.ConnectionRequest, error) {
	return s.getOne(ctx, squirrel.Eq{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"status":      string(models.RequestPending),
	})
}

func (s *RequestStore) ListIncoming(ctx context.Context, receiverID uuid.UUID) ([]models.ConnectionRequest, error) {
	return s.list(ctx, squirrel.Eq{"receiver_id": receiverID, "status": string(models.RequestPending)})
}

func (s *RequestStore) ListOutgoing(ctx context.Context, senderID uuid.UUID) ([]models.ConnectionRequest, error) {
	return s.list(ctx, squirrel.Eq{"sender_id": senderID, "status": string(models.RequestPending)})
}

func (s *RequestStore) Delete(ctx context.Context, requestID uuid.UUID) (bool, error) {
	sql, args, err := psql.Delete("connection_requests").Where(squirrel.Eq{"id": requestID}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete request: %w", err)
	}
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("delete request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Accept runs in one transaction:
//
//  1. lock the pending requests of the pair in both directions, ordered by
//     id, so accepts of A->B and B->A queue up instead of deadlocking
//  2. delete the request (a concurrent accept finds nothing to delete)
//  3. drop any pending request in the opposite direction
//  4. insert the connection, or read the existing one if the pair index
//     already holds it
func (s *RequestStore) Accept(ctx context.Context, requestID uuid.UUID) (*models.Connection, error) {
	var conn *models.Connection

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		sql, args, err := psql.Select("sender_id", "receiver_id").
			From("connection_requests").
			Where(squirrel.Eq{"id": requestID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build get request: %w", err)
		}

		var senderID, receiverID uuid.UUID
		if err := tx.QueryRow(ctx, sql, args...).Scan(&senderID, &receiverID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("get request: %w", err)
		}

		sql, args, err = psql.Select("id").
			From("connection_requests").
			Where(squirrel.Or{
				squirrel.Eq{"sender_id": senderID, "receiver_id": receiverID},
				squirrel.Eq{"sender_id": receiverID, "receiver_id": senderID},
			}).
			OrderBy("id").
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build lock requests: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("lock requests: %w", err)
		}

		sql, args, err = psql.Delete("connection_requests").
			Where(squirrel.Eq{"id": requestID}).
			Suffix("RETURNING sender_id, receiver_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete request: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&senderID, &receiverID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("delete request: %w", err)
		}

		sql, args, err = psql.Delete("connection_requests").
			Where(squirrel.Eq{
				"sender_id":   receiverID,
				"receiver_id": senderID,
				"status":      string(models.RequestPending),
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete reverse request: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete reverse request: %w", err)
		}

		sql, args, err = psql.Insert("connections").
			Columns("student_id_1", "student_id_2").
			Values(senderID, receiverID).
			Suffix("ON CONFLICT DO NOTHING RETURNING id, student_id_1, student_id_2, connection_date").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert connection: %w", err)
		}

		conn, err = scanConnection(tx.QueryRow(ctx, sql, args...))
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("insert connection: %w", err)
		}

		conn, err = getConnection(ctx, tx, pairOf(senderID, receiverID))
		if err != nil {
			return err
		}
		if conn == nil {
			return fmt.Errorf("connection for %s and %s vanished", senderID, receiverID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("accept request: %w", err)
	}
	return conn, nil
}

func (s *RequestStore) getOne(ctx context.Context, where squirrel.Eq) (*models.ConnectionRequest, error) {
	sql, args, err := psql.Select(requestColumns...).
		From("connection_requests").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get request: %w", err)
	}

	req, err := scanRequest(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

func (s *RequestStore) list(ctx context.Context, where squirrel.Eq) ([]models.ConnectionRequest, error) {
	sql, args, err := psql.Select(requestColumns...).
		From("connection_requests").
		Where(where).
		OrderBy("request_date DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list requests: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	requests := make([]models.ConnectionRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

func scanRequest(row pgx.Row) (*models.ConnectionRequest, error) {
	var (
		r      models.ConnectionRequest
		status string
	)
	if err := row.Scan(&r.ID, &r.SenderID, &r.ReceiverID, &status, &r.RequestDate); err != nil {
		return nil, err
	}
	r.Status = models.RequestStatus(status)
	return &r, nil
}
