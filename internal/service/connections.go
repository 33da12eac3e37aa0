package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/realtime"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/validate"
	"go.uber.org/zap"
)

// Notices shown to the sender of a connection request.
const (
	NoticeAlreadyConnected = "Already connected"
	NoticeRequestSent      = "Request already sent!"
)

// RequestView is a pending request with the student on the other side.
type RequestView struct {
	models.ConnectionRequest
	Student models.Student `json:"student"`
}

// ConnectionView is a connection with the other party's profile.
type ConnectionView struct {
	models.Connection
	Student models.Student `json:"student"`
}

type Connections struct {
	store  repository.Store
	events publisher
	logger *zap.Logger
}

func NewConnections(store repository.Store, events realtime.Publisher, logger *zap.Logger) *Connections {
	return &Connections{store: store, events: publisher{events: events, logger: logger}, logger: logger}
}

// SendRequest stores a pending request from the caller to receiverID.
// A request in the opposite direction does not block it.
func (c *Connections) SendRequest(ctx context.Context, session auth.Session, receiverID uuid.UUID) (*models.ConnectionRequest, error) {
	req := &models.ConnectionRequest{
		SenderID:   session.StudentID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
	}
	if err := validate.Request(req); err != nil {
		return nil, err
	}

	receiver, err := c.store.Students.GetByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("get receiver: %w", err)
	}
	if receiver == nil {
		return nil, apperr.NotFound("student not found")
	}

	existing, err := c.store.Connections.Between(ctx, session.StudentID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(NoticeAlreadyConnected)
	}

	pending, err := c.store.Requests.FindPending(ctx, session.StudentID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check pending request: %w", err)
	}
	if pending != nil {
		return nil, apperr.Conflict(NoticeRequestSent)
	}

	created, err := c.store.Requests.Create(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(NoticeRequestSent)
		}
		return nil, fmt.Errorf("create request: %w", err)
	}

	view := RequestView{ConnectionRequest: *created}
	if sender, err := c.store.Students.GetByID(ctx, session.StudentID); err == nil && sender != nil {
		view.Student = *sender
	}
	c.events.toStudent(ctx, receiverID, realtime.TypeRequestReceived, view)

	c.logger.Info("connection request sent",
		zap.String("request_id", created.ID.String()),
		zap.String("sender_id", created.SenderID.String()),
		zap.String("receiver_id", created.ReceiverID.String()),
	)
	return created, nil
}

// AcceptRequest resolves a pending request into a connection. Only the
// receiver may accept. The request is deleted and the connection created
// atomically; if the pair is already connected the existing connection is
// returned.
func (c *Connections) AcceptRequest(ctx context.Context, session auth.Session, requestID uuid.UUID) (*models.Connection, error) {
	if _, err := c.pendingFor(ctx, requestID, session.StudentID, true); err != nil {
		return nil, err
	}

	conn, err := c.store.Requests.Accept(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("accept request: %w", err)
	}
	if conn == nil {
		return nil, apperr.NotFound("request not found")
	}

	c.events.toStudent(ctx, conn.StudentID1, realtime.TypeConnectionCreated, conn)
	c.events.toStudent(ctx, conn.StudentID2, realtime.TypeConnectionCreated, conn)

	c.logger.Info("connection request accepted",
		zap.String("request_id", requestID.String()),
		zap.String("connection_id", conn.ID.String()),
	)
	return conn, nil
}

// RejectRequest deletes a pending request. Only the receiver may reject.
func (c *Connections) RejectRequest(ctx context.Context, session auth.Session, requestID uuid.UUID) error {
	req, err := c.pendingFor(ctx, requestID, session.StudentID, true)
	if err != nil {
		return err
	}
	if err := c.delete(ctx, requestID); err != nil {
		return err
	}
	c.events.toStudent(ctx, req.SenderID, realtime.TypeRequestRejected, req)
	return nil
}

// CancelRequest withdraws a pending request. Only the sender may cancel.
func (c *Connections) CancelRequest(ctx context.Context, session auth.Session, requestID uuid.UUID) error {
	req, err := c.pendingFor(ctx, requestID, session.StudentID, false)
	if err != nil {
		return err
	}
	if err := c.delete(ctx, requestID); err != nil {
		return err
	}
	c.events.toStudent(ctx, req.ReceiverID, realtime.TypeRequestCancelled, req)
	return nil
}

func (c *Connections) delete(ctx context.Context, requestID uuid.UUID) error {
	deleted, err := c.store.Requests.Delete(ctx, requestID)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if !deleted {
		return apperr.NotFound("request not found")
	}
	return nil
}

// pendingFor loads a request and checks that studentID is its receiver
// (asReceiver) or its sender.
func (c *Connections) pendingFor(ctx context.Context, requestID, studentID uuid.UUID, asReceiver bool) (*models.ConnectionRequest, error) {
	req, err := c.store.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil || req.Status != models.RequestPending {
		return nil, apperr.NotFound("request not found")
	}
	if asReceiver && req.ReceiverID != studentID {
		return nil, apperr.Forbidden("only the receiver can respond to this request")
	}
	if !asReceiver && req.SenderID != studentID {
		return nil, apperr.Forbidden("only the sender can cancel this request")
	}
	return req, nil
}

// IncomingRequests lists pending requests addressed to the caller. Requests
// whose sender no longer exists are hidden.
func (c *Connections) IncomingRequests(ctx context.Context, session auth.Session) ([]RequestView, error) {
	reqs, err := c.store.Requests.ListIncoming(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return c.withStudents(ctx, reqs, func(r models.ConnectionRequest) uuid.UUID { return r.SenderID })
}

// OutgoingRequests lists pending requests the caller has sent.
func (c *Connections) OutgoingRequests(ctx context.Context, session auth.Session) ([]RequestView, error) {
	reqs, err := c.store.Requests.ListOutgoing(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing requests: %w", err)
	}
	return c.withStudents(ctx, reqs, func(r models.ConnectionRequest) uuid.UUID { return r.ReceiverID })
}

func (c *Connections) withStudents(ctx context.Context, reqs []models.ConnectionRequest, party func(models.ConnectionRequest) uuid.UUID) ([]RequestView, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, party(r))
	}
	students, err := c.store.Students.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve students: %w", err)
	}

	out := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		st, ok := students[party(r)]
		if !ok {
			continue
		}
		out = append(out, RequestView{ConnectionRequest: r, Student: st})
	}
	return out, nil
}

// Connections lists the caller's connections with the other party's
// profile. Connections to deleted students are hidden.
func (c *Connections) Connections(ctx context.Context, session auth.Session) ([]ConnectionView, error) {
	conns, err := c.store.Connections.ListByStudent(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(conns))
	for _, conn := range conns {
		ids = append(ids, conn.Other(session.StudentID))
	}
	students, err := c.store.Students.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve students: %w", err)
	}

	out := make([]ConnectionView, 0, len(conns))
	for _, conn := range conns {
		st, ok := students[conn.Other(session.StudentID)]
		if !ok {
			continue
		}
		out = append(out, ConnectionView{Connection: conn, Student: st})
	}
	return out, nil
}
