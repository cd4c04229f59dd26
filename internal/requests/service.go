package requests

import (
	"StudentRequests/internal/queue"
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RequestStore persists request documents. UpdateRequestStatus only applies
// to a request that is still pending and reports whether it did.
type RequestStore interface {
	InsertRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, id primitive.ObjectID) (*Request, error)
	GetRequestsByUser(ctx context.Context, userID string) ([]*Request, error)
	GetAllRequests(ctx context.Context) ([]*Request, error)
	GetRequestsByCategory(ctx context.Context, category Category) ([]*Request, error)
	UpdateRequestStatus(ctx context.Context, id primitive.ObjectID, update StatusUpdate) (bool, error)
}

// StatusUpdate moves a pending request to a terminal status and records the
// note in the same write.
type StatusUpdate struct {
	Status  Status
	Note    string
	ActedBy string
	ActedAt time.Time
}

type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// RequestService owns the request state machine. It is the only writer of
// Request.Status.
type RequestService struct {
	store     RequestStore
	estimator *queue.Estimator
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
	intn      func(int) int

	// one lock per category serializes the backlog read and the insert
	submitLocks map[Category]*sync.Mutex
}

func NewRequestService(store RequestStore, estimator *queue.Estimator, notifier Notifier, logger *zap.Logger) *RequestService {
	locks := make(map[Category]*sync.Mutex, len(Categories))
	for _, c := range Categories {
		locks[c] = &sync.Mutex{}
	}
	return &RequestService{
		store:       store,
		estimator:   estimator,
		notifier:    notifier,
		logger:      logger.Named("requests"),
		now:         time.Now,
		intn:        rand.Intn,
		submitLocks: locks,
	}
}

// Submit records a new pending request with its frozen completion estimate.
func (s *RequestService) Submit(ctx context.Context, owner Owner, in SubmitRequest) (*Request, error) {
	category, err := ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Request) == "" {
		return nil, ErrEmptyRequest
	}

	lock := s.submitLocks[category]
	lock.Lock()
	defer lock.Unlock()

	inCategory, err := s.store.GetRequestsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("load %s backlog: %w", category, err)
	}
	var backlog []time.Time
	for _, r := range inCategory {
		if r.Status == StatusPending {
			backlog = append(backlog, r.EstimatedCompletion)
		}
	}

	now := s.now()
	estimate := s.estimator.Estimate(now, backlog)
	req := &Request{
		UserID:              owner.UserID,
		Username:            owner.Name,
		Email:               owner.Email,
		Phone:               owner.Phone,
		Category:            category,
		Body:                in.Request,
		Semester:            in.Semester,
		SubmittedAt:         now,
		Status:              StatusPending,
		EstimatedCompletion: estimate,
		EstimateDisplay:     queue.Format(estimate),
	}
	if err := s.store.InsertRequest(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("request submitted",
		zap.String("id", req.ID.Hex()),
		zap.String("userid", owner.UserID),
		zap.String("category", string(category)),
		zap.Int("backlog", len(backlog)),
		zap.Time("estimate", estimate))
	return req, nil
}

func (s *RequestService) load(ctx context.Context, id primitive.ObjectID) (*Request, error) {
	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRequestNotFound
	}
	return r, nil
}

// Cancel withdraws a pending request on behalf of its owner.
func (s *RequestService) Cancel(ctx context.Context, id primitive.ObjectID, requesterID string) error {
	r, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != requesterID {
		return ErrNotOwner
	}
	if r.Status.Terminal() {
		return ErrIllegalTransition
	}
	ok, err := s.store.UpdateRequestStatus(ctx, id, StatusUpdate{
		Status:  StatusCancelled,
		ActedBy: requesterID,
		ActedAt: s.now(),
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrIllegalTransition
	}
	s.logger.Info("request cancelled", zap.String("id", id.Hex()), zap.String("userid", requesterID))
	return nil
}

// Act resolves or rejects a pending request and attaches the staff note. The
// owner is notified only after the state change is stored; a failed
// notification is logged and does not undo it.
func (s *RequestService) Act(ctx context.Context, id primitive.ObjectID, action Status, note, staffID string) (*Request, error) {
	if action != StatusResolved && action != StatusRejected {
		return nil, ErrInvalidAction
	}
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status.Terminal() {
		return nil, ErrIllegalTransition
	}

	at := s.now()
	ok, err := s.store.UpdateRequestStatus(ctx, id, StatusUpdate{
		Status:  action,
		Note:    note,
		ActedBy: staffID,
		ActedAt: at,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIllegalTransition
	}
	r.Status = action
	r.Note = note
	r.ActedBy = staffID
	r.ActedAt = &at
	s.logger.Info("request actioned",
		zap.String("id", id.Hex()),
		zap.String("status", string(action)),
		zap.String("staff", staffID))

	if err := s.notifier.Notify(ctx, r.Email, "Request Actioned", actionedBody(r)); err != nil {
		s.logger.Warn("owner notification failed", zap.String("id", id.Hex()), zap.Error(err))
	}
	return r, nil
}

func actionedBody(r *Request) string {
	body := fmt.Sprintf("Dear %s, your %s request submitted on %s has been %s.",
		r.Username, r.Category, r.SubmittedAt.Format("2006-01-02"), strings.ToLower(string(r.Status)))
	if r.Note != "" {
		body += " Note from staff: " + r.Note
	}
	return body
}

func (s *RequestService) Get(ctx context.Context, id primitive.ObjectID) (*Request, error) {
	return s.load(ctx, id)
}

func (s *RequestService) ListByCategory(ctx context.Context, category Category) ([]*Request, error) {
	return s.store.GetRequestsByCategory(ctx, category)
}

// Queue returns the pending requests of one category in the order they will
// be served.
func (s *RequestService) Queue(ctx context.Context, category Category) ([]*Request, error) {
	all, err := s.store.GetRequestsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	pending := filterStatus(all, StatusPending)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].EstimatedCompletion.Before(pending[j].EstimatedCompletion)
	})
	return pending, nil
}

func (s *RequestService) ListByUser(ctx context.Context, userID string) ([]*Request, error) {
	return s.store.GetRequestsByUser(ctx, userID)
}

// History groups a student's requests by outcome. An empty semester or
// "allSemesters" selects every semester.
func (s *RequestService) History(ctx context.Context, userID, semester string) (*History, error) {
	all, err := s.store.GetRequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	h := &History{Pending: []*Request{}, Actioned: []*Request{}, Cancelled: []*Request{}}
	for _, r := range all {
		if semester != "" && semester != "allSemesters" && r.Semester != semester {
			continue
		}
		switch r.Status {
		case StatusPending:
			h.Pending = append(h.Pending, r)
		case StatusCancelled:
			h.Cancelled = append(h.Cancelled, r)
		default:
			h.Actioned = append(h.Actioned, r)
		}
	}
	return h, nil
}

func (s *RequestService) ListAllPending(ctx context.Context) ([]*Request, error) {
	all, err := s.store.GetAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	return filterStatus(all, StatusPending), nil
}

// PartitionByCategory splits requests into one bucket per category. Every
// category has a bucket, possibly empty.
func PartitionByCategory(rs []*Request) map[Category][]*Request {
	out := make(map[Category][]*Request, len(Categories))
	for _, c := range Categories {
		out[c] = []*Request{}
	}
	for _, r := range rs {
		out[r.Category] = append(out[r.Category], r)
	}
	return out
}

// Dashboard counts pending requests per category.
func (s *RequestService) Dashboard(ctx context.Context) (map[Category]int, error) {
	pending, err := s.ListAllPending(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[Category]int, len(Categories))
	for c, rs := range PartitionByCategory(pending) {
		counts[c] = len(rs)
	}
	return counts, nil
}

// PickRandomPending returns a uniformly chosen pending request, or nil when
// nothing is pending.
func (s *RequestService) PickRandomPending(ctx context.Context) (*Request, error) {
	pending, err := s.ListAllPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	return pending[s.intn(len(pending))], nil
}

func filterStatus(rs []*Request, status Status) []*Request {
	out := []*Request{}
	for _, r := range rs {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
