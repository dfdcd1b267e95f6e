package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"workshop-manager/internal/core"
)

// ImportState is the lifecycle of one invoice review session.
//
//	AwaitingLabor → ReadyToCommit → Committing → Committed
//	AwaitingLabor / ReadyToCommit → Cancelled
//
// A session whose invoice matched every item skips straight to
// ReadyToCommit. Committing marks a commit in flight so a racing second
// commit is rejected. Committed and Cancelled are terminal.
type ImportState string

const (
	StateAwaitingLabor ImportState = "awaiting_labor"
	StateReadyToCommit ImportState = "ready_to_commit"
	StateCommitting    ImportState = "committing"
	StateCommitted     ImportState = "committed"
	StateCancelled     ImportState = "cancelled"
)

var (
	ErrSessionNotFound = errors.New("import session not found or expired")
	ErrSessionNotReady = errors.New("import session is not ready to commit")
)

// importSession holds the in-memory pending state of one invoice review.
// Nothing here is persisted; cancelling simply drops it. Sessions are
// owned by their sessionStore: they never leave it, and every method below
// runs with the store mutex held.
type importSession struct {
	id         string
	meta       core.InvoiceMeta
	matched    []core.MatchedItem
	unmatched  []core.PendingItem
	labor      map[string]decimal.Decimal
	categoryID *int
	state      ImportState
	createdAt  time.Time
}

// setLabor merges supplied labor costs and recomputes readiness.
func (s *importSession) setLabor(input ImportLaborInput) error {
	if s.state != StateAwaitingLabor && s.state != StateReadyToCommit {
		return fmt.Errorf("session %s is %s: %w", s.id, s.state, ErrSessionNotReady)
	}
	for name, cost := range input.LaborCosts {
		if cost.IsNegative() {
			return fmt.Errorf("%w: %q", core.ErrNegativeLaborCost, name)
		}
		s.labor[name] = cost
	}
	if input.CategoryID != nil {
		s.categoryID = input.CategoryID
	}
	if len(s.missingLabor()) == 0 {
		s.state = StateReadyToCommit
	}
	return nil
}

// missingLabor lists pending item names still lacking a labor cost.
func (s *importSession) missingLabor() []string {
	var missing []string
	for _, item := range s.unmatched {
		if _, ok := s.labor[item.Name]; !ok {
			missing = append(missing, item.Name)
		}
	}
	return missing
}

func (s *importSession) review() *ImportReview {
	return &ImportReview{
		SessionID:    s.id,
		State:        s.state,
		Meta:         s.meta,
		Matched:      s.matched,
		Unmatched:    s.unmatched,
		MissingLabor: s.missingLabor(),
	}
}

// commitPlan is the value-copy of everything a commit needs, taken while
// the session transitions to Committing. Once handed out it shares nothing
// mutable with the session, so persistence runs without the store lock.
type commitPlan struct {
	meta       core.InvoiceMeta
	matched    []core.MatchedItem
	unmatched  []core.PendingItem
	labor      map[string]decimal.Decimal
	categoryID *int
}

func (s *importSession) plan() commitPlan {
	labor := make(map[string]decimal.Decimal, len(s.labor))
	for name, cost := range s.labor {
		labor[name] = cost
	}
	return commitPlan{
		meta:       s.meta,
		matched:    append([]core.MatchedItem(nil), s.matched...),
		unmatched:  append([]core.PendingItem(nil), s.unmatched...),
		labor:      labor,
		categoryID: s.categoryID,
	}
}

// sessionTTL bounds how long an unreviewed import survives.
const sessionTTL = 30 * time.Minute

// sessionStore keeps pending import sessions, keyed by uuid. All session
// reads and mutations go through the store so its mutex serializes them;
// sessions expire after sessionTTL so abandoned reviews do not accumulate.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*importSession
	now      func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*importSession),
		now:      time.Now,
	}
}

// open creates a session for a freshly reconciled invoice and returns its
// review.
func (st *sessionStore) open(meta core.InvoiceMeta, rec core.Reconciliation) *ImportReview {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := &importSession{
		id:        uuid.NewString(),
		meta:      meta,
		matched:   rec.Matched,
		unmatched: rec.Unmatched,
		labor:     make(map[string]decimal.Decimal),
		state:     StateAwaitingLabor,
		createdAt: st.now(),
	}
	if len(rec.Unmatched) == 0 {
		s.state = StateReadyToCommit
	}
	st.sessions[s.id] = s
	return s.review()
}

// lookup finds a live session. Callers hold the store mutex.
func (st *sessionStore) lookup(id string) (*importSession, error) {
	s, ok := st.sessions[id]
	if !ok || st.now().Sub(s.createdAt) > sessionTTL {
		delete(st.sessions, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// setLabor applies labor costs to a session and returns its updated review.
func (st *sessionStore) setLabor(id string, input ImportLaborInput) (*ImportReview, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := s.setLabor(input); err != nil {
		return nil, err
	}
	return s.review(), nil
}

// beginCommit atomically moves a ready session to Committing and hands out
// a value-copy of its contents. Exactly one caller wins; concurrent or
// repeated commits get ErrSessionNotReady.
func (st *sessionStore) beginCommit(id string) (commitPlan, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.lookup(id)
	if err != nil {
		return commitPlan{}, err
	}
	if s.state != StateReadyToCommit {
		return commitPlan{}, fmt.Errorf("session %s is %s: %w", id, s.state, ErrSessionNotReady)
	}
	s.state = StateCommitting
	return s.plan(), nil
}

// cancel drops a session. A session whose commit is in flight cannot be
// cancelled anymore.
func (st *sessionStore) cancel(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.lookup(id)
	if err != nil {
		return err
	}
	if s.state == StateCommitting {
		return fmt.Errorf("session %s is %s: %w", id, s.state, ErrSessionNotReady)
	}
	s.state = StateCancelled
	delete(st.sessions, id)
	return nil
}

// remove closes a session once its commit concluded, successfully or not.
func (st *sessionStore) remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// startPurge evicts expired sessions in the background until ctx ends.
func (st *sessionStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sessionTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.mu.Lock()
				for id, s := range st.sessions {
					if st.now().Sub(s.createdAt) > sessionTTL {
						delete(st.sessions, id)
					}
				}
				st.mu.Unlock()
			}
		}
	}()
}
