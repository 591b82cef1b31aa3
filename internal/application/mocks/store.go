// Package mocks holds in-memory implementations of the application ports for tests.
package mocks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/domain"
)

// Store keeps contributions, recurring series, access codes and invoice claims in memory.
// Records are copied in and out so callers cannot change stored state without Update.
type Store struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	contributions map[int64]domain.Contribution
	recurs        map[int64]domain.ContributionRecur
	accessCodes   map[string]domain.AccessCodeRecord
	claims        map[string]int64

	UpdateContributionFn func(ctx context.Context, c *domain.Contribution) error
	ClaimInvoiceFn       func(ctx context.Context, invoiceID string, contributionID int64) error
}

func NewStore() *Store {
	return &Store{
		contributions: make(map[int64]domain.Contribution),
		recurs:        make(map[int64]domain.ContributionRecur),
		accessCodes:   make(map[string]domain.AccessCodeRecord),
		claims:        make(map[string]int64),
	}
}

var (
	_ application.ContributionRepository = (*Store)(nil)
	_ application.DuplicateChecker       = (*Store)(nil)
	_ application.TransactionManager     = (*Store)(nil)
)

// PutContribution seeds a contribution.
func (s *Store) PutContribution(c domain.Contribution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributions[c.ID] = c
}

// PutRecur seeds a recurring series.
func (s *Store) PutRecur(r domain.ContributionRecur) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recurs[r.ID] = r
}

// PutAccessCode seeds an access code record.
func (s *Store) PutAccessCode(r domain.AccessCodeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessCodes[r.AccessCode] = r
}

func (s *Store) Contribution(id int64) domain.Contribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contributions[id]
}

func (s *Store) Recur(id int64) domain.ContributionRecur {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recurs[id]
}

func (s *Store) AccessCode(code string) (domain.AccessCodeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.accessCodes[code]
	return r, ok
}

func (s *Store) AccessCodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accessCodes)
}

// Contributions returns the contribution repository view.
func (s *Store) Contributions() application.ContributionRepository { return s }

// AccessCodes returns the access code repository view.
func (s *Store) AccessCodes() application.AccessCodeRepository { return accessCodeView{s} }

// Recurs returns the recurring series repository view.
func (s *Store) Recurs() application.RecurRepository { return recurView{s} }

func (s *Store) FindByID(_ context.Context, id int64) (*domain.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributions[id]
	if !ok {
		return nil, domain.NewContributionNotFoundError(id)
	}
	return &c, nil
}

func (s *Store) Update(ctx context.Context, c *domain.Contribution) error {
	if s.UpdateContributionFn != nil {
		return s.UpdateContributionFn(ctx, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contributions[c.ID]; !ok {
		return domain.NewContributionNotFoundError(c.ID)
	}
	s.contributions[c.ID] = *c
	return nil
}

func (s *Store) ClaimInvoice(ctx context.Context, invoiceID string, contributionID int64) error {
	if s.ClaimInvoiceFn != nil {
		return s.ClaimInvoiceFn(ctx, invoiceID, contributionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.contributions {
		if id != contributionID && c.InvoiceID == invoiceID {
			return domain.NewDuplicateSubmissionError(invoiceID)
		}
	}
	if _, taken := s.claims[invoiceID]; taken {
		return domain.NewDuplicateSubmissionError(invoiceID)
	}
	s.claims[invoiceID] = contributionID
	return nil
}

// WithinTransaction runs fn serially and restores the previous state when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos application.TxRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	err := fn(ctx, application.TxRepositories{
		Contributions: s,
		AccessCodes:   accessCodeView{s},
		Recurs:        recurView{s},
	})
	if err != nil {
		s.restore(snapshot)
	}
	return err
}

type storeState struct {
	contributions map[int64]domain.Contribution
	recurs        map[int64]domain.ContributionRecur
	accessCodes   map[string]domain.AccessCodeRecord
}

func (s *Store) snapshot() storeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := storeState{
		contributions: make(map[int64]domain.Contribution, len(s.contributions)),
		recurs:        make(map[int64]domain.ContributionRecur, len(s.recurs)),
		accessCodes:   make(map[string]domain.AccessCodeRecord, len(s.accessCodes)),
	}
	for k, v := range s.contributions {
		st.contributions[k] = v
	}
	for k, v := range s.recurs {
		st.recurs[k] = v
	}
	for k, v := range s.accessCodes {
		st.accessCodes[k] = v
	}
	return st
}

func (s *Store) restore(st storeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributions = st.contributions
	s.recurs = st.recurs
	s.accessCodes = st.accessCodes
}

type accessCodeView struct{ s *Store }

func (v accessCodeView) Create(_ context.Context, r *domain.AccessCodeRecord) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	v.s.accessCodes[r.AccessCode] = *r
	return nil
}

func (v accessCodeView) FindByAccessCode(_ context.Context, code string) (*domain.AccessCodeRecord, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.accessCodes[code]
	if !ok {
		return nil, domain.NewUnknownAccessCodeError(code)
	}
	return &r, nil
}

func (v accessCodeView) MarkFinalized(_ context.Context, code string, at time.Time) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.accessCodes[code]
	if !ok || r.FinalizedAt != nil {
		return false, nil
	}
	r.FinalizedAt = &at
	v.s.accessCodes[code] = r
	return true, nil
}

func (v accessCodeView) MarkChecked(_ context.Context, code string, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.accessCodes[code]
	if !ok || r.FinalizedAt != nil {
		return nil
	}
	r.LastCheckedAt = &at
	v.s.accessCodes[code] = r
	return nil
}

// FindUnfinalized orders like the Postgres repository: least recently checked first,
// falling back to creation time.
func (v accessCodeView) FindUnfinalized(_ context.Context, createdBefore time.Time, limit int) ([]*domain.AccessCodeRecord, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []*domain.AccessCodeRecord
	for _, r := range v.s.accessCodes {
		if r.FinalizedAt == nil && r.CreatedAt.Before(createdBefore) {
			out = append(out, &r)
		}
	}
	sortKey := func(r *domain.AccessCodeRecord) time.Time {
		if r.LastCheckedAt != nil {
			return *r.LastCheckedAt
		}
		return r.CreatedAt
	}
	slices.SortFunc(out, func(a, b *domain.AccessCodeRecord) int {
		if c := sortKey(a).Compare(sortKey(b)); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type recurView struct{ s *Store }

func (v recurView) FindByID(_ context.Context, id int64) (*domain.ContributionRecur, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.recurs[id]
	if !ok {
		return nil, domain.NewSubscriptionNotFoundError("")
	}
	return &r, nil
}

func (v recurView) FindByProcessorToken(_ context.Context, processorID int64, token string) (*domain.ContributionRecur, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, r := range v.s.recurs {
		if r.PaymentProcessorID == processorID && r.ProcessorSubscriptionToken == token {
			return &r, nil
		}
	}
	return nil, domain.NewSubscriptionNotFoundError(token)
}

func (v recurView) Update(_ context.Context, r *domain.ContributionRecur) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.recurs[r.ID]; !ok {
		return domain.NewSubscriptionNotFoundError(r.ProcessorSubscriptionToken)
	}
	v.s.recurs[r.ID] = *r
	return nil
}
