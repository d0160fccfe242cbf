package outreach_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

// memStore implements every repository port in memory with the same guards
// the postgres repositories apply.
type memStore struct {
	mu sync.Mutex

	jobs         map[string]*domain.ImportJob
	items        []domain.ImportJobItem
	nextItemID   int64
	invitations  map[string]domain.Invitation
	institutions []domain.Institution

	createInstitutionErr func(name string) error
	createInvitationErr  func(email string) error
	recordOutcomeErr     error
	getErr               error
}

func newMemStore() *memStore {
	return &memStore{
		jobs:        make(map[string]*domain.ImportJob),
		invitations: make(map[string]domain.Invitation),
	}
}

func (s *memStore) addJob(id, sourceKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.jobs[id] = &domain.ImportJob{
		ID:        id,
		Status:    domain.JobStatusUploaded,
		SourceKey: sourceKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *memStore) seedInvitation(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations[email] = domain.Invitation{ID: "seed-" + email, Email: email}
}

func (s *memStore) job(id string) domain.ImportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[id]
}

func (s *memStore) itemsFor(jobID string) []domain.ImportJobItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ImportJobItem
	for _, item := range s.items {
		if item.JobID == jobID {
			out = append(out, item)
		}
	}
	return out
}

func (s *memStore) Create(ctx context.Context, sourceKey string) (domain.ImportJob, error) {
	return domain.ImportJob{}, errors.New("not used")
}

func (s *memStore) Get(ctx context.Context, jobID string) (domain.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return domain.ImportJob{}, s.getErr
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ImportJob{}, domain.ErrImportJobNotFound
	}
	return *job, nil
}

func (s *memStore) TransitionStatus(ctx context.Context, jobID string, from, to domain.JobStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return false, domain.ErrImportJobNotFound
	}
	if job.Status != from || !from.CanTransitionTo(to) {
		return false, nil
	}
	job.Status = to
	job.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *memStore) SetTotalRows(ctx context.Context, jobID string, totalRows int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrImportJobNotFound
	}
	if job.TotalRows == 0 {
		job.TotalRows = totalRows
	}
	return nil
}

func (s *memStore) Complete(ctx context.Context, jobID string, completedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return false, domain.ErrImportJobNotFound
	}
	if job.Status != domain.JobStatusProcessing {
		return false, nil
	}
	job.Status = domain.JobStatusCompleted
	job.CompletedAt = &completedAt
	return true, nil
}

func (s *memStore) RecordImportOutcome(ctx context.Context, outcome domain.ImportOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordOutcomeErr != nil {
		return s.recordOutcomeErr
	}
	for i := range s.items {
		item := &s.items[i]
		if item.ID != outcome.ItemID || item.JobID != outcome.JobID {
			continue
		}
		if item.Status != domain.ItemStatusValid || item.InviteID != nil {
			return domain.ErrConcurrentUpdate
		}
		item.Status = outcome.Status
		item.Reason = outcome.Reason
		if outcome.InviteID != "" {
			id := outcome.InviteID
			item.InviteID = &id
		}
		if outcome.InstitutionID != "" {
			id := outcome.InstitutionID
			item.InstitutionID = &id
		}
		job := s.jobs[outcome.JobID]
		job.Counters = job.Counters.Add(outcome.Counters())
		return nil
	}
	return domain.ErrConcurrentUpdate
}

func (s *memStore) CommitValidationSlice(ctx context.Context, slice domain.ValidationSlice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[slice.JobID]
	if !ok {
		return domain.ErrImportJobNotFound
	}
	if job.ProcessedRows != slice.FromRow {
		return domain.ErrConcurrentUpdate
	}
	now := time.Now().UTC()
	for _, c := range slice.Items {
		s.nextItemID++
		s.items = append(s.items, domain.ImportJobItem{
			ID:                 s.nextItemID,
			JobID:              slice.JobID,
			RowNumber:          c.RowNumber,
			EmailRaw:           c.EmailRaw,
			EmailNormalized:    c.EmailNormalized,
			InstitutionNameRaw: c.InstitutionNameRaw,
			Status:             c.Status,
			Reason:             c.Reason,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	job.Counters = job.Counters.Add(slice.Counters)
	job.ProcessedRows = slice.ToRow
	return nil
}

func (s *memStore) PriorRows(ctx context.Context, jobID string, emails []string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		wanted[e] = struct{}{}
	}
	out := make(map[string]int)
	for _, item := range s.items {
		if item.JobID != jobID {
			continue
		}
		if _, ok := wanted[item.EmailNormalized]; !ok {
			continue
		}
		switch item.Status {
		case domain.ItemStatusValid, domain.ItemStatusDuplicateInFile, domain.ItemStatusAlreadyExistsDB:
		default:
			continue
		}
		if prior, ok := out[item.EmailNormalized]; !ok || item.RowNumber < prior {
			out[item.EmailNormalized] = item.RowNumber
		}
	}
	return out, nil
}

func (s *memStore) NextValid(ctx context.Context, jobID string, limit int) ([]domain.ImportJobItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ImportJobItem
	for _, item := range s.items {
		if item.JobID == jobID && item.Status == domain.ItemStatusValid && item.InviteID == nil {
			out = append(out, item)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) List(ctx context.Context, filter domain.ItemFilter) ([]domain.ImportJobItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.ImportJobItem
	for _, item := range s.items {
		if item.JobID != filter.JobID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, item.Status) {
			continue
		}
		matched = append(matched, item)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func containsStatus(statuses []domain.ItemStatus, status domain.ItemStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memInvitations struct{ *memStore }

func (s memInvitations) ExistingEmails(ctx context.Context, emails []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{})
	for _, e := range emails {
		if _, ok := s.invitations[e]; ok {
			out[e] = struct{}{}
		}
	}
	return out, nil
}

func (s memInvitations) FindByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invitation, ok := s.invitations[email]
	if !ok {
		return domain.Invitation{}, domain.ErrInvitationNotFound
	}
	return invitation, nil
}

func (s memInvitations) Create(ctx context.Context, invitation domain.Invitation) (domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createInvitationErr != nil {
		if err := s.createInvitationErr(invitation.Email); err != nil {
			return domain.Invitation{}, err
		}
	}
	if _, ok := s.invitations[invitation.Email]; ok {
		return domain.Invitation{}, errors.New("duplicate invitation email")
	}
	s.invitations[invitation.Email] = invitation
	return invitation, nil
}

type memInstitutions struct{ *memStore }

func (s memInstitutions) FindByName(ctx context.Context, name string) (domain.Institution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range s.institutions {
		if strings.EqualFold(inst.LegalName, name) || strings.EqualFold(inst.TradingName, name) {
			return inst, nil
		}
	}
	return domain.Institution{}, domain.ErrInstitutionNotFound
}

func (s memInstitutions) Create(ctx context.Context, institution domain.Institution) (domain.Institution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createInstitutionErr != nil {
		if err := s.createInstitutionErr(institution.LegalName); err != nil {
			return domain.Institution{}, err
		}
	}
	s.institutions = append(s.institutions, institution)
	return institution, nil
}

type fakeSource struct {
	err error
}

func (f *fakeSource) Open(ctx context.Context, sourceKey string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader("")), nil
}

// fakeParser returns a fixed sheet and counts how often it was asked.
type fakeParser struct {
	mu    sync.Mutex
	sheet domain.Sheet
	calls int
}

func (f *fakeParser) Parse(ctx context.Context, sourceKey string, r io.Reader) (domain.Sheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.sheet, nil
}

type busyLocker struct{}

func (busyLocker) TryLock(ctx context.Context, jobID string) (func(), bool, error) {
	return nil, false, nil
}
