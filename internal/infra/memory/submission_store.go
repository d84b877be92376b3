package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"social-style-service/internal/domain"
)

// SubmissionStore is an in-memory implementation of app.SubmissionStore.
type SubmissionStore struct {
	mu     sync.RWMutex
	byID   map[string]domain.Submission
	byCode map[string][]string
	feed   *feed[domain.SubmissionSnapshot]
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		byID:   make(map[string]domain.Submission),
		byCode: make(map[string][]string),
		feed:   newFeed[domain.SubmissionSnapshot](),
	}
}

func (s *SubmissionStore) Create(_ context.Context, sub domain.Submission) (string, error) {
	sub = cloneSubmission(sub)
	sub.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sub.ID] = sub
	s.byCode[sub.SessionCode] = append(s.byCode[sub.SessionCode], sub.ID)
	s.feed.publish(sub.SessionCode, s.snapshotLocked(sub.SessionCode))
	return sub.ID, nil
}

func (s *SubmissionStore) Get(_ context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return cloneSubmission(sub), nil
}

func (s *SubmissionStore) ListBySession(_ context.Context, code string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(code).Submissions, nil
}

func (s *SubmissionStore) Subscribe(_ context.Context, code string) (<-chan domain.SubmissionSnapshot, func(), error) {
	s.mu.Lock()
	initial := s.snapshotLocked(code)
	ch := s.feed.add(code, &initial)
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			s.feed.remove(code, ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// snapshotLocked returns submissions in insertion order; ordering for display is the
// aggregator's job.
func (s *SubmissionStore) snapshotLocked(code string) domain.SubmissionSnapshot {
	ids := s.byCode[code]
	subs := make([]domain.Submission, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, cloneSubmission(s.byID[id]))
	}
	return domain.SubmissionSnapshot{Code: code, Submissions: subs}
}

func cloneSubmission(sub domain.Submission) domain.Submission {
	answers := make(domain.AnswerSet, len(sub.Answers))
	for k, v := range sub.Answers {
		answers[k] = v
	}
	sub.Answers = answers
	sub.SocialStyle = append([]string{}, sub.SocialStyle...)
	return sub
}
