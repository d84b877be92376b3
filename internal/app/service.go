package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"social-style-service/internal/domain"
	"social-style-service/internal/scoring"
)

// maxCodeAttempts bounds the check-then-create loop of CreateSession.
const maxCodeAttempts = 5

// SubmitInput is a participant's completed quiz as received from a client.
type SubmitInput struct {
	SessionCode string           `validate:"required,len=6,alphanum"`
	Name        string           `validate:"required,max=80"`
	Answers     domain.AnswerSet `validate:"required,min=1"`
}

// StyleService contains the social-style quiz use cases.
type StyleService struct {
	sessions       SessionStore
	submissions    SubmissionStore
	questionnaires QuestionnaireRepository
	aggregator     *Aggregator
	validate       *validator.Validate
	now            func() time.Time
	newCode        func() (string, error)
}

func NewStyleService(sessions SessionStore, submissions SubmissionStore, questionnaires QuestionnaireRepository) *StyleService {
	return NewStyleServiceWithClock(sessions, submissions, questionnaires, time.Now, scoring.GenerateCode)
}

// NewStyleServiceWithClock is NewStyleService with the submission clock and the session code
// source supplied by the caller.
func NewStyleServiceWithClock(sessions SessionStore, submissions SubmissionStore, questionnaires QuestionnaireRepository, now func() time.Time, newCode func() (string, error)) *StyleService {
	return &StyleService{
		sessions:       sessions,
		submissions:    submissions,
		questionnaires: questionnaires,
		aggregator:     NewAggregator(submissions, sessions),
		validate:       validator.New(),
		now:            now,
		newCode:        newCode,
	}
}

// CanonicalCode normalizes a user-typed session code.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateSession allocates a fresh code and stores a session with every flag hidden.
// Two concurrent creations drawing the same code are not detected.
func (s *StyleService) CreateSession(ctx context.Context) (domain.Session, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return domain.Session{}, fmt.Errorf("generate session code: %w", err)
		}
		code = CanonicalCode(code)
		exists, err := s.sessions.Exists(ctx, code)
		if err != nil {
			return domain.Session{}, err
		}
		if exists {
			slog.Warn("session code collision", "session", code, "attempt", attempt+1)
			continue
		}
		session := domain.Session{Code: code}
		if err := s.sessions.Create(ctx, session); err != nil {
			return domain.Session{}, err
		}
		slog.Info("session created", "session", code)
		return session, nil
	}
	return domain.Session{}, domain.ErrCodeExhausted
}

// SessionExists reports whether a session has been created for code.
func (s *StyleService) SessionExists(ctx context.Context, code string) (bool, error) {
	return s.sessions.Exists(ctx, CanonicalCode(code))
}

// Join checks that a participant may take the quiz for code.
func (s *StyleService) Join(ctx context.Context, code string) error {
	exists, err := s.SessionExists(ctx, code)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrSessionNotFound
	}
	return nil
}

// GetSession returns the session record for code.
func (s *StyleService) GetSession(ctx context.Context, code string) (domain.Session, error) {
	return s.sessions.Get(ctx, CanonicalCode(code))
}

// Submit validates and stores a completed quiz and returns it with its classification.
func (s *StyleService) Submit(ctx context.Context, in SubmitInput) (domain.Submission, domain.Classification, error) {
	in.SessionCode = CanonicalCode(in.SessionCode)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return domain.Submission{}, domain.Classification{}, fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err)
	}
	if err := s.Join(ctx, in.SessionCode); err != nil {
		return domain.Submission{}, domain.Classification{}, err
	}

	questionnaire, err := s.Questionnaire(ctx)
	if err != nil {
		return domain.Submission{}, domain.Classification{}, err
	}
	if !questionnaire.Complete(in.Answers) {
		return domain.Submission{}, domain.Classification{}, domain.ErrIncompleteAnswers
	}

	answers := make(domain.AnswerSet, len(in.Answers))
	for k, v := range in.Answers {
		answers[k] = v
	}
	result := scoring.Score(answers)
	sub := domain.Submission{
		SessionCode: in.SessionCode,
		Name:        in.Name,
		Answers:     answers,
		SocialStyle: []string{string(result.SocialStyle)},
		CreatedAt:   s.now().UTC(),
	}
	id, err := s.submissions.Create(ctx, sub)
	if err != nil {
		return domain.Submission{}, domain.Classification{}, err
	}
	sub.ID = id
	slog.Info("submission stored", "session", sub.SessionCode, "submission", id, "style", result.SocialStyle)
	return sub, result, nil
}

// Submission returns a stored submission with its classification recomputed.
func (s *StyleService) Submission(ctx context.Context, id string) (domain.Submission, domain.Classification, error) {
	sub, err := s.submissions.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Submission{}, domain.Classification{}, err
	}
	return sub, scoring.Score(sub.Answers), nil
}

// UpdateFlags writes the present fields of patch. Concurrent writers: last write wins.
func (s *StyleService) UpdateFlags(ctx context.Context, code string, patch domain.FlagPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	return s.sessions.UpdateFlags(ctx, CanonicalCode(code), patch)
}

// SetShowResults toggles the overall results flag.
func (s *StyleService) SetShowResults(ctx context.Context, code string, show bool) error {
	return s.UpdateFlags(ctx, code, domain.ResultsPatch(show))
}

// ShowResults reads the overall results flag; a missing session reads as hidden.
func (s *StyleService) ShowResults(ctx context.Context, code string) (bool, error) {
	session, err := s.GetSession(ctx, code)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.ShowResults, nil
}

// SetShowStyle toggles the flag of a single style.
func (s *StyleService) SetShowStyle(ctx context.Context, code string, style domain.Style, show bool) error {
	patch, err := domain.StylePatch(style, show)
	if err != nil {
		return err
	}
	return s.UpdateFlags(ctx, code, patch)
}

// Snapshot builds the current session view from one read of each store.
func (s *StyleService) Snapshot(ctx context.Context, code string) (domain.SessionView, error) {
	code = CanonicalCode(code)
	session, err := s.sessions.Get(ctx, code)
	if err != nil {
		return domain.SessionView{}, err
	}
	subs, err := s.submissions.ListBySession(ctx, code)
	if err != nil {
		return domain.SessionView{}, err
	}
	view := Merge(nil, FlagsEvent(session), code)
	return Merge(&view, SubmissionsEvent(code, subs), code), nil
}

// Watch subscribes to live session views for code.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *StyleService) Watch(ctx context.Context, code string) (<-chan ViewUpdate, func(), error) {
	code = CanonicalCode(code)
	if err := s.Join(ctx, code); err != nil {
		return nil, nil, err
	}
	return s.aggregator.Subscribe(ctx, code)
}

// Questionnaire returns the question bank participants answer.
func (s *StyleService) Questionnaire(ctx context.Context) (domain.Questionnaire, error) {
	return s.questionnaires.GetQuestionnaire(ctx, domain.DefaultQuestionnaireID)
}
