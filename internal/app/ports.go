package app

import (
	"context"

	"social-style-service/internal/domain"
)

// SubmissionStore persists quiz submissions (in-memory, Redis, Mongo).
// Subscribe delivers the full submission set of a session once immediately and again after
// every change, in store order, until the returned cancel function is called. The channel is
// closed after cancel.
type SubmissionStore interface {
	Create(ctx context.Context, sub domain.Submission) (string, error)
	Get(ctx context.Context, id string) (domain.Submission, error)
	ListBySession(ctx context.Context, code string) ([]domain.Submission, error)
	Subscribe(ctx context.Context, code string) (<-chan domain.SubmissionSnapshot, func(), error)
}

// SessionStore persists session records and their visibility flags.
// Subscribe delivers the record whenever it exists or changes; a missing record emits nothing.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, code string) (domain.Session, error)
	Exists(ctx context.Context, code string) (bool, error)
	UpdateFlags(ctx context.Context, code string, patch domain.FlagPatch) error
	Subscribe(ctx context.Context, code string) (<-chan domain.SessionSnapshot, func(), error)
}

// QuestionnaireRepository loads the question bank (from cache/backing store).
type QuestionnaireRepository interface {
	GetQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error)
}

// QuestionnaireLoader fetches the question bank from a backing store (static data, Postgres).
type QuestionnaireLoader interface {
	LoadQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error)
}
