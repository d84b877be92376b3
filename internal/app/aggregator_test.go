package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"social-style-service/internal/app"
	"social-style-service/internal/domain"
	"social-style-service/internal/infra/memory"
	"social-style-service/internal/scoring"
)

// chanSubmissions is a SubmissionStore whose subscription is driven by the test.
type chanSubmissions struct {
	app.SubmissionStore
	ch chan domain.SubmissionSnapshot
}

func (s *chanSubmissions) Subscribe(context.Context, string) (<-chan domain.SubmissionSnapshot, func(), error) {
	return s.ch, func() {}, nil
}

type chanSessions struct {
	app.SessionStore
	ch chan domain.SessionSnapshot
}

func (s *chanSessions) Subscribe(context.Context, string) (<-chan domain.SessionSnapshot, func(), error) {
	return s.ch, func() {}, nil
}

func waitFor(t *testing.T, updates <-chan app.ViewUpdate, match func(app.ViewUpdate) bool) app.ViewUpdate {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				t.Fatalf("update channel closed")
			}
			if match(u) {
				return u
			}
		case <-timeout:
			t.Fatalf("timed out waiting for view update")
		}
	}
}

func TestAggregatorOrdersSubmissionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	submissions := memory.NewSubmissionStore()
	_ = sessions.Create(ctx, domain.Session{Code: "ABC123"})

	agg := app.NewAggregator(submissions, sessions)
	updates, cancel, err := agg.Subscribe(ctx, "ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	older := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	_, _ = submissions.Create(ctx, domain.Submission{SessionCode: "ABC123", Name: "Later", Answers: completeAnswers("a", "c"), CreatedAt: older.Add(time.Minute)})
	_, _ = submissions.Create(ctx, domain.Submission{SessionCode: "ABC123", Name: "Earlier", Answers: completeAnswers("b", "d"), CreatedAt: older})

	u := waitFor(t, updates, func(u app.ViewUpdate) bool { return len(u.View.Submissions) == 2 })
	if u.View.Submissions[0].Name != "Later" || u.View.Submissions[1].Name != "Earlier" {
		t.Fatalf("expected newest first, got %s, %s", u.View.Submissions[0].Name, u.View.Submissions[1].Name)
	}
	if u.View.Results[0].SocialStyle != domain.StyleExpressive || u.View.Results[1].SocialStyle != domain.StyleAnalyser {
		t.Fatalf("results not aligned with submissions: %+v", u.View.Results)
	}
}

func TestAggregatorFlagEventKeepsSubmissions(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	submissions := memory.NewSubmissionStore()
	_ = sessions.Create(ctx, domain.Session{Code: "ABC123"})
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"Ann", "Ben", "Cid"} {
		_, _ = submissions.Create(ctx, domain.Submission{SessionCode: "ABC123", Name: name, Answers: completeAnswers("a", "d"), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	agg := app.NewAggregator(submissions, sessions)
	updates, cancel, err := agg.Subscribe(ctx, "ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	waitFor(t, updates, func(u app.ViewUpdate) bool { return len(u.View.Submissions) == 3 })

	if err := sessions.UpdateFlags(ctx, "ABC123", domain.ResultsPatch(true)); err != nil {
		t.Fatalf("update flags: %v", err)
	}
	u := waitFor(t, updates, func(u app.ViewUpdate) bool { return u.View.ShowResults })
	if len(u.View.Submissions) != 3 || len(u.View.Results) != 3 {
		t.Fatalf("flag event dropped submissions: %d/%d", len(u.View.Submissions), len(u.View.Results))
	}
	if u.View.SessionCode != "ABC123" {
		t.Fatalf("unexpected session code %q", u.View.SessionCode)
	}
}

func TestAggregatorForwardsStoreErrors(t *testing.T) {
	subs := &chanSubmissions{ch: make(chan domain.SubmissionSnapshot, 1)}
	flags := &chanSessions{ch: make(chan domain.SessionSnapshot, 1)}
	agg := app.NewAggregator(subs, flags)

	updates, cancel, err := agg.Subscribe(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	boom := errors.New("connection reset")
	subs.ch <- domain.SubmissionSnapshot{Code: "ABC123", Err: boom}
	u := waitFor(t, updates, func(u app.ViewUpdate) bool { return u.Err != nil })
	if !errors.Is(u.Err, boom) {
		t.Fatalf("expected forwarded error, got %v", u.Err)
	}
	if u.View.Submissions == nil || u.View.Results == nil {
		t.Fatalf("error update must carry a usable view")
	}
}

func TestAggregatorCancelClosesStream(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	submissions := memory.NewSubmissionStore()
	_ = sessions.Create(ctx, domain.Session{Code: "ABC123"})

	updates, cancel, err := app.NewAggregator(submissions, sessions).Subscribe(ctx, "ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()
	cancel()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatalf("stream not closed after cancel")
		}
	}
}

func TestAggregatorFlagsBeforeSubmissions(t *testing.T) {
	subs := &chanSubmissions{ch: make(chan domain.SubmissionSnapshot, 1)}
	flags := &chanSessions{ch: make(chan domain.SessionSnapshot, 1)}
	updates, cancel, err := app.NewAggregator(subs, flags).Subscribe(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	flags.ch <- domain.SessionSnapshot{Session: domain.Session{Code: "ABC123", Flags: domain.Flags{ShowResults: true}}}
	waitFor(t, updates, func(u app.ViewUpdate) bool { return u.View.ShowResults })

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	subs.ch <- domain.SubmissionSnapshot{Code: "ABC123", Submissions: []domain.Submission{
		{ID: "s1", SessionCode: "ABC123", Name: "Ann", Answers: completeAnswers("a", "c"), CreatedAt: base},
		{ID: "s2", SessionCode: "ABC123", Name: "Ben", Answers: completeAnswers("b", "d"), CreatedAt: base.Add(time.Minute)},
		{ID: "s3", SessionCode: "ABC123", Name: "Cid", Answers: completeAnswers("a", "d"), CreatedAt: base.Add(2 * time.Minute)},
	}}
	u := waitFor(t, updates, func(u app.ViewUpdate) bool { return len(u.View.Submissions) == 3 })

	if !u.View.ShowResults {
		t.Fatalf("submissions event dropped showResults")
	}
	if len(u.View.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(u.View.Results))
	}
	for i, sub := range u.View.Submissions {
		if u.View.Results[i] != scoring.Score(sub.Answers) {
			t.Fatalf("result %d not aligned with %s", i, sub.Name)
		}
	}
	if u.View.Submissions[0].Name != "Cid" {
		t.Fatalf("expected newest first, got %s", u.View.Submissions[0].Name)
	}
}

func TestAggregatorResubscribeIgnoresOldCode(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	submissions := memory.NewSubmissionStore()
	_ = sessions.Create(ctx, domain.Session{Code: "ABC123"})
	_ = sessions.Create(ctx, domain.Session{Code: "XYZ789"})
	agg := app.NewAggregator(submissions, sessions)

	old, cancelOld, err := agg.Subscribe(ctx, "ABC123")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancelOld()
	for range old {
	}

	updates, cancel, err := agg.Subscribe(ctx, "XYZ789")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	defer cancel()

	_, _ = submissions.Create(ctx, domain.Submission{SessionCode: "ABC123", Name: "Stale", Answers: completeAnswers("a", "c"), CreatedAt: time.Now()})
	_ = sessions.UpdateFlags(ctx, "ABC123", domain.ResultsPatch(true))
	_, _ = submissions.Create(ctx, domain.Submission{SessionCode: "XYZ789", Name: "Fresh", Answers: completeAnswers("b", "c"), CreatedAt: time.Now()})

	u := waitFor(t, updates, func(u app.ViewUpdate) bool { return len(u.View.Submissions) > 0 })
	if u.View.SessionCode != "XYZ789" || len(u.View.Submissions) != 1 || u.View.Submissions[0].Name != "Fresh" {
		t.Fatalf("unexpected view after resubscribe: %+v", u.View)
	}
	if u.View.ShowResults {
		t.Fatalf("flags of the old session leaked into the new subscription")
	}

	// Drain whatever else is pending; nothing may mention the old session.
	for {
		select {
		case u := <-updates:
			if u.View.SessionCode != "XYZ789" || u.View.ShowResults {
				t.Fatalf("received state of the old session: %+v", u.View)
			}
			for _, sub := range u.View.Submissions {
				if sub.SessionCode != "XYZ789" {
					t.Fatalf("received submission of the old session: %+v", sub)
				}
			}
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}
