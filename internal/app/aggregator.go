package app

import (
	"context"
	"log/slog"
	"sync"

	"social-style-service/internal/domain"
)

// ViewUpdate is one emission of the aggregator. Err carries a store failure; View is then the
// last known view.
type ViewUpdate struct {
	View domain.SessionView
	Err  error
}

// Aggregator merges the submission and session-flag subscriptions of one session code into a
// single stream of session views.
type Aggregator struct {
	submissions SubmissionStore
	sessions    SessionStore
	buffer      int
}

func NewAggregator(submissions SubmissionStore, sessions SessionStore) *Aggregator {
	return &Aggregator{submissions: submissions, sessions: sessions, buffer: 8}
}

// Subscribe starts both store subscriptions for code and returns the merged view stream.
// The caller must invoke the returned cancel function to release both subscriptions; it is
// safe to call more than once and closes the channel.
func (a *Aggregator) Subscribe(ctx context.Context, code string) (<-chan ViewUpdate, func(), error) {
	subs, cancelSubs, err := a.submissions.Subscribe(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	flags, cancelFlags, err := a.sessions.Subscribe(ctx, code)
	if err != nil {
		cancelSubs()
		return nil, nil, err
	}

	out := make(chan ViewUpdate, a.buffer)
	done := make(chan struct{})
	finished := make(chan struct{})
	go reduce(code, subs, flags, out, done, finished)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			cancelSubs()
			cancelFlags()
			<-finished
		})
	}
	return out, cancel, nil
}

// reduce is the only place that touches the current view of a subscription.
func reduce(code string, subs <-chan domain.SubmissionSnapshot, flags <-chan domain.SessionSnapshot, out chan ViewUpdate, done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)
	defer close(out)

	current := Merge(nil, domain.PartialSessionView{}, code)
	for subs != nil || flags != nil {
		select {
		case <-done:
			return
		case snap, ok := <-subs:
			if !ok {
				subs = nil
				continue
			}
			if snap.Err != nil {
				slog.Warn("submission subscription failed", "session", code, "error", snap.Err)
				emit(out, ViewUpdate{View: current, Err: snap.Err})
				continue
			}
			current = Merge(&current, SubmissionsEvent(code, snap.Submissions), code)
			slog.Debug("session submissions updated", "session", code, "submissions", len(current.Submissions))
			emit(out, ViewUpdate{View: current})
		case snap, ok := <-flags:
			if !ok {
				flags = nil
				continue
			}
			if snap.Err != nil {
				slog.Warn("session subscription failed", "session", code, "error", snap.Err)
				emit(out, ViewUpdate{View: current, Err: snap.Err})
				continue
			}
			current = Merge(&current, FlagsEvent(snap.Session), code)
			emit(out, ViewUpdate{View: current})
		}
	}
}

// emit never blocks: when the consumer lags, the oldest pending view is replaced by the newest.
func emit(out chan ViewUpdate, update ViewUpdate) {
	select {
	case out <- update:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- update:
	default:
	}
}
