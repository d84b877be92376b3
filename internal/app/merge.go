package app

import (
	"sort"

	"social-style-service/internal/domain"
	"social-style-service/internal/scoring"
)

// Merge folds one event into the previously emitted view. A non-empty submissions list replaces
// the previous one together with its results; an empty list keeps the previous submissions.
// Each flag is taken from the event only when present. Merge is idempotent.
func Merge(prev *domain.SessionView, in domain.PartialSessionView, code string) domain.SessionView {
	out := domain.SessionView{SessionCode: code}
	if prev != nil {
		out = *prev
	}
	switch {
	case in.SessionCode != "":
		out.SessionCode = in.SessionCode
	case out.SessionCode == "":
		out.SessionCode = code
	}

	if len(in.Submissions) > 0 {
		out.Submissions = in.Submissions
		out.Results = in.Results
		if len(out.Results) != len(out.Submissions) {
			out.Results = scoreAll(out.Submissions)
		}
	}
	if out.Submissions == nil {
		out.Submissions = []domain.Submission{}
	}
	if out.Results == nil {
		out.Results = []domain.Classification{}
	}

	out.Flags = out.Flags.Apply(in.Flags)
	return out
}

// SubmissionsEvent builds a reducer event from a raw submission snapshot: submissions sorted
// newest first and classified from the same snapshot.
func SubmissionsEvent(code string, subs []domain.Submission) domain.PartialSessionView {
	sorted := make([]domain.Submission, len(subs))
	copy(sorted, subs)
	sortNewestFirst(sorted)
	return domain.PartialSessionView{
		SessionCode: code,
		Submissions: sorted,
		Results:     scoreAll(sorted),
	}
}

// FlagsEvent builds a flag-only reducer event from a session record.
func FlagsEvent(session domain.Session) domain.PartialSessionView {
	return domain.PartialSessionView{
		SessionCode: session.Code,
		Flags:       session.Flags.Patch(),
	}
}

func sortNewestFirst(subs []domain.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.After(subs[j].CreatedAt)
		}
		return subs[i].ID < subs[j].ID
	})
}

func scoreAll(subs []domain.Submission) []domain.Classification {
	results := make([]domain.Classification, len(subs))
	for i := range subs {
		results[i] = scoring.Score(subs[i].Answers)
	}
	return results
}
