package domain

// SessionView is the consolidated, client-facing state of one session.
// Results[i] is always the classification of Submissions[i].
type SessionView struct {
	SessionCode string           `json:"session_code"`
	Submissions []Submission     `json:"submissions"`
	Results     []Classification `json:"results"`
	Flags
}

// PartialSessionView is a single event fed into the view reducer. An empty Submissions list
// marks a flag-only event.
type PartialSessionView struct {
	SessionCode string
	Submissions []Submission
	Results     []Classification
	Flags       FlagPatch
}

// ForStyle keeps only the submissions classified as style, preserving alignment and order.
func (v SessionView) ForStyle(style Style) SessionView {
	out := SessionView{
		SessionCode: v.SessionCode,
		Submissions: []Submission{},
		Results:     []Classification{},
		Flags:       v.Flags,
	}
	for i := range v.Results {
		if i >= len(v.Submissions) {
			break
		}
		if v.Results[i].SocialStyle == style {
			out.Submissions = append(out.Submissions, v.Submissions[i])
			out.Results = append(out.Results, v.Results[i])
		}
	}
	return out
}
