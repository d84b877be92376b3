package domain

import (
	"strconv"
	"strings"
	"time"
)

// Document field names shared by every store adapter.
const (
	FieldSessionCode    = "session_code"
	FieldName           = "name"
	FieldAnswers        = "questions_answers"
	FieldSocialStyle    = "social_style"
	FieldCreatedAt      = "created_at"
	FieldShowResults    = "showResults"
	FieldShowDriver     = "showDriver"
	FieldShowExpressive = "showExpressive"
	FieldShowAnalyser   = "showAnalyser"
	FieldShowAmiable    = "showAmiable"
)

// SubmissionDocument renders a submission in the stored document shape (without id).
func SubmissionDocument(sub Submission) map[string]any {
	answers := make(map[string]any, len(sub.Answers))
	for k, v := range sub.Answers {
		answers[k] = v
	}
	styles := make([]any, 0, len(sub.SocialStyle))
	for _, s := range sub.SocialStyle {
		styles = append(styles, s)
	}
	return map[string]any{
		FieldSessionCode: sub.SessionCode,
		FieldName:        sub.Name,
		FieldAnswers:     answers,
		FieldSocialStyle: styles,
		FieldCreatedAt:   sub.CreatedAt.UTC(),
	}
}

// SessionDocument renders a session in the stored document shape.
func SessionDocument(session Session) map[string]any {
	return map[string]any{
		FieldSessionCode:    session.Code,
		FieldShowResults:    session.ShowResults,
		FieldShowDriver:     session.ShowDriver,
		FieldShowExpressive: session.ShowExpressive,
		FieldShowAnalyser:   session.ShowAnalyser,
		FieldShowAmiable:    session.ShowAmiable,
	}
}

// DecodeSubmission turns a loosely typed store document into a Submission. Every field is
// defaulted: unknown shapes become zero values and a missing or unreadable created_at becomes
// the zero time. Such submissions sort last in a newest-first view, and decoding the same
// document twice always yields the same value.
func DecodeSubmission(id string, doc map[string]any) Submission {
	return Submission{
		ID:          id,
		SessionCode: asString(doc[FieldSessionCode]),
		Name:        asString(doc[FieldName]),
		Answers:     asAnswers(doc[FieldAnswers]),
		SocialStyle: asStrings(doc[FieldSocialStyle]),
		CreatedAt:   asTime(doc[FieldCreatedAt]),
	}
}

// DecodeSession turns a loosely typed store document into a Session. fallbackCode is used when
// the document carries no session_code field.
func DecodeSession(fallbackCode string, doc map[string]any) Session {
	code := asString(doc[FieldSessionCode])
	if code == "" {
		code = fallbackCode
	}
	return Session{
		Code: code,
		Flags: Flags{
			ShowResults:    asBool(doc[FieldShowResults]),
			ShowDriver:     asBool(doc[FieldShowDriver]),
			ShowExpressive: asBool(doc[FieldShowExpressive]),
			ShowAnalyser:   asBool(doc[FieldShowAnalyser]),
			ShowAmiable:    asBool(doc[FieldShowAmiable]),
		},
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return false
}

func asAnswers(v any) AnswerSet {
	answers := AnswerSet{}
	switch t := v.(type) {
	case map[string]string:
		for k, val := range t {
			answers[k] = val
		}
	case map[string]any:
		for k, val := range t {
			if s, ok := val.(string); ok {
				answers[k] = s
			}
		}
	case AnswerSet:
		for k, val := range t {
			answers[k] = val
		}
	}
	return answers
}

func asStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

type timeLike interface {
	Time() time.Time
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t != nil {
			return t.UTC()
		}
	case timeLike:
		return t.Time().UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
	case int64:
		return time.UnixMilli(t).UTC()
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	}
	return time.Time{}
}
