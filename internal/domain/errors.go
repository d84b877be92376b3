package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for a code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSubmissionNotFound is returned when a submission id is unknown.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrQuestionnaireNotFound indicates the question bank could not be loaded.
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	// ErrInvalidSubmission wraps field validation failures of a submission request.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrIncompleteAnswers is returned when a submission does not answer every question.
	ErrIncompleteAnswers = errors.New("every question must be answered")
	// ErrUnknownStyle indicates a style name outside the style table.
	ErrUnknownStyle = errors.New("unknown social style")
	// ErrCodeExhausted is returned when no free session code could be generated.
	ErrCodeExhausted = errors.New("could not allocate a session code")
)
