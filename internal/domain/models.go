package domain

import "time"

// AnswerSet maps a question id ("q1".."q20") to the chosen letter.
type AnswerSet map[string]string

// FirstHalf holds the a/b tally of the first axis.
type FirstHalf struct {
	A          int    `json:"a"`
	B          int    `json:"b"`
	Difference int    `json:"difference"`
	Dominant   string `json:"dominant"`
}

// SecondHalf holds the c/d tally of the second axis.
type SecondHalf struct {
	C          int    `json:"c"`
	D          int    `json:"d"`
	Difference int    `json:"difference"`
	Dominant   string `json:"dominant"`
}

// Coordinates locate a classification on the quadrant chart.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Classification is derived from an AnswerSet and never stored on its own.
type Classification struct {
	FirstHalf   FirstHalf   `json:"firstHalf"`
	SecondHalf  SecondHalf  `json:"secondHalf"`
	StyleKey    string      `json:"styleKey"`
	SocialStyle Style       `json:"socialStyle"`
	Coordinates Coordinates `json:"coordinates"`
}

// Submission is one participant's completed quiz. It is never mutated after creation.
type Submission struct {
	ID          string    `json:"id"`
	SessionCode string    `json:"session_code"`
	Name        string    `json:"name"`
	Answers     AnswerSet `json:"questions_answers"`
	SocialStyle []string  `json:"social_style"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is the host-controlled record for a session code.
type Session struct {
	Code string `json:"session_code"`
	Flags
}

// SubmissionSnapshot is the full submission set of a session as emitted by a store subscription.
type SubmissionSnapshot struct {
	Code        string
	Submissions []Submission
	Err         error
}

// SessionSnapshot is the current session record as emitted by a store subscription.
type SessionSnapshot struct {
	Session Session
	Err     error
}
