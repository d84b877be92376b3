package domain

import "strconv"

// QuestionCount is the fixed length of the survey; each axis gets half of it.
const QuestionCount = 20

// Axis letters.
const (
	LetterA = "a"
	LetterB = "b"
	LetterC = "c"
	LetterD = "d"
)

// Axis describes one dimension of the quadrant chart.
type Axis struct {
	Key     string            `json:"key"`
	Letters [2]string         `json:"letters"`
	Labels  map[string]string `json:"labels"`
}

// Option is one of the two statements of a forced-choice question.
type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Question is a forced choice between two statements on a single axis.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Axis    string   `json:"axis"`
	Options []Option `json:"options"`
}

// Questionnaire is the question bank served to participants.
type Questionnaire struct {
	ID        string     `json:"id"`
	Prompt    string     `json:"prompt"`
	Axes      []Axis     `json:"axes"`
	Questions []Question `json:"questions"`
}

// Axis keys.
const (
	AxisTellAsk        = "tell-ask"
	AxisEmotesControls = "emotes-controls"
)

// QuestionID returns the answer-set key of the n-th question (1-based).
func QuestionID(n int) string {
	return "q" + strconv.Itoa(n)
}

// AxisOf returns the axis of the n-th question: the first half asks a/b, the second c/d.
func AxisOf(n int) (string, bool) {
	switch {
	case n >= 1 && n <= QuestionCount/2:
		return AxisTellAsk, true
	case n > QuestionCount/2 && n <= QuestionCount:
		return AxisEmotesControls, true
	}
	return "", false
}

// Complete reports whether answers picks one of the offered letters for every question.
func (q Questionnaire) Complete(answers AnswerSet) bool {
	if len(q.Questions) == 0 {
		return false
	}
	for _, question := range q.Questions {
		picked, ok := answers[question.ID]
		if !ok {
			return false
		}
		valid := false
		for _, opt := range question.Options {
			if opt.Letter == picked {
				valid = true
				break
			}
		}
		if !valid {
			return false
		}
	}
	return true
}

// DefaultQuestionnaireID identifies the built-in question bank.
const DefaultQuestionnaireID = "social-style-v1"

// DefaultQuestionnaire returns the built-in 20-question survey.
func DefaultQuestionnaire() Questionnaire {
	ab := func(prompt, a, b string) Question {
		return Question{Prompt: prompt, Axis: AxisTellAsk, Options: []Option{{LetterA, a}, {LetterB, b}}}
	}
	cd := func(prompt, c, d string) Question {
		return Question{Prompt: prompt, Axis: AxisEmotesControls, Options: []Option{{LetterC, c}, {LetterD, d}}}
	}
	questions := []Question{
		ab("When working in a team, I prefer to:", "Emphasize ideas by change of voice tone", "Little use of voice tone to emphasize ideas"),
		ab("In meetings, I typically:", "Expressions dominant and assertive", "Expressions quiet and subdued"),
		ab("When making decisions, I:", "Voice projection loud and clear", "Voice typically soft and calm"),
		ab("When someone disagrees with me, I:", "Quick, clear, fast-paced speech", "Deliberate, studied speech"),
		ab("In social situations, I:", "Firm handshake", "Soft handshake"),
		ab("When giving feedback, I:", "Make statements more often than ask questions", "Ask questions more often than make statements"),
		ab("In group projects, I:", "Find it easy to meet new people", "Not comfortable around new people"),
		ab("When someone is struggling, I:", "Tend to lean forward to make a point", "Tend to lean back while in discussion"),
		ab("When presenting ideas, I:", "Directly express needs and wants", "Vague about needs and wants"),
		ab("When solving problems, I:", "Enjoy fast-paced, dynamic environment", "Enjoy steady, calm environment"),
		cd("In disagreements, I:", "Sensitive about personal interactions", "Personal interactions are not a main concern"),
		cd("In team discussions, I:", "Concerned about the impact of projects on others", "Focused mostly on achieving the set objectives"),
		cd("When I'm excited about something, I:", "Animated facial expressions", "Limited facial expressions"),
		cd("In stressful situations, I:", "Actions open and eager", "Actions cautious or careful"),
		cd("When celebrating success, I:", "Little effort to push for facts", "Ask for facts and details"),
		cd("When I'm frustrated, I:", "Frequent eye contact", "Infrequent eye contact"),
		cd("When receiving praise, I:", "Open, friendly gestures", "Limited use of gestures, arms folded or hands clenched"),
		cd("When someone shares good news, I:", "Flexible to changes to accommodate others", "Prefer to stick to plan"),
		cd("When I'm nervous about something, I:", "Share personal life, stories, feelings", "Limited reference to personal feelings or small talk"),
		cd("When working on creative projects, I:", "Open, responsive", "Reserved"),
	}
	for i := range questions {
		questions[i].ID = QuestionID(i + 1)
	}
	return Questionnaire{
		ID:     DefaultQuestionnaireID,
		Prompt: "Select the option that best describes your typical behaviour or preference:",
		Axes: []Axis{
			{Key: AxisTellAsk, Letters: [2]string{LetterA, LetterB}, Labels: map[string]string{LetterA: "Tell", LetterB: "Ask"}},
			{Key: AxisEmotesControls, Letters: [2]string{LetterC, LetterD}, Labels: map[string]string{LetterC: "Emotes", LetterD: "Controls"}},
		},
		Questions: questions,
	}
}
