// Package scoring maps answer sets to social-style classifications.
package scoring

import (
	"strings"

	"social-style-service/internal/domain"
)

// Score classifies an answer set. Questions outside q1..q20, and letters that do not belong to
// a question's axis, are ignored, so partial or malformed sets degrade to lower counts.
// Ties resolve toward "a" and "c".
func Score(answers domain.AnswerSet) domain.Classification {
	var a, b, c, d int
	for n := 1; n <= domain.QuestionCount; n++ {
		picked := answers[domain.QuestionID(n)]
		axis, _ := domain.AxisOf(n)
		switch {
		case axis == domain.AxisTellAsk && picked == domain.LetterA:
			a++
		case axis == domain.AxisTellAsk && picked == domain.LetterB:
			b++
		case axis == domain.AxisEmotesControls && picked == domain.LetterC:
			c++
		case axis == domain.AxisEmotesControls && picked == domain.LetterD:
			d++
		}
	}

	first := domain.FirstHalf{A: a, B: b, Difference: abs(a - b), Dominant: domain.LetterA}
	if a < b {
		first.Dominant = domain.LetterB
	}
	second := domain.SecondHalf{C: c, D: d, Difference: abs(c - d), Dominant: domain.LetterC}
	if c < d {
		second.Dominant = domain.LetterD
	}

	x := first.Difference
	if first.Dominant == domain.LetterA {
		x = -x
	}
	y := second.Difference
	if second.Dominant == domain.LetterC {
		y = -y
	}

	key := strings.ToUpper(first.Dominant + second.Dominant)
	style, _ := domain.StyleForKey(key)
	return domain.Classification{
		FirstHalf:   first,
		SecondHalf:  second,
		StyleKey:    key,
		SocialStyle: style,
		Coordinates: domain.Coordinates{X: x, Y: y},
	}
}

// QuadrantKey returns the style key of a plotted point. Points on an axis belong to the
// A or C side, matching the tie-break of Score.
func QuadrantKey(x, y int) string {
	key := "A"
	if x > 0 {
		key = "B"
	}
	if y > 0 {
		return key + "D"
	}
	return key + "C"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
