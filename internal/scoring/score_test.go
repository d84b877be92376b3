package scoring

import (
	"math/rand"
	"reflect"
	"testing"

	"social-style-service/internal/domain"
)

func fill(first, second func(n int) string) domain.AnswerSet {
	answers := domain.AnswerSet{}
	for n := 1; n <= domain.QuestionCount; n++ {
		var v string
		if n <= domain.QuestionCount/2 {
			v = first(n)
		} else {
			v = second(n)
		}
		if v != "" {
			answers[domain.QuestionID(n)] = v
		}
	}
	return answers
}

func always(letter string) func(int) string {
	return func(int) string { return letter }
}

func TestScoreEmptyAnswers(t *testing.T) {
	got := Score(domain.AnswerSet{})
	if got.FirstHalf.A != 0 || got.FirstHalf.B != 0 || got.SecondHalf.C != 0 || got.SecondHalf.D != 0 {
		t.Fatalf("expected zero counts, got %+v", got)
	}
	if got.FirstHalf.Dominant != "a" || got.SecondHalf.Dominant != "c" || got.StyleKey != "AC" {
		t.Fatalf("expected a/c/AC, got %s/%s/%s", got.FirstHalf.Dominant, got.SecondHalf.Dominant, got.StyleKey)
	}
	if got.SocialStyle != domain.StyleExpressive || got.Coordinates != (domain.Coordinates{}) {
		t.Fatalf("expected Expressive at origin, got %+v", got)
	}
	if Score(nil) != got {
		t.Fatalf("nil answer set must score like an empty one")
	}
}

func TestScoreScenarios(t *testing.T) {
	cases := []struct {
		name    string
		answers domain.AnswerSet
		a, b    int
		c, d    int
		key     string
		style   domain.Style
		x, y    int
	}{
		{
			name:    "all a and all c",
			answers: fill(always("a"), always("c")),
			a:       10, c: 10, key: "AC", style: domain.StyleExpressive, x: -10, y: -10,
		},
		{
			name: "tied first half and all d",
			answers: fill(func(n int) string {
				if n <= 5 {
					return "a"
				}
				return "b"
			}, always("d")),
			a: 5, b: 5, d: 10, key: "AD", style: domain.StyleDriver, x: 0, y: 10,
		},
		{
			name:    "all b and all c",
			answers: fill(always("b"), always("c")),
			b:       10, c: 10, key: "BC", style: domain.StyleAmiable, x: 10, y: -10,
		},
		{
			name: "mostly b and tied second half",
			answers: fill(func(n int) string {
				if n <= 3 {
					return "a"
				}
				return "b"
			}, func(n int) string {
				if n%2 == 0 {
					return "c"
				}
				return "d"
			}),
			a: 3, b: 7, c: 5, d: 5, key: "BC", style: domain.StyleAmiable, x: 4, y: 0,
		},
		{
			name:    "all b and all d",
			answers: fill(always("b"), always("d")),
			b:       10, d: 10, key: "BD", style: domain.StyleAnalyser, x: 10, y: 10,
		},
		{
			name:    "letters on the wrong axis are ignored",
			answers: fill(always("c"), always("a")),
			key:     "AC", style: domain.StyleExpressive,
		},
	}
	for _, c := range cases {
		got := Score(c.answers)
		if got.FirstHalf.A != c.a || got.FirstHalf.B != c.b || got.SecondHalf.C != c.c || got.SecondHalf.D != c.d {
			t.Fatalf("%s: counts a=%d b=%d c=%d d=%d", c.name, got.FirstHalf.A, got.FirstHalf.B, got.SecondHalf.C, got.SecondHalf.D)
		}
		if got.StyleKey != c.key || got.SocialStyle != c.style {
			t.Fatalf("%s: expected %s/%s, got %s/%s", c.name, c.key, c.style, got.StyleKey, got.SocialStyle)
		}
		if got.Coordinates.X != c.x || got.Coordinates.Y != c.y {
			t.Fatalf("%s: expected (%d,%d), got (%d,%d)", c.name, c.x, c.y, got.Coordinates.X, got.Coordinates.Y)
		}
	}
}

func TestScoreInvariantsOnRandomAnswers(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	letters := []string{"", "a", "b", "c", "d", "x"}
	for i := 0; i < 500; i++ {
		answers := domain.AnswerSet{}
		for n := 1; n <= domain.QuestionCount+2; n++ {
			if v := letters[rnd.Intn(len(letters))]; v != "" {
				answers[domain.QuestionID(n)] = v
			}
		}

		got := Score(answers)
		f, s := got.FirstHalf, got.SecondHalf
		if f.A+f.B > 10 || s.C+s.D > 10 {
			t.Fatalf("counts out of range: %+v", got)
		}
		if abs(got.Coordinates.X) != abs(f.A-f.B) || abs(got.Coordinates.Y) != abs(s.C-s.D) {
			t.Fatalf("coordinates do not match differences: %+v", got)
		}
		if f.A == f.B && f.Dominant != "a" {
			t.Fatalf("tie must favour a: %+v", f)
		}
		if s.C == s.D && s.Dominant != "c" {
			t.Fatalf("tie must favour c: %+v", s)
		}
		if QuadrantKey(got.Coordinates.X, got.Coordinates.Y) != got.StyleKey {
			t.Fatalf("quadrant %s disagrees with key %s", QuadrantKey(got.Coordinates.X, got.Coordinates.Y), got.StyleKey)
		}
		if again := Score(answers); !reflect.DeepEqual(again, got) {
			t.Fatalf("score is not deterministic: %+v vs %+v", got, again)
		}
	}
}

func TestQuadrantKey(t *testing.T) {
	cases := []struct {
		x, y int
		want string
	}{
		{-3, -3, "AC"},
		{3, -3, "BC"},
		{-3, 3, "AD"},
		{3, 3, "BD"},
		{0, 0, "AC"},
		{0, 4, "AD"},
	}
	for _, c := range cases {
		if got := QuadrantKey(c.x, c.y); got != c.want {
			t.Fatalf("QuadrantKey(%d,%d)=%s, want %s", c.x, c.y, got, c.want)
		}
	}
}
