package grading

import (
	"math"
	"testing"
)

func mcq(points float64, correct ...string) Question {
	return Question{
		ID:     "q1",
		Type:   "multiple_choice",
		Points: points,
		Options: []Option{
			{UID: "a", Text: "A"},
			{UID: "b", Text: "B"},
			{UID: "c", Text: "C"},
		},
		CorrectAnswers: correct,
	}
}

func TestChoiceValidateAndScore(t *testing.T) {
	reg := NewRegistry()
	p, ok := reg.GetProvider("multiple_choice")
	if !ok {
		t.Fatal("multiple_choice provider missing")
	}
	q := mcq(5, "b")

	tests := []struct {
		name  string
		raw   interface{}
		valid bool
		score float64
	}{
		{name: "correct option", raw: "b", valid: true, score: 5},
		{name: "wrong option", raw: "a", valid: true, score: 0},
		{name: "unknown option", raw: "z", valid: false},
		{name: "empty", raw: "", valid: false},
		{name: "non-string", raw: 42, valid: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := p.ValidateAnswer(tc.raw, q)
			if v.IsValid != tc.valid {
				t.Fatalf("IsValid = %v, want %v (errors: %v)", v.IsValid, tc.valid, v.Errors)
			}
			if !tc.valid {
				if len(v.Errors) == 0 {
					t.Fatal("invalid answer must carry errors")
				}
				return
			}
			if got := p.CalculateScore(v.Normalized, q); got != tc.score {
				t.Fatalf("score = %v, want %v", got, tc.score)
			}
		})
	}
}

func TestChoiceFallsBackToOptionFlags(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.GetProvider("multiple_choice")
	q := Question{
		Type:   "multiple_choice",
		Points: 3,
		Options: []Option{
			{UID: "a"},
			{UID: "b", IsCorrect: true},
		},
	}
	if got := p.CalculateScore("b", q); got != 3 {
		t.Fatalf("score = %v, want 3", got)
	}
	if got := p.CalculateScore("a", q); got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestMultiSelectScoring(t *testing.T) {
	q := Question{
		Type:   "multiple_select",
		Points: 4,
		Options: []Option{
			{UID: "a"}, {UID: "b"}, {UID: "c"}, {UID: "d"},
		},
		CorrectAnswers: []string{"a", "d"},
	}

	tests := []struct {
		name    string
		partial bool
		resp    []string
		score   float64
	}{
		{name: "exact match", partial: true, resp: []string{"d", "a"}, score: 4},
		{name: "subset earns partial", partial: true, resp: []string{"a"}, score: 2},
		{name: "false positive voids partial", partial: true, resp: []string{"a", "b"}, score: 0},
		{name: "partial disabled", partial: false, resp: []string{"a"}, score: 0},
		{name: "exact still full without partial", partial: false, resp: []string{"a", "d"}, score: 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry(WithPartialCredit(tc.partial))
			p, _ := reg.GetProvider("multiple_select")
			v := p.ValidateAnswer(tc.resp, q)
			if !v.IsValid {
				t.Fatalf("unexpected validation errors: %v", v.Errors)
			}
			if got := p.CalculateScore(v.Normalized, q); got != tc.score {
				t.Fatalf("score = %v, want %v", got, tc.score)
			}
		})
	}
}

func TestMultiSelectAcceptsJSONShapes(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.GetProvider("multiple_select")
	q := Question{Type: "multiple_select", Points: 2, CorrectAnswers: []string{"x"}}

	// JSON decoding hands []interface{} to the provider.
	v := p.ValidateAnswer([]interface{}{"x"}, q)
	if !v.IsValid {
		t.Fatalf("[]interface{} rejected: %v", v.Errors)
	}
	if got := p.CalculateScore(v.Normalized, q); got != 2 {
		t.Fatalf("score = %v, want 2", got)
	}
	if v := p.ValidateAnswer([]interface{}{1, 2}, q); v.IsValid {
		t.Fatal("non-string elements must be rejected")
	}
}

func TestTrueFalse(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.GetProvider("true_false")
	q := Question{Type: "true_false", Points: 1, CorrectAnswers: []string{"true"}}

	if v := p.ValidateAnswer("TRUE", q); !v.IsValid {
		t.Fatalf("case-insensitive true rejected: %v", v.Errors)
	} else if got := p.CalculateScore(v.Normalized, q); got != 1 {
		t.Fatalf("score = %v, want 1", got)
	}
	if v := p.ValidateAnswer("maybe", q); v.IsValid {
		t.Fatal("non-boolean answer accepted")
	}
}

func TestShortAnswerFuzzy(t *testing.T) {
	q := Question{Type: "short_answer", Points: 4, CorrectAnswers: []string{"photosynthesis"}}

	tests := []struct {
		name    string
		maxEdit int
		resp    string
		score   float64
	}{
		{name: "exact", maxEdit: 1, resp: "photosynthesis", score: 4},
		{name: "case and punctuation ignored", maxEdit: 1, resp: "  Photosynthesis! ", score: 4},
		{name: "one typo earns half", maxEdit: 1, resp: "fotosynthesis", score: 2},
		{name: "typo with fuzzy off", maxEdit: 0, resp: "fotosynthesis", score: 0},
		{name: "far off", maxEdit: 1, resp: "respiration", score: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry(WithMaxEditDistance(tc.maxEdit))
			p, _ := reg.GetProvider("short_answer")
			v := p.ValidateAnswer(tc.resp, q)
			if !v.IsValid {
				t.Fatalf("unexpected validation errors: %v", v.Errors)
			}
			if got := p.CalculateScore(v.Normalized, q); got != tc.score {
				t.Fatalf("score = %v, want %v", got, tc.score)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "The Answer!", want: "the answer"},
		{in: "  spaced   out  ", want: "spaced out"},
		{in: "semi-colon; dots...", want: "semicolon dots"},
		{in: "", want: ""},
		{in: "...", want: ""},
	}
	for _, tc := range tests {
		if got := normalizeText(tc.in); got != tc.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{a: "kitten", b: "sitting", want: 3},
		{a: "same", b: "same", want: 0},
		{a: "", b: "abc", want: 3},
		{a: "abc", b: "", want: 3},
		{a: "fotosynthesis", b: "photosynthesis", want: 1},
	}
	for _, tc := range tests {
		if got := editDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNumericTolerance(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.GetProvider("numeric")

	tests := []struct {
		name  string
		keys  []string
		resp  string
		score float64
	}{
		{name: "exact string", keys: []string{"3.14159"}, resp: "3.14159", score: 2},
		{name: "within abs tolerance", keys: []string{"3.14159", "tol=0.01"}, resp: "3.1415", score: 2},
		{name: "outside abs tolerance", keys: []string{"3.14159", "tol=0.001"}, resp: "3.15", score: 0},
		{name: "relative tolerance", keys: []string{"100", "reltol=0.05"}, resp: "104", score: 2},
		{name: "no tolerance no match", keys: []string{"100"}, resp: "104", score: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{Type: "numeric", Points: 2, CorrectAnswers: tc.keys}
			v := p.ValidateAnswer(tc.resp, q)
			if !v.IsValid {
				t.Fatalf("unexpected validation errors: %v", v.Errors)
			}
			if got := p.CalculateScore(v.Normalized, q); math.Abs(got-tc.score) > 1e-9 {
				t.Fatalf("score = %v, want %v", got, tc.score)
			}
		})
	}

	if v := p.ValidateAnswer("not a number", Question{Type: "numeric", Points: 2}); v.IsValid {
		t.Fatal("non-numeric answer accepted")
	}
}

func TestEssayNeverAutogrades(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.GetProvider("essay")
	q := Question{Type: "essay", Points: 10}
	v := p.ValidateAnswer("my long answer", q)
	if !v.IsValid {
		t.Fatalf("essay text rejected: %v", v.Errors)
	}
	if got := p.CalculateScore(v.Normalized, q); got != 0 {
		t.Fatalf("essay autograded to %v, want 0", got)
	}
}

func TestUnknownTypeHasNoProvider(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.GetProvider("matching"); ok {
		t.Fatal("unexpected provider for unregistered type")
	}
}

func TestRedactStripsSensitiveFields(t *testing.T) {
	q := Question{
		Type:           "multiple_choice",
		Points:         5,
		Options:        []Option{{UID: "a", IsCorrect: true}, {UID: "b"}},
		CorrectAnswers: []string{"a"},
		Explanation:    "because",
	}
	reg := NewRegistry()
	p, _ := reg.GetProvider("multiple_choice")

	red := p.ProcessQuestionForDisplay(q, true)
	if red.CorrectAnswers != nil || red.Explanation != "" {
		t.Fatal("answer key leaked through display processing")
	}
	for _, o := range red.Options {
		if o.IsCorrect {
			t.Fatal("option correctness flag leaked")
		}
	}
	// Original must be untouched.
	if q.CorrectAnswers == nil || !q.Options[0].IsCorrect {
		t.Fatal("redaction mutated the source question")
	}

	full := p.ProcessQuestionForDisplay(q, false)
	if len(full.CorrectAnswers) != 1 {
		t.Fatal("hideAnswers=false must keep the key")
	}
}
