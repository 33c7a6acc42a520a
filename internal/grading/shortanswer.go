package grading

import (
	"strings"
	"unicode"
)

// shortAnswerProvider matches free-text answers against the accepted set.
// Exact match (after normalization) earns full points; within maxEdit
// Levenshtein distance earns half credit.
type shortAnswerProvider struct{ maxEdit int }

func (shortAnswerProvider) ValidateAnswer(raw interface{}, q Question) Validation {
	s, ok := raw.(string)
	if !ok {
		return Validation{Errors: []string{"answer must be a string"}}
	}
	if strings.TrimSpace(s) == "" {
		return Validation{Errors: []string{"answer must not be empty"}}
	}
	return Validation{IsValid: true, Normalized: normalizeText(s)}
}

func (p shortAnswerProvider) CalculateScore(normalized interface{}, q Question) float64 {
	s, ok := normalized.(string)
	if !ok {
		return 0
	}
	ns := normalizeText(s)
	fuzzy := false
	for _, k := range q.CorrectAnswers {
		nk := normalizeText(k)
		if nk == ns {
			return q.Points
		}
		if p.maxEdit > 0 && editDistance(nk, ns) <= p.maxEdit {
			fuzzy = true
		}
	}
	if fuzzy {
		return q.Points * 0.5
	}
	return 0
}

func (shortAnswerProvider) ProcessQuestionForDisplay(q Question, hideAnswers bool) Question {
	return Redact(q, hideAnswers)
}

// essayProvider accepts any non-empty text and never autogrades; points come
// from teacher feedback later.
type essayProvider struct{}

func (essayProvider) ValidateAnswer(raw interface{}, q Question) Validation {
	s, ok := raw.(string)
	if !ok {
		return Validation{Errors: []string{"answer must be a string"}}
	}
	if strings.TrimSpace(s) == "" {
		return Validation{Errors: []string{"answer must not be empty"}}
	}
	return Validation{IsValid: true, Normalized: s}
}

func (essayProvider) CalculateScore(interface{}, Question) float64 { return 0 }

func (essayProvider) ProcessQuestionForDisplay(q Question, hideAnswers bool) Question {
	return Redact(q, hideAnswers)
}

// normalizeText lowercases, drops punctuation, and collapses whitespace runs
// to single spaces, so "The Answer!" and "the answer" compare equal.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsPunct(r):
			continue
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// editDistance is the Levenshtein distance (unit cost for insert, delete,
// substitute), computed over one rolling row.
func editDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}
	row := make([]int, len(br)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(br); j++ {
			sub := diag
			if ar[i-1] != br[j-1] {
				sub++
			}
			diag = row[j]
			row[j] = min(row[j]+1, row[j-1]+1, sub)
		}
	}
	return row[len(br)]
}
