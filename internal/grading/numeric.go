package grading

import (
	"math"
	"strconv"
	"strings"
)

// numericProvider supports exact string match or numeric tolerance via the
// accepted-answer list. Examples:
//
//	CorrectAnswers: ["3.14159", "tol=0.01"]   // absolute tolerance
//	CorrectAnswers: ["100", "reltol=0.05"]    // 5% relative tolerance
type numericProvider struct{}

func (numericProvider) ValidateAnswer(raw interface{}, q Question) Validation {
	var s string
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return Validation{Errors: []string{"answer must be a number or numeric string"}}
	}
	if s == "" {
		return Validation{Errors: []string{"answer must not be empty"}}
	}
	if _, ok := parseFloatLoose(s); !ok {
		return Validation{Errors: []string{"answer is not a number"}}
	}
	return Validation{IsValid: true, Normalized: s}
}

func (numericProvider) CalculateScore(normalized interface{}, q Question) float64 {
	s, ok := normalized.(string)
	if !ok || len(q.CorrectAnswers) == 0 {
		return 0
	}
	target := q.CorrectAnswers[0]
	if s == target {
		return q.Points
	}
	rv, rOK := parseFloatLoose(s)
	tv, tOK := parseFloatLoose(target)
	if !rOK || !tOK {
		return 0
	}
	absTol, relTol := parseTolerances(q.CorrectAnswers[1:])
	diff := math.Abs(rv - tv)
	if rv == tv {
		return q.Points
	}
	if absTol >= 0 && diff <= absTol {
		return q.Points
	}
	if relTol >= 0 && diff <= relTol*math.Abs(tv) {
		return q.Points
	}
	return 0
}

func (numericProvider) ProcessQuestionForDisplay(q Question, hideAnswers bool) Question {
	return Redact(q, hideAnswers)
}

func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func parseTolerances(keys []string) (absTol float64, relTol float64) {
	absTol, relTol = -1, -1
	for _, k := range keys {
		k = strings.TrimSpace(strings.ToLower(k))
		if strings.HasPrefix(k, "tol=") {
			if v, err := strconv.ParseFloat(strings.TrimPrefix(k, "tol="), 64); err == nil {
				absTol = v
			}
		}
		if strings.HasPrefix(k, "reltol=") {
			if v, err := strconv.ParseFloat(strings.TrimPrefix(k, "reltol="), 64); err == nil {
				relTol = v
			}
		}
	}
	return
}
