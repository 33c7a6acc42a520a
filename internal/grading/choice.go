package grading

import (
	"fmt"
	"strings"
)

// correctChoiceSet resolves the accepted option UIDs for a choice question.
// CorrectAnswers wins when present; otherwise options flagged IsCorrect.
func correctChoiceSet(q Question) map[string]struct{} {
	if len(q.CorrectAnswers) > 0 {
		return toSet(q.CorrectAnswers)
	}
	m := map[string]struct{}{}
	for _, o := range q.Options {
		if o.IsCorrect {
			m[o.UID] = struct{}{}
		}
	}
	return m
}

func knownOption(q Question, uid string) bool {
	for _, o := range q.Options {
		if o.UID == uid {
			return true
		}
	}
	return false
}

// choiceProvider handles single-selection multiple choice.
type choiceProvider struct{}

func (choiceProvider) ValidateAnswer(raw interface{}, q Question) Validation {
	s, ok := raw.(string)
	if !ok {
		return Validation{Errors: []string{"answer must be a single option id"}}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Validation{Errors: []string{"answer must not be empty"}}
	}
	if len(q.Options) > 0 && !knownOption(q, s) {
		return Validation{Errors: []string{fmt.Sprintf("unknown option %q", s)}}
	}
	return Validation{IsValid: true, Normalized: s}
}

func (choiceProvider) CalculateScore(normalized interface{}, q Question) float64 {
	s, ok := normalized.(string)
	if !ok {
		return 0
	}
	if _, hit := correctChoiceSet(q)[s]; hit {
		return q.Points
	}
	return 0
}

func (choiceProvider) ProcessQuestionForDisplay(q Question, hideAnswers bool) Question {
	return Redact(q, hideAnswers)
}

// trueFalseProvider accepts "true"/"false" regardless of option presence.
type trueFalseProvider struct{}

func (trueFalseProvider) ValidateAnswer(raw interface{}, q Question) Validation {
	s, ok := raw.(string)
	if !ok {
		return Validation{Errors: []string{"answer must be a string"}}
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "true" && s != "false" {
		return Validation{Errors: []string{`answer must be "true" or "false"`}}
	}
	return Validation{IsValid: true, Normalized: s}
}

func (trueFalseProvider) CalculateScore(normalized interface{}, q Question) float64 {
	s, ok := normalized.(string)
	if !ok {
		return 0
	}
	for _, k := range q.CorrectAnswers {
		if strings.EqualFold(k, s) {
			return q.Points
		}
	}
	if _, hit := correctChoiceSet(q)[s]; hit {
		return q.Points
	}
	return 0
}

func (trueFalseProvider) ProcessQuestionForDisplay(q Question, hideAnswers bool) Question {
	return Redact(q, hideAnswers)
}

// multiSelectProvider handles multi-selection questions with optional partial
// credit: a subset of the correct set without false positives earns a
// proportional fraction of the points.
type multiSelectProvider struct{ allowPartial bool }

func (multiSelectProvider) ValidateAnswer(raw interface{}, q Question) Validation {
	arr, ok := toStringSlice(raw)
	if !ok {
		return Validation{Errors: []string{"answer must be a list of option ids"}}
	}
	if len(arr) == 0 {
		return Validation{Errors: []string{"answer must not be empty"}}
	}
	var errs []string
	seen := map[string]struct{}{}
	out := make([]string, 0, len(arr))
	for _, s := range arr {
		s = strings.TrimSpace(s)
		if s == "" {
			errs = append(errs, "answer contains an empty option id")
			continue
		}
		if len(q.Options) > 0 && !knownOption(q, s) {
			errs = append(errs, fmt.Sprintf("unknown option %q", s))
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(errs) > 0 {
		return Validation{Errors: errs}
	}
	return Validation{IsValid: true, Normalized: out}
}

func (p multiSelectProvider) CalculateScore(normalized interface{}, q Question) float64 {
	arr, ok := toStringSlice(normalized)
	if !ok {
		return 0
	}
	correct := correctChoiceSet(q)
	resp := toSet(arr)

	if setEqual(correct, resp) {
		return q.Points
	}
	for r := range resp {
		if _, ok := correct[r]; !ok {
			return 0 // false positive voids partial credit
		}
	}
	if p.allowPartial && len(correct) > 0 {
		inter := 0
		for k := range resp {
			if _, ok := correct[k]; ok {
				inter++
			}
		}
		return q.Points * (float64(inter) / float64(len(correct)))
	}
	return 0
}

func (multiSelectProvider) ProcessQuestionForDisplay(q Question, hideAnswers bool) Question {
	return Redact(q, hideAnswers)
}
