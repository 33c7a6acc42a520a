package quiz

import (
	"math"
)

// scoreAttempt re-scores every saved answer in place against the quiz's live
// question set and rolls the results up onto the attempt. An answer whose
// question is missing or whose type has no provider scores 0 with explanatory
// feedback; grading always completes for the whole attempt. isCorrect is
// derived as score > 0, so partial credit still flags correct.
func (s *Service) scoreAttempt(a *Attempt, q Quiz) {
	total := 0.0
	for i := range a.Answers {
		ans := &a.Answers[i]
		ans.Feedback = ""
		qu := findQuestion(q.Questions, ans.QuestionID)
		if qu == nil {
			ans.Score = 0
			ans.IsCorrect = false
			ans.Feedback = "Question not found"
			continue
		}
		p, ok := s.reg.GetProvider(qu.Type)
		if !ok {
			ans.Score = 0
			ans.IsCorrect = false
			ans.Feedback = "type not supported"
			continue
		}
		sc := p.CalculateScore(ans.Answer, *qu)
		ans.Score = sc
		ans.IsCorrect = sc > 0
		total += sc
	}

	possible := 0.0
	for i := range q.Questions {
		possible += q.Questions[i].Points
	}
	pct := 0.0
	if possible > 0 {
		pct = round2(total / possible * 100)
	}
	a.Score = total
	a.PercentageScore = pct
	a.Passed = pct >= q.PassThreshold()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
