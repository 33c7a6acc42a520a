package quiz

import "context"

// AttemptStats aggregates one learner's history on a quiz.
type AttemptStats struct {
	TotalAttempts     int      `json:"total_attempts"`
	CompletedAttempts int      `json:"completed_attempts"`
	BestScore         float64  `json:"best_score"`    // max percentage among completed
	AverageScore      float64  `json:"average_score"` // mean percentage among completed
	LastAttempt       *Attempt `json:"last_attempt,omitempty"`
}

// GetAttemptStatistics rolls up the caller's attempts on a quiz. Completed
// covers both completed and graded; last attempt is the most recently
// started one regardless of status.
func (s *Service) GetAttemptStatistics(ctx context.Context, id Identity, quizID string) (AttemptStats, error) {
	attempts, err := s.store.ListAttempts(ctx, id.OrgID, AttemptListOpts{QuizID: quizID, UserID: id.UserID})
	if err != nil {
		return AttemptStats{}, err
	}
	stats := AttemptStats{TotalAttempts: len(attempts)}
	sum := 0.0
	for i := range attempts {
		a := attempts[i]
		if stats.LastAttempt == nil || a.StartedAt > stats.LastAttempt.StartedAt {
			c := a
			stats.LastAttempt = &c
		}
		if a.Status != AttemptCompleted && a.Status != AttemptGraded {
			continue
		}
		stats.CompletedAttempts++
		sum += a.PercentageScore
		if a.PercentageScore > stats.BestScore {
			stats.BestScore = a.PercentageScore
		}
	}
	if stats.CompletedAttempts > 0 {
		stats.AverageScore = round2(sum / float64(stats.CompletedAttempts))
	}
	return stats, nil
}
