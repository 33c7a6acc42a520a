package quiz

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	quizzes  map[string]Quiz
	attempts map[string]Attempt
}

// NewInMemoryStore backs the service with process-local maps. Used by tests
// and the zero-setup dev mode.
func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:  map[string]Quiz{},
		attempts: map[string]Attempt{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, orgID, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok || q.OrgID != orgID {
		return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return q, nil
}

func (m *memoryStore) CreateAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = cloneAttempt(a)
	return nil
}

func (m *memoryStore) SaveAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.attempts[a.ID]
	if !ok || old.OrgID != a.OrgID {
		return fmt.Errorf("attempt %s: %w", a.ID, ErrNotFound)
	}
	m.attempts[a.ID] = cloneAttempt(a)
	return nil
}

func (m *memoryStore) GetAttempt(_ context.Context, orgID, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok || a.OrgID != orgID {
		return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return cloneAttempt(a), nil
}

func (m *memoryStore) GetAttemptForUser(_ context.Context, orgID, id, userID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok || a.OrgID != orgID || a.UserID != userID {
		return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return cloneAttempt(a), nil
}

func (m *memoryStore) FindInProgress(_ context.Context, orgID, quizID, userID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *Attempt
	for id := range m.attempts {
		a := m.attempts[id]
		if a.OrgID != orgID || a.QuizID != quizID || a.UserID != userID || a.Status != AttemptInProgress {
			continue
		}
		if found == nil || a.StartedAt > found.StartedAt {
			c := cloneAttempt(a)
			found = &c
		}
	}
	if found == nil {
		return Attempt{}, fmt.Errorf("attempt: %w", ErrNotFound)
	}
	return *found, nil
}

func (m *memoryStore) CountFinished(_ context.Context, orgID, quizID, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.attempts {
		if a.OrgID == orgID && a.QuizID == quizID && a.UserID == userID &&
			(a.Status == AttemptCompleted || a.Status == AttemptGraded) {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, orgID string, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attempt
	for _, a := range m.attempts {
		if a.OrgID != orgID {
			continue
		}
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && string(a.Status) != opts.Status {
			continue
		}
		out = append(out, cloneAttempt(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Sort == "completed_at" {
			return out[i].CompletedAt > out[j].CompletedAt
		}
		return out[i].StartedAt > out[j].StartedAt
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func cloneAttempt(a Attempt) Attempt {
	c := a
	c.Answers = make([]Answer, len(a.Answers))
	copy(c.Answers, a.Answers)
	return c
}
