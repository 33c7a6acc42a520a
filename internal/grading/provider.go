package grading

// Question is a minimal view of a quiz question needed for validation and
// scoring. Keep this in sync with whatever fields your store uses.
type Question struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"` // multiple_choice, multiple_select, true_false, short_answer, numeric, essay
	Text           string   `json:"text,omitempty"`
	Points         float64  `json:"points"`
	Options        []Option `json:"options,omitempty"` // choice-based types
	CorrectAnswers []string `json:"correct_answers,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
}

type Option struct {
	UID       string `json:"uid"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Validation is the outcome of checking a raw submitted answer against a
// question. Normalized carries the canonical answer shape (string or []string)
// that CalculateScore expects.
type Validation struct {
	IsValid    bool
	Errors     []string
	Normalized interface{}
}

// Provider implements per-question-type behavior: validate a raw answer,
// score a normalized one, and redact a question for learner display.
type Provider interface {
	ValidateAnswer(raw interface{}, q Question) Validation
	CalculateScore(normalized interface{}, q Question) float64
	ProcessQuestionForDisplay(q Question, hideAnswers bool) Question
}

// Registry routes by question type to the correct Provider.
type Registry struct {
	providers map[string]Provider
}

// GetProvider returns the provider for a type tag, or false when the type is
// not supported. Callers treat a missing provider as a per-answer error, not
// a fatal one.
func (r *Registry) GetProvider(qtype string) (Provider, bool) {
	p, ok := r.providers[qtype]
	return p, ok
}

// Register adds or replaces a provider for a type tag.
func (r *Registry) Register(qtype string, p Provider) {
	if qtype == "" || p == nil {
		return
	}
	r.providers[qtype] = p
}

// Registry options

type RegistryOption func(*config)

type config struct {
	MaxEditDistance   int  // short_answer fuzzy matching
	AllowPartialMulti bool // partial credit for multiple_select without false positives
}

func WithMaxEditDistance(n int) RegistryOption { return func(c *config) { c.MaxEditDistance = n } }
func WithPartialCredit(b bool) RegistryOption  { return func(c *config) { c.AllowPartialMulti = b } }

// NewRegistry installs the built-in providers.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &config{
		MaxEditDistance:   1,
		AllowPartialMulti: true,
	}
	for _, o := range opts {
		o(cfg)
	}
	return &Registry{
		providers: map[string]Provider{
			"multiple_choice": choiceProvider{},
			"true_false":      trueFalseProvider{},
			"multiple_select": multiSelectProvider{allowPartial: cfg.AllowPartialMulti},
			"short_answer":    shortAnswerProvider{maxEdit: cfg.MaxEditDistance},
			"numeric":         numericProvider{},
			"essay":           essayProvider{},
		},
	}
}

// Redact strips the fields a learner must not see mid-attempt. Providers use
// it as their display processing; callers fall back to it directly when a
// question's type has no provider.
func Redact(q Question, hideAnswers bool) Question {
	if !hideAnswers {
		return q
	}
	q.CorrectAnswers = nil
	q.Explanation = ""
	if len(q.Options) > 0 {
		opts := make([]Option, len(q.Options))
		for i, o := range q.Options {
			o.IsCorrect = false
			opts[i] = o
		}
		q.Options = opts
	}
	return q
}

// helpers

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
