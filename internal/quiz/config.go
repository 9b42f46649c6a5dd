package quiz

// Config controls quiz generation.
type Config struct {
	// Validators run in order after the count and shape checks, which
	// always run. Listing "count" or "shape" here does not repeat them.
	// The first failure rejects the whole quiz.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions caps how many earlier questions are listed in a
	// retake prompt.
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&CountValidator{},
			&ShapeValidator{},
		},
		MaxTokens:         3072,
		Temperature:       0.7,
		MaxPriorQuestions: 20,
	}
}

// chain returns the count and shape validators followed by the configured
// ones.
func (c Config) chain() []Validator {
	vs := []Validator{&CountValidator{}, &ShapeValidator{}}
	for _, v := range c.Validators {
		if v == nil || v.Name() == "count" || v.Name() == "shape" {
			continue
		}
		vs = append(vs, v)
	}
	return vs
}
