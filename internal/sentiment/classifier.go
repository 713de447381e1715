package sentiment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"CanteenFeedback/internal/models"
)

// PositiveClass is the class code the trained model uses for positive reviews.
const PositiveClass = 1

var ErrModelNotLoaded = errors.New("sentiment model not loaded")

// Predictor maps review text to a class code.
type Predictor interface {
	Predict(ctx context.Context, text string) (int, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, text string) (int, error)

func (f PredictorFunc) Predict(ctx context.Context, text string) (int, error) {
	return f(ctx, text)
}

// LabelFor maps a class code to a label: 1 is Positive, anything else Negative.
func LabelFor(code int) models.SentimentLabel {
	if code == PositiveClass {
		return models.Positive
	}
	return models.Negative
}

// Classifier turns review text into a SentimentLabel.
type Classifier struct {
	predictor Predictor
}

func NewClassifier(p Predictor) *Classifier {
	return &Classifier{predictor: p}
}

func (c *Classifier) Classify(ctx context.Context, review string) (models.SentimentLabel, error) {
	if c == nil || c.predictor == nil {
		return "", ErrModelNotLoaded
	}
	code, err := c.predictor.Predict(ctx, review)
	if err != nil {
		return "", fmt.Errorf("predict sentiment: %w", err)
	}
	return LabelFor(code), nil
}

// ModelCache loads the model artifact on first use and hands the same
// read-only Model to every caller for the life of the process.
type ModelCache struct {
	path  string
	once  sync.Once
	model *Model
	err   error
}

func NewModelCache(path string) *ModelCache {
	return &ModelCache{path: path}
}

func (c *ModelCache) Get() (*Model, error) {
	c.once.Do(func() {
		c.model, c.err = LoadModel(c.path)
	})
	return c.model, c.err
}

// Predict loads the model if needed and predicts with it.
func (c *ModelCache) Predict(ctx context.Context, text string) (int, error) {
	m, err := c.Get()
	if err != nil {
		return 0, errors.Join(ErrModelNotLoaded, err)
	}
	return m.Predict(ctx, text)
}
