package sentiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanteenFeedback/internal/models"
)

func TestLabelFor(t *testing.T) {
	assert.Equal(t, models.Positive, LabelFor(1))
	assert.Equal(t, models.Negative, LabelFor(0))
	assert.Equal(t, models.Negative, LabelFor(-1))
	assert.Equal(t, models.Negative, LabelFor(2))
}

func TestClassifierClassify(t *testing.T) {
	ctx := context.Background()

	c := NewClassifier(PredictorFunc(func(context.Context, string) (int, error) { return 1, nil }))
	label, err := c.Classify(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, models.Positive, label)

	boom := errors.New("boom")
	c = NewClassifier(PredictorFunc(func(context.Context, string) (int, error) { return 0, boom }))
	_, err = c.Classify(ctx, "anything")
	assert.ErrorIs(t, err, boom)

	var empty *Classifier
	_, err = empty.Classify(ctx, "anything")
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestModelCacheLoadsOnce(t *testing.T) {
	data, err := os.ReadFile(testModelPath)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cache := NewModelCache(path)
	first, err := cache.Get()
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	second, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)

	code, err := cache.Predict(context.Background(), "Excellent food, loved it!")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestModelCacheMissingArtifact(t *testing.T) {
	cache := NewModelCache(filepath.Join(t.TempDir(), "missing.json"))
	_, err := cache.Predict(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}
