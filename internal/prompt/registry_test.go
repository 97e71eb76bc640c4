package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Defaults(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)

	for _, op := range []string{OpSentiment, OpSummary, OpRisk, OpImpact, OpKeyPoints, OpRecommendations} {
		spec, ok := r.Spec(op)
		require.True(t, ok, "missing built-in spec for %s", op)
		assert.NotEmpty(t, spec.System)
		assert.NotEmpty(t, spec.UserTemplate)
		assert.Greater(t, spec.MaxTokens, 0)
	}

	sentiment, _ := r.Spec(OpSentiment)
	assert.Equal(t, 10, sentiment.MaxTokens)
	assert.False(t, sentiment.Structured())

	risk, _ := r.Spec(OpRisk)
	assert.True(t, risk.Structured())

	impact, _ := r.Spec(OpImpact)
	assert.True(t, impact.Structured())
}

func TestNewRegistry_MissingFileFallsBack(t *testing.T) {
	r, err := NewRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	_, ok := r.Spec(OpSummary)
	assert.True(t, ok)
}

func TestNewRegistry_FileOverridesSingleOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prompts:
  summary:
    system: Short summaries only.
    max_tokens: 64
`), 0o644))

	r, err := NewRegistry(path)
	require.NoError(t, err)

	summary, ok := r.Spec(OpSummary)
	require.True(t, ok)
	assert.Equal(t, "Short summaries only.", summary.System)
	assert.Equal(t, 64, summary.MaxTokens)
	assert.Contains(t, summary.UserTemplate, "{text}", "unset fields inherit the built-in spec")

	risk, ok := r.Spec(OpRisk)
	require.True(t, ok)
	assert.True(t, risk.Structured(), "untouched ops keep built-in schema")
}

func TestSpec_Render(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)

	t.Run("Substitutes Placeholders", func(t *testing.T) {
		spec, _ := r.Spec(OpRisk)
		system, user := spec.Render(map[string]string{
			"text":    "Increase the treasury allocation",
			"context": "DAO Treasury: $2,500,000",
		})
		assert.NotEmpty(t, system)
		assert.Contains(t, user, "Increase the treasury allocation")
		assert.Contains(t, user, "DAO Treasury: $2,500,000")
		assert.NotContains(t, user, "{text}")
		assert.NotContains(t, user, "{context}")
	})

	t.Run("Truncates Text", func(t *testing.T) {
		spec, _ := r.Spec(OpSentiment)
		long := strings.Repeat("a", 5000)
		_, user := spec.Render(map[string]string{"text": long})
		assert.Less(t, len(user), 1200)
	})
}

func TestSpec_ValidatePayload(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)
	risk, _ := r.Spec(OpRisk)

	t.Run("Valid", func(t *testing.T) {
		err := risk.ValidatePayload(map[string]any{
			"risk_level":   "medium",
			"risk_factors": []any{"Financial impact"},
			"risk_score":   0.5,
		})
		assert.NoError(t, err)
	})

	t.Run("Coerces Numeric Strings", func(t *testing.T) {
		err := risk.ValidatePayload(map[string]any{
			"risk_level": "low",
			"risk_score": "0.2",
		})
		assert.NoError(t, err)
	})

	t.Run("Rejects Unknown Level", func(t *testing.T) {
		err := risk.ValidatePayload(map[string]any{"risk_level": "extreme"})
		assert.Error(t, err)
	})

	t.Run("Unstructured Accepts Anything", func(t *testing.T) {
		summary, _ := r.Spec(OpSummary)
		assert.NoError(t, summary.ValidatePayload("free text"))
	})
}
