package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndent(t *testing.T) {
	in := "first\n\t second\n  third"
	out := Indent(in, 4)
	assert.Equal(t, "    first\n    second\n    third", out)
}

func TestIndentPreservingEmpty(t *testing.T) {
	in := "first\n\nsecond"
	out := IndentPreservingEmpty(in, 2)
	assert.Equal(t, "  first\n\n  second", out)
}

func TestBuildSystemPrompt(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	out, err := BuildSystemPrompt(
		"Analyst",
		"Knows the markets",
		"Provide detailed market analysis.",
		[]ToolInfo{
			{Name: "get_market_info", Description: "Market updates"},
			{Name: "consult_quant", Description: "Quantitative analysis"},
		},
		now,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Your name is: 'Analyst'")
	assert.Contains(t, out, "Your description is: 'Knows the markets'")
	assert.Contains(t, out, "Provide detailed market analysis.")
	assert.Contains(t, out, "14/03/2025 15:09:26")
	assert.Contains(t, out, "1. get_market_info: Market updates")
	assert.Contains(t, out, "2. consult_quant: Quantitative analysis")
}

func TestBuildSystemPrompt_NoTools(t *testing.T) {
	out, err := BuildSystemPrompt("A", "B", "C", nil, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, out, "# Available tools")
}

func TestEnhanceInput(t *testing.T) {
	out := EnhanceInput("what moves the market?", []string{"market", "rates"})
	assert.Contains(t, out, "what moves the market?")
	assert.Contains(t, out, "market, rates")
	assert.True(t, strings.HasPrefix(out, "# User Input"))
}

func TestEnhanceInput_NoKeywords(t *testing.T) {
	assert.Equal(t, "plain", EnhanceInput("plain", nil))
}
