package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRubric = `{
  "idea": {"score": 9, "strengths": ["original"], "areas_of_improvement": ["scope"]},
  "technical_implementation": {"score": 8, "strengths": ["solid"], "areas_of_improvement": []},
  "tool_use": {"score": 7, "strengths": [], "areas_of_improvement": ["more tools"]},
  "presentation_delivery": {"score": 6, "strengths": ["clear"], "areas_of_improvement": ["pace"]},
  "judge_recommendation": "Strong contender."
}`

func TestParseRubric_Valid(t *testing.T) {
	rubric, err := parseRubric(validRubric)
	require.NoError(t, err)

	assert.Equal(t, 9.0, *rubric.Idea.Score)
	assert.Equal(t, 8.0, *rubric.TechnicalImplementation.Score)
	assert.Equal(t, 7.0, *rubric.ToolUse.Score)
	assert.Equal(t, 6.0, *rubric.PresentationDelivery.Score)
	assert.Equal(t, "Strong contender.", rubric.JudgeRecommendation)
}

func TestParseRubric_CodeFenced(t *testing.T) {
	fenced := "```json\n" + validRubric + "\n```"
	rubric, err := parseRubric(fenced)
	require.NoError(t, err)
	assert.Equal(t, 9.0, *rubric.Idea.Score)
}

func TestParseRubric_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty output", ""},
		{"prose only", "I would rate this pitch very highly."},
		{"truncated JSON", `{"idea": {"score": 9`},
		{"missing criterion", `{"idea": {"score": 9}, "tool_use": {"score": 7}, "presentation_delivery": {"score": 6}}`},
		{"missing score", `{"idea": {"strengths": []}, "technical_implementation": {"score": 8}, "tool_use": {"score": 7}, "presentation_delivery": {"score": 6}}`},
		{"score above range", `{"idea": {"score": 11}, "technical_implementation": {"score": 8}, "tool_use": {"score": 7}, "presentation_delivery": {"score": 6}}`},
		{"score below range", `{"idea": {"score": 0}, "technical_implementation": {"score": 8}, "tool_use": {"score": 7}, "presentation_delivery": {"score": 6}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRubric(tt.content)
			require.Error(t, err)

			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}
