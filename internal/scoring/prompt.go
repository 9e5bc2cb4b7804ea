package scoring

import (
	"fmt"

	"github.com/pitchscoop/pitchscoop-backend/internal/completion"
)

const systemPrompt = `You are an experienced hackathon judge scoring a pitch from its transcript.
Score each criterion on a scale of 1 to 10 and respond with a single JSON object only, no prose, using exactly this shape:
{
  "idea": {"score": <1-10>, "strengths": ["..."], "areas_of_improvement": ["..."]},
  "technical_implementation": {"score": <1-10>, "strengths": ["..."], "areas_of_improvement": ["..."]},
  "tool_use": {"score": <1-10>, "strengths": ["..."], "areas_of_improvement": ["..."]},
  "presentation_delivery": {"score": <1-10>, "strengths": ["..."], "areas_of_improvement": ["..."]},
  "judge_recommendation": "<one or two sentences for the judging panel>"
}

Criteria:
- idea: novelty of the concept, clarity of the problem, and fit of the solution.
- technical_implementation: depth and soundness of what was actually built.
- tool_use: how effectively agentic tools and APIs were applied.
- presentation_delivery: structure, clarity, and persuasiveness of the delivery.`

// buildScoringRequest composes the completion request for one transcript
func buildScoringRequest(teamName, pitchTitle, transcript string, temperature float32, maxTokens int) completion.Request {
	user := fmt.Sprintf("Team: %s\nPitch title: %s\n\nTranscript:\n%s", teamName, pitchTitle, transcript)

	return completion.Request{
		Messages: []completion.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSONOnly:    true,
	}
}
