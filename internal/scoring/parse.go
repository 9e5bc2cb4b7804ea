package scoring

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError is returned when the model's output cannot be decoded into a
// complete rubric. The scorer never guesses missing values.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "score parse error: " + e.Reason
}

type rawCriterion struct {
	Score              *float64 `json:"score"`
	Strengths          []string `json:"strengths"`
	AreasOfImprovement []string `json:"areas_of_improvement"`
}

type rawRubric struct {
	Idea                    *rawCriterion `json:"idea"`
	TechnicalImplementation *rawCriterion `json:"technical_implementation"`
	ToolUse                 *rawCriterion `json:"tool_use"`
	PresentationDelivery    *rawCriterion `json:"presentation_delivery"`
	JudgeRecommendation     string        `json:"judge_recommendation"`
}

// parseRubric decodes the model output into a validated raw rubric. Models
// occasionally wrap the object in code fences, so the outermost JSON object
// is extracted before strict decoding.
func parseRubric(content string) (*rawRubric, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, &ParseError{Reason: "no JSON object in model output"}
	}

	var rubric rawRubric
	if err := json.Unmarshal([]byte(content[start:end+1]), &rubric); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}

	for name, c := range map[string]*rawCriterion{
		"idea":                     rubric.Idea,
		"technical_implementation": rubric.TechnicalImplementation,
		"tool_use":                 rubric.ToolUse,
		"presentation_delivery":    rubric.PresentationDelivery,
	} {
		if c == nil {
			return nil, &ParseError{Reason: "missing criterion: " + name}
		}
		if c.Score == nil {
			return nil, &ParseError{Reason: "missing score for criterion: " + name}
		}
		if *c.Score < rawMin || *c.Score > rawMax {
			return nil, &ParseError{Reason: fmt.Sprintf("score for %s out of range: %g", name, *c.Score)}
		}
	}

	return &rubric, nil
}

// toCriterion rescales one raw criterion to the 0-25 scale
func toCriterion(c *rawCriterion) CriterionScore {
	return CriterionScore{
		Score:              rescale(*c.Score),
		MaxScore:           MaxCriterionScore,
		Strengths:          c.Strengths,
		AreasOfImprovement: c.AreasOfImprovement,
	}
}
