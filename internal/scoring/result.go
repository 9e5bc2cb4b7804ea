package scoring

import (
	"math"
	"time"
)

// Score scale constants. The model scores each criterion on a 1-10 raw
// scale; results are rescaled to 0-25 per criterion, 0-100 total.
const (
	MaxCriterionScore = 25.0
	MaxTotalScore     = 100.0
	rawMin            = 1.0
	rawMax            = 10.0
)

// Ranking tiers, best first.
const (
	TierExcellent        = "excellent"
	TierVeryGood         = "very_good"
	TierGood             = "good"
	TierNeedsImprovement = "needs_improvement"
)

// CriterionScore is one rubric dimension of a scored pitch
type CriterionScore struct {
	Score              float64  `json:"score"`
	MaxScore           float64  `json:"max_score"`
	Strengths          []string `json:"strengths"`
	AreasOfImprovement []string `json:"areas_of_improvement"`
}

// Criteria holds the four rubric dimensions
type Criteria struct {
	Idea                    CriterionScore `json:"idea"`
	TechnicalImplementation CriterionScore `json:"technical_implementation"`
	ToolUse                 CriterionScore `json:"tool_use"`
	PresentationDelivery    CriterionScore `json:"presentation_delivery"`
}

// Overall summarizes a scored pitch
type Overall struct {
	TotalScore          float64 `json:"total_score"`
	MaxTotal            float64 `json:"max_total"`
	Percentage          float64 `json:"percentage"`
	RankingTier         string  `json:"ranking_tier"`
	JudgeRecommendation string  `json:"judge_recommendation"`
}

// ScoreResult is one judge's complete scoring of one session
type ScoreResult struct {
	SessionID  string    `json:"session_id"`
	EventID    string    `json:"event_id"`
	JudgeID    string    `json:"judge_id"`
	TeamName   string    `json:"team_name,omitempty"`
	PitchTitle string    `json:"pitch_title,omitempty"`
	Criteria   Criteria  `json:"criteria"`
	Overall    Overall   `json:"overall"`
	ModelUsed  string    `json:"model_used,omitempty"`
	ScoredAt   time.Time `json:"scored_at"`
}

// TierFor maps a percentage to its ranking tier. Thresholds: excellent >= 85,
// very_good >= 70, good >= 50, needs_improvement below.
func TierFor(percentage float64) string {
	switch {
	case percentage >= 85:
		return TierExcellent
	case percentage >= 70:
		return TierVeryGood
	case percentage >= 50:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

// rescale maps a raw 1-10 criterion score to the 0-25 scale, rounded to the
// nearest half point.
func rescale(raw float64) float64 {
	return math.Round(raw*2.5*2) / 2
}
