package models

// EnrichedAnalysis is a ParsedAnalysis plus derived scoring and planning
type EnrichedAnalysis struct {
	ParsedAnalysis
	WeightedScore     float64                      `json:"weightedScore"`
	CategoryBreakdown map[string]CategoryBreakdown `json:"categoryBreakdown"`
	ImprovementPlan   ImprovementPlan              `json:"improvementPlan"`
	EnhancedInsights  EnhancedInsights             `json:"enhancedInsights"`
	Timestamp         string                       `json:"timestamp"`
}

// CategoryBreakdown interprets a single category score
type CategoryBreakdown struct {
	Score       float64 `json:"score"`
	Level       string  `json:"level"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
}

// Rating levels
const (
	LevelExcellent        = "Excellent"
	LevelGood             = "Good"
	LevelAverage          = "Average"
	LevelBelowAverage     = "Below Average"
	LevelNeedsImprovement = "Needs Improvement"
)

// Improvement priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PlanBucket is one horizon of the improvement plan
type PlanBucket struct {
	Actions   []string `json:"actions"`
	Timeframe string   `json:"timeframe"`
}

// ImprovementPlan buckets suggestions by horizon
type ImprovementPlan struct {
	Immediate PlanBucket `json:"immediate"`
	ShortTerm PlanBucket `json:"shortTerm"`
	LongTerm  PlanBucket `json:"longTerm"`
}

// EnhancedInsights summarizes strengths and focus areas
type EnhancedInsights struct {
	Strengths             []string `json:"strengths"`
	FocusAreas            []string `json:"focusAreas"`
	PersonalityIndicators []string `json:"personalityIndicators"`
	Recommendations       []string `json:"recommendations"`
}
