package domain

// GapSeverity represents the severity of a detected conversational gap.
type GapSeverity string

const (
	GapSeverityLow    GapSeverity = "low"
	GapSeverityMedium GapSeverity = "medium"
	GapSeverityHigh   GapSeverity = "high"
)

// GapType identifies which heuristic rule produced a gap.
type GapType string

const (
	GapMissingContext      GapType = "missing_context"
	GapNoFollowup          GapType = "no_followup"
	GapShortResponses      GapType = "short_responses"
	GapMissingDetails      GapType = "missing_details"
	GapNoActionItems       GapType = "no_action_items"
	GapUnansweredQuestions GapType = "unanswered_questions"
)

// Gap is a heuristically detected conversational shortcoming.
type Gap struct {
	Type        GapType     `json:"type"`
	Severity    GapSeverity `json:"severity"`
	Description string      `json:"description"`
	Suggestion  string      `json:"suggestion"`
}

// AnalysisStatus is the outcome classification of an analysis run.
type AnalysisStatus string

const (
	AnalysisEmpty           AnalysisStatus = "empty"
	AnalysisAnalyzed        AnalysisStatus = "analyzed"
	AnalysisNoConversations AnalysisStatus = "no_conversations"
)

// AnalysisMetrics are the aggregate counters computed alongside the gaps.
type AnalysisMetrics struct {
	TotalMessages        int     `json:"total_messages"`
	UserMessages         int     `json:"user_messages"`
	AssistantMessages    int     `json:"ai_messages"`
	AverageMessageLength float64 `json:"average_message_length"`
	QuestionsAsked       int     `json:"questions_asked"`
	CompletenessScore    int     `json:"completeness_score"`
}

// SeverityBreakdown counts gaps per severity level.
type SeverityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ConversationAnalysis is the non-persisted result of analyzing one
// conversation's reconstructed history.
type ConversationAnalysis struct {
	ConversationID    ConversationID     `json:"conversation_id"`
	Status            AnalysisStatus     `json:"status"`
	Gaps              []Gap              `json:"gaps"`
	Suggestions       []string           `json:"suggestions"`
	CompletenessScore int                `json:"completeness_score"`
	Metrics           *AnalysisMetrics   `json:"metrics,omitempty"`
	GapCount          int                `json:"gap_count"`
	SeverityBreakdown *SeverityBreakdown `json:"severity_breakdown,omitempty"`
}

// GapFrequency is one entry of the cross-conversation gap tally.
type GapFrequency struct {
	Type      GapType `json:"type"`
	Frequency int     `json:"frequency"`
}

// OverallAnalysis aggregates per-conversation analyses across the store.
type OverallAnalysis struct {
	Status                   AnalysisStatus          `json:"status"`
	TotalConversations       int                     `json:"total_conversations"`
	AnalyzedConversations    int                     `json:"analyzed_conversations,omitempty"`
	TotalGapsFound           int                     `json:"total_gaps_found,omitempty"`
	AverageCompletenessScore float64                 `json:"average_completeness_score,omitempty"`
	CommonGaps               []GapFrequency          `json:"common_gaps,omitempty"`
	ConversationAnalyses     []*ConversationAnalysis `json:"conversation_analyses,omitempty"`
}
