// Package gapanalysis derives heuristic completeness metrics from stored
// conversation histories. It only ever reads.
package gapanalysis

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/coding-with-maaz/chatbot-api/internal/app/chat"
	"github.com/coding-with-maaz/chatbot-api/internal/domain"
	"github.com/coding-with-maaz/chatbot-api/internal/observability"
)

const (
	historyLimit     = 100
	summariesLimit   = 100
	shortResponseLen = 50
	commonGapsTopN   = 5
)

var detailKeywords = []string{"how", "why", "what", "when", "where", "example", "specific"}
var actionKeywords = []string{"next", "step", "action", "do", "should", "recommend"}

type Service struct {
	chat *chat.Service
}

func NewService(chatSvc *chat.Service) *Service {
	return &Service{chat: chatSvc}
}

// AnalyzeConversation reconstructs one conversation's history and applies
// the fixed heuristic rules. Each rule triggers independently with a fixed
// severity and score penalty; penalties accumulate and the score floors
// at zero.
func (s *Service) AnalyzeConversation(ctx context.Context, id domain.ConversationID) (*domain.ConversationAnalysis, error) {
	history, err := s.chat.GetHistory(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}

	if len(history.Messages) == 0 {
		return &domain.ConversationAnalysis{
			ConversationID:    id,
			Status:            domain.AnalysisEmpty,
			Gaps:              []domain.Gap{},
			Suggestions:       []string{"Start a conversation to analyze gaps"},
			CompletenessScore: 0,
		}, nil
	}

	var userMessages, aiMessages []domain.ChatMessage
	for _, m := range history.Messages {
		if m.Role == domain.RoleUser {
			userMessages = append(userMessages, m)
		} else {
			aiMessages = append(aiMessages, m)
		}
	}

	gaps := []domain.Gap{}
	score := 100

	if len(userMessages) < 2 {
		gaps = append(gaps, domain.Gap{
			Type:        domain.GapMissingContext,
			Severity:    domain.GapSeverityMedium,
			Description: "Conversation lacks sufficient context",
			Suggestion:  "Provide more background information or ask follow-up questions",
		})
		score -= 20
	}

	if len(userMessages) == 1 && len(aiMessages) == 1 {
		gaps = append(gaps, domain.Gap{
			Type:        domain.GapNoFollowup,
			Severity:    domain.GapSeverityLow,
			Description: "Single exchange without follow-up",
			Suggestion:  "Consider asking follow-up questions to deepen the conversation",
		})
		score -= 10
	}

	shortResponses := 0
	for _, m := range aiMessages {
		if utf8.RuneCountInString(m.Content) < shortResponseLen {
			shortResponses++
		}
	}
	if float64(shortResponses) > float64(len(aiMessages))*0.5 {
		gaps = append(gaps, domain.Gap{
			Type:        domain.GapShortResponses,
			Severity:    domain.GapSeverityLow,
			Description: "Many responses are quite brief",
			Suggestion:  "Ask for more detailed explanations or examples",
		})
		score -= 15
	}

	if !anyKeyword(userMessages, detailKeywords) && len(userMessages) > 2 {
		gaps = append(gaps, domain.Gap{
			Type:        domain.GapMissingDetails,
			Severity:    domain.GapSeverityMedium,
			Description: "Conversation may lack specific details",
			Suggestion:  "Ask specific questions using 'how', 'why', 'what', or request examples",
		})
		score -= 15
	}

	if !anyKeyword(userMessages, actionKeywords) && len(userMessages) > 3 {
		gaps = append(gaps, domain.Gap{
			Type:        domain.GapNoActionItems,
			Severity:    domain.GapSeverityLow,
			Description: "No clear action items or next steps identified",
			Suggestion:  "Ask about next steps or actionable recommendations",
		})
		score -= 10
	}

	questionMarks := 0
	for _, m := range userMessages {
		questionMarks += strings.Count(m.Content, "?")
	}
	if questionMarks > len(aiMessages) {
		gaps = append(gaps, domain.Gap{
			Type:        domain.GapUnansweredQuestions,
			Severity:    domain.GapSeverityHigh,
			Description: "More questions asked than answered",
			Suggestion:  "Review responses to ensure all questions are addressed",
		})
		score -= 25
	}

	if score < 0 {
		score = 0
	}

	suggestions := make([]string, 0, len(gaps))
	if len(gaps) == 0 {
		suggestions = append(suggestions, "Conversation appears complete and well-structured")
	} else {
		for _, g := range gaps {
			suggestions = append(suggestions, g.Suggestion)
		}
	}

	totalLen := 0
	for _, m := range history.Messages {
		totalLen += utf8.RuneCountInString(m.Content)
	}

	breakdown := &domain.SeverityBreakdown{}
	for _, g := range gaps {
		switch g.Severity {
		case domain.GapSeverityHigh:
			breakdown.High++
		case domain.GapSeverityMedium:
			breakdown.Medium++
		case domain.GapSeverityLow:
			breakdown.Low++
		}
	}

	return &domain.ConversationAnalysis{
		ConversationID:    id,
		Status:            domain.AnalysisAnalyzed,
		Gaps:              gaps,
		Suggestions:       suggestions,
		CompletenessScore: score,
		Metrics: &domain.AnalysisMetrics{
			TotalMessages:        len(history.Messages),
			UserMessages:         len(userMessages),
			AssistantMessages:    len(aiMessages),
			AverageMessageLength: float64(totalLen) / float64(len(history.Messages)),
			QuestionsAsked:       questionMarks,
			CompletenessScore:    score,
		},
		GapCount:          len(gaps),
		SeverityBreakdown: breakdown,
	}, nil
}

// AnalyzeAll analyzes every stored conversation and aggregates the results.
func (s *Service) AnalyzeAll(ctx context.Context) (*domain.OverallAnalysis, error) {
	log := observability.LoggerFromContext(ctx)

	summaries, err := s.chat.ListSummaries(ctx, summariesLimit)
	if err != nil {
		return nil, err
	}

	if len(summaries) == 0 {
		return &domain.OverallAnalysis{
			Status:             domain.AnalysisNoConversations,
			TotalConversations: 0,
		}, nil
	}

	analyses := make([]*domain.ConversationAnalysis, 0, len(summaries))
	for _, summary := range summaries {
		analysis, err := s.AnalyzeConversation(ctx, summary.ConversationID)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	totalGaps := 0
	scoreSum := 0
	frequencies := map[domain.GapType]int{}
	for _, a := range analyses {
		totalGaps += len(a.Gaps)
		scoreSum += a.CompletenessScore
		for _, g := range a.Gaps {
			frequencies[g.Type]++
		}
	}

	common := make([]domain.GapFrequency, 0, len(frequencies))
	for t, n := range frequencies {
		common = append(common, domain.GapFrequency{Type: t, Frequency: n})
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].Frequency != common[j].Frequency {
			return common[i].Frequency > common[j].Frequency
		}
		return common[i].Type < common[j].Type
	})
	if len(common) > commonGapsTopN {
		common = common[:commonGapsTopN]
	}

	avg := float64(scoreSum) / float64(len(analyses))
	avg = math.Round(avg*100) / 100

	log.Info("analyzed all conversations",
		zap.Int("conversations", len(analyses)),
		zap.Int("total_gaps", totalGaps),
	)

	return &domain.OverallAnalysis{
		Status:                   domain.AnalysisAnalyzed,
		TotalConversations:       len(summaries),
		AnalyzedConversations:    len(analyses),
		TotalGapsFound:           totalGaps,
		AverageCompletenessScore: avg,
		CommonGaps:               common,
		ConversationAnalyses:     analyses,
	}, nil
}

func anyKeyword(messages []domain.ChatMessage, keywords []string) bool {
	for _, m := range messages {
		lower := strings.ToLower(m.Content)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
	}
	return false
}
