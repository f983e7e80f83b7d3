package service

import (
	"time"

	"recall-be/internal/entity"
)

// Every new project starts with a small activity history so the timeline and
// ledger render with content before any document has been analyzed.

func seedTimeline(now time.Time) []*entity.TimelineEvent {
	return []*entity.TimelineEvent{
		{
			Id:          "1",
			Type:        entity.EventTypeDecision,
			Title:       "Chose React over Angular for UI framework",
			Description: "After evaluating performance, ecosystem, and team expertise",
			Timestamp:   now.Add(-2 * time.Hour),
			Author:      "Sarah Chen",
		},
		{
			Id:          "2",
			Type:        entity.EventTypeMilestone,
			Title:       "Design system approved",
			Description: "All stakeholders signed off on the new component library",
			Timestamp:   now.Add(-5 * time.Hour),
			Author:      "Design Team",
		},
		{
			Id:          "3",
			Type:        entity.EventTypeComment,
			Title:       "Accessibility concerns raised",
			Description: "Need to ensure WCAG 2.1 AA compliance across all components",
			Timestamp:   now.Add(-24 * time.Hour),
			Author:      "Alex Kim",
		},
		{
			Id:          "4",
			Type:        entity.EventTypeCommit,
			Title:       "API integration completed",
			Description: "Connected frontend to new microservices architecture",
			Timestamp:   now.Add(-25 * time.Hour),
			Author:      "Dev Team",
		},
	}
}

func seedDecisions(now time.Time) []*entity.Decision {
	return []*entity.Decision{
		{
			Id:         "1",
			Title:      "Use TypeScript for type safety",
			Rationale:  "After encountering multiple runtime errors in the previous version, we decided TypeScript would catch issues at compile time and improve developer experience with better autocomplete and refactoring tools.",
			Outcome:    "Reduced bugs by 40% and improved onboarding time for new developers",
			Timestamp:  now.Add(-3 * 24 * time.Hour),
			Author:     "Engineering Lead",
			Confidence: 92,
			Tags:       []string{"Technical", "Long-term"},
		},
		{
			Id:         "2",
			Title:      "Implement progressive disclosure in complex forms",
			Rationale:  "User testing showed that showing all fields at once was overwhelming. Progressive disclosure improves completion rates while maintaining data quality.",
			Outcome:    "Form completion increased by 35%",
			Timestamp:  now.Add(-5 * 24 * time.Hour),
			Author:     "UX Research",
			Confidence: 88,
			Tags:       []string{"UX", "Data-driven"},
		},
		{
			Id:         "3",
			Title:      "Defer mobile optimization to Q2",
			Rationale:  "Analytics show 85% of enterprise users access the platform on desktop. Mobile optimization would delay critical features needed by our largest customers.",
			Outcome:    "Delivered core features on time, mobile planned for Q2",
			Timestamp:  now.Add(-7 * 24 * time.Hour),
			Author:     "Product Manager",
			Confidence: 75,
			Tags:       []string{"Strategy", "Trade-off"},
		},
	}
}
