package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// minCategoriesForLaggard is the category count below which no laggard is reported
	minCategoriesForLaggard = 3
	// laggardThreshold is the fraction of the mean category revenue under which a category lags
	laggardThreshold = 0.5
	// minEmployeesForTopPerformer is the employee count below which no top performer is reported
	minEmployeesForTopPerformer = 2
)

// Insight is a heuristic observation about a set of sales
type Insight struct {
	Kind        InsightKind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      Impact      `json:"impact"`
	Actionable  bool        `json:"actionable"`
}

// GenerateInsights runs every insight heuristic over records.
// Heuristics are independent; each contributes zero or one insight.
func GenerateInsights(records []SaleRecord) []Insight {
	insights := make([]Insight, 0, 4)
	if len(records) == 0 {
		return insights
	}

	categories := Aggregate(records).SalesByCategory
	insights = append(insights, categoryInsights(categories)...)

	if insight, ok := bestWeekdayInsight(records); ok {
		insights = append(insights, insight)
	}
	if insight, ok := topPerformerInsight(records); ok {
		insights = append(insights, insight)
	}
	return insights
}

func categoryInsights(categories []CategorySales) []Insight {
	if len(categories) == 0 {
		return nil
	}

	leader, laggard := categories[0], categories[0]
	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.Revenue)
		if c.Revenue.GreaterThan(leader.Revenue) {
			leader = c
		}
		if c.Revenue.LessThan(laggard.Revenue) {
			laggard = c
		}
	}

	insights := []Insight{{
		Kind:        InsightAchievement,
		Title:       fmt.Sprintf("Top Category: %s", leader.Category),
		Description: fmt.Sprintf("%s leads all categories with %s in revenue", leader.Category, leader.Revenue.StringFixed(2)),
		Impact:      ImpactHigh,
		Actionable:  false,
	}}

	if len(categories) < minCategoriesForLaggard {
		return insights
	}

	mean := total.Div(decimal.NewFromInt(int64(len(categories))))
	if laggard.Revenue.LessThan(mean.Mul(decimal.NewFromFloat(laggardThreshold))) {
		insights = append(insights, Insight{
			Kind:  InsightOpportunity,
			Title: fmt.Sprintf("Underperforming Category: %s", laggard.Category),
			Description: fmt.Sprintf("%s earned %s, less than half of the %s category average; consider promotions or bundling",
				laggard.Category, laggard.Revenue.StringFixed(2), mean.StringFixed(2)),
			Impact:     ImpactMedium,
			Actionable: true,
		})
	}
	return insights
}

func bestWeekdayInsight(records []SaleRecord) (Insight, bool) {
	var byDay [7]decimal.Decimal
	for _, r := range records {
		day := r.OccurredAt.UTC().Weekday()
		byDay[day] = byDay[day].Add(r.Amount)
	}

	best := time.Sunday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if byDay[d].GreaterThan(byDay[best]) {
			best = d
		}
	}

	return Insight{
		Kind:        InsightAchievement,
		Title:       fmt.Sprintf("Best Sales Day: %s", best),
		Description: fmt.Sprintf("%s brings in the most revenue (%s); consider promotions on other days to balance traffic", best, byDay[best].StringFixed(2)),
		Impact:      ImpactMedium,
		Actionable:  true,
	}, true
}

func topPerformerInsight(records []SaleRecord) (Insight, bool) {
	employees := Aggregate(records).SalesByEmployee
	if len(employees) < minEmployeesForTopPerformer {
		return Insight{}, false
	}

	top := employees[0]
	for _, e := range employees[1:] {
		if e.Revenue.GreaterThan(top.Revenue) {
			top = e
		}
	}

	return Insight{
		Kind:        InsightAchievement,
		Title:       "Top Performer",
		Description: fmt.Sprintf("Employee %s leads with %s in revenue across %d sales", shortID(top.EmployeeID), top.Revenue.StringFixed(2), top.Count),
		Impact:      ImpactHigh,
		Actionable:  false,
	}, true
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
