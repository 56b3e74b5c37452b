package account

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultRevenueHealth is used when no revenue target is configured
	DefaultRevenueHealth = 85.0
	// DefaultServiceHealth is used when the account has no service history
	DefaultServiceHealth = 50.0
	// PaymentHealthPlaceholder stands in until a payment ledger signal exists
	PaymentHealthPlaceholder = 90.0
	// RelationshipBase is the relationship score before tier and level bonuses
	RelationshipBase = 70.0

	// DefaultRenewalWindowDays is how far ahead a contract end counts as approaching
	DefaultRenewalWindowDays = 90
	// DefaultServiceHistoryLimit caps the service records considered
	DefaultServiceHistoryLimit = 12

	revenueRiskThreshold = 70.0
	serviceRiskThreshold = 60.0
	serviceDecayPerMonth = 10.0
	daysPerMonth         = 30
)

// Risk factors
const (
	RiskRevenueBelowTarget  = "Revenue below target"
	RiskLowServiceFrequency = "Low service frequency"
	RiskRenewalApproaching  = "Contract renewal approaching"
)

// Recommendations
const (
	RecommendReviewMeeting   = "Schedule a business review meeting to discuss revenue targets"
	RecommendUpsell          = "Identify upsell opportunities for additional services"
	RecommendInitiateRenewal = "Initiate contract renewal discussions"
	RecommendPrepareProposal = "Prepare a renewal proposal with updated pricing"
)

// HealthScore is the composite health of an account
type HealthScore struct {
	RevenueHealth      float64  `json:"revenue_health"`
	ServiceHealth      float64  `json:"service_health"`
	PaymentHealth      float64  `json:"payment_health"`
	RelationshipHealth float64  `json:"relationship_health"`
	OverallScore       int      `json:"overall_score"`
	RiskFactors        []string `json:"risk_factors"`
	Recommendations    []string `json:"recommendations"`
}

// HealthScorer computes HealthScore values. It holds no state besides its
// clock and renewal window and never mutates its inputs.
type HealthScorer struct {
	Now               func() time.Time
	RenewalWindowDays int
}

// NewHealthScorer creates a scorer using the wall clock
func NewHealthScorer() *HealthScorer {
	return &HealthScorer{
		Now:               time.Now,
		RenewalWindowDays: DefaultRenewalWindowDays,
	}
}

// Score computes the health of acct from its owner's service records,
// ordered most-recent-first.
func (s *HealthScorer) Score(acct *Account, records []ServiceRecord) *HealthScore {
	now := s.Now()

	score := &HealthScore{
		RevenueHealth:      revenueHealth(acct.AnnualRevenueTarget, records),
		ServiceHealth:      serviceHealth(records, now),
		PaymentHealth:      PaymentHealthPlaceholder,
		RelationshipHealth: relationshipHealth(acct.Tier, acct.ServiceLevel),
		RiskFactors:        []string{},
		Recommendations:    []string{},
	}

	mean := (score.RevenueHealth + score.ServiceHealth + score.PaymentHealth + score.RelationshipHealth) / 4
	score.OverallScore = int(math.Round(mean))

	if score.RevenueHealth < revenueRiskThreshold {
		score.RiskFactors = append(score.RiskFactors, RiskRevenueBelowTarget)
		score.Recommendations = append(score.Recommendations, RecommendReviewMeeting, RecommendUpsell)
	}
	if score.ServiceHealth < serviceRiskThreshold {
		score.RiskFactors = append(score.RiskFactors, RiskLowServiceFrequency)
	}
	if acct.RenewalDue(now, s.RenewalWindowDays) {
		score.RiskFactors = append(score.RiskFactors, RiskRenewalApproaching)
		score.Recommendations = append(score.Recommendations, RecommendInitiateRenewal, RecommendPrepareProposal)
	}

	return score
}

func revenueHealth(target decimal.Decimal, records []ServiceRecord) float64 {
	if !target.IsPositive() {
		return DefaultRevenueHealth
	}
	actual := decimal.Zero
	for _, r := range records {
		actual = actual.Add(r.Total())
	}
	ratio, _ := actual.Div(target).Float64()
	return clamp(ratio * 100)
}

func serviceHealth(records []ServiceRecord, now time.Time) float64 {
	if len(records) == 0 {
		return DefaultServiceHealth
	}
	oldest := records[0].ServiceDate
	for _, r := range records[1:] {
		if r.ServiceDate.Before(oldest) {
			oldest = r.ServiceDate
		}
	}
	return clamp(100 - float64(monthsElapsed(oldest, now))*serviceDecayPerMonth)
}

// monthsElapsed counts whole 30-day months between from and to
func monthsElapsed(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) / daysPerMonth
}

func relationshipHealth(tier Tier, level ServiceLevel) float64 {
	score := RelationshipBase
	switch tier {
	case TierPlatinum:
		score += 20
	case TierGold:
		score += 10
	}
	switch level {
	case ServiceLevelPremium:
		score += 10
	case ServiceLevelEnhanced:
		score += 5
	}
	return math.Min(100, score)
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
