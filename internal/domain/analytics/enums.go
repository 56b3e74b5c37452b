package analytics

// TrendDirection is the tri-state direction of a KPI
type TrendDirection string

const (
	TrendUp     TrendDirection = "UP"
	TrendDown   TrendDirection = "DOWN"
	TrendStable TrendDirection = "STABLE"
)

// IsValid reports whether d is a known trend direction
func (d TrendDirection) IsValid() bool {
	switch d {
	case TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

// InsightKind classifies an insight
type InsightKind string

const (
	InsightOpportunity InsightKind = "OPPORTUNITY"
	InsightConcern     InsightKind = "CONCERN"
	InsightAchievement InsightKind = "ACHIEVEMENT"
)

// IsValid reports whether k is a known insight kind
func (k InsightKind) IsValid() bool {
	switch k {
	case InsightOpportunity, InsightConcern, InsightAchievement:
		return true
	}
	return false
}

// Impact grades how much an insight matters
type Impact string

const (
	ImpactHigh   Impact = "HIGH"
	ImpactMedium Impact = "MEDIUM"
	ImpactLow    Impact = "LOW"
)

// IsValid reports whether i is a known impact level
func (i Impact) IsValid() bool {
	switch i {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	}
	return false
}
