package analytics

import "sort"

// SalesTrendPoint is the revenue of one month and its delta to the month before
type SalesTrendPoint struct {
	Period        string  `json:"period"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// CalculateSalesTrends groups revenue by YYYY-MM and returns one point per
// month present in records, in chronological order.
func CalculateSalesTrends(records []SaleRecord) []SalesTrendPoint {
	if len(records) == 0 {
		return []SalesTrendPoint{}
	}

	byMonth := make(map[string]float64)
	for _, r := range records {
		byMonth[MonthKey(r.OccurredAt)] += toFloat64(r.Amount)
	}

	periods := make([]string, 0, len(byMonth))
	for p := range byMonth {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	points := make([]SalesTrendPoint, 0, len(periods))
	for i, p := range periods {
		point := SalesTrendPoint{Period: p, Value: byMonth[p]}
		if i > 0 {
			prev := byMonth[periods[i-1]]
			point.Change = point.Value - prev
			if prev != 0 {
				point.ChangePercent = point.Change / prev * 100
			}
		}
		points = append(points, point)
	}
	return points
}
