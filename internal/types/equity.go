package types

// FounderContribution scores one founder on four axes, each nominally in [0,10]
type FounderContribution struct {
	Name    string  `json:"name"`
	Skills  float64 `json:"skills"`
	Capital float64 `json:"capital"`
	Time    float64 `json:"time"`
	IP      float64 `json:"ip"`
}

// Allocation is a founder's share of equity in percent, rounded to one decimal
type Allocation struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
}
