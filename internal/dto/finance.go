package dto

// ── 财务 ──

// CourseFinance 课程收支
type CourseFinance struct {
	CourseID         string  `json:"course_id"`
	Title            string  `json:"title"`
	Participants     int     `json:"participants"`
	PaidParticipants int     `json:"paid_participants"`
	Revenue          float64 `json:"revenue"`
	Cost             float64 `json:"cost"`
	Profit           float64 `json:"profit"`
	PoolRent         float64 `json:"pool_rent"`
	BilledDate       *string `json:"billed_date,omitempty"`
}

// FinanceOverview 全部课程汇总
type FinanceOverview struct {
	Courses      []CourseFinance `json:"courses"`
	TotalRevenue float64         `json:"total_revenue"`
	TotalCost    float64         `json:"total_cost"`
	TotalProfit  float64         `json:"total_profit"`
}
