package types

type UsageStats struct {
	Date       string `json:"date"`
	DailyUsers int64  `json:"dailyUsers"`
	TotalUsers int64  `json:"totalUsers"`
}
