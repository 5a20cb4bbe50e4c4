package models

// Athlete is a public athlete (or organization) profile.
type Athlete struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	Age            int               `json:"age" yaml:"age"`
	Sport          string            `json:"sport" yaml:"sport"`
	Location       string            `json:"location" yaml:"location"`
	ProfilePicture string            `json:"profile_picture" yaml:"profile_picture"`
	CoverPhoto     string            `json:"cover_photo" yaml:"cover_photo"`
	Height         string            `json:"height" yaml:"height"`
	Weight         string            `json:"weight" yaml:"weight"`
	PersonalBests  map[string]string `json:"personal_bests" yaml:"personal_bests"`
	TestResults    []TestResult      `json:"test_results" yaml:"test_results"`
	Achievements   []string          `json:"achievements" yaml:"achievements"`
	Videos         []string          `json:"videos" yaml:"videos"`
	Verified       bool              `json:"verified" yaml:"verified"`
	Following      bool              `json:"following" yaml:"following"`
}

// TestResult is one recorded fitness-test outcome. Date is YYYY-MM-DD.
type TestResult struct {
	TestName   string  `json:"test_name" yaml:"test_name"`
	Score      float64 `json:"score" yaml:"score"`
	Unit       string  `json:"unit" yaml:"unit"`
	Date       string  `json:"date" yaml:"date"`
	Percentile float64 `json:"percentile" yaml:"percentile"`
}

// PercentileTotal sums the percentiles of all test results. Leaderboards rank by it.
func (a Athlete) PercentileTotal() float64 {
	var sum float64
	for _, r := range a.TestResults {
		sum += r.Percentile
	}
	return sum
}
