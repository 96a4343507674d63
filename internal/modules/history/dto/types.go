package dto

// AddInput adds miles to a day. A non-empty ActivityKey is counted at most
// once; repeats report Duplicate on the output and leave the total as is.
type AddInput struct {
	Day         string
	Miles       float64
	ActivityKey string
}

type DailyTotalOutput struct {
	Day       string
	Miles     float64
	Duplicate bool
}

type StreakOutput struct {
	Count     int
	StartDate string
	Today     string
	Threshold float64
}
