package dto

import "time"

type ImportInput struct {
	Path        string
	Format      string
	Start       time.Time
	ParquetPath string
}

type SplitOutput struct {
	Index              int
	DistanceMiles      float64
	DurationSeconds    float64
	PaceSecondsPerMile float64
}

type AnalyzeOutput struct {
	Sport          string
	StartedAt      time.Time
	DistanceMiles  float64
	ElapsedSeconds float64
	Accepted       int
	Rejected       int
	Splits         []SplitOutput
}

type ImportOutput struct {
	AnalyzeOutput
	ActivityID         string
	Duplicate          bool
	NotePath           string
	ParquetPath        string
	Day                string
	DayTotalMiles      float64
	ProgressUpdated    bool
	Progress           float64
	IsCompleted        bool
	CompletionNotified bool
}
