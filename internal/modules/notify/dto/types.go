package dto

type CompletionInput struct {
	Current  float64
	Goal     float64
	Previous float64
}

type CompletionOutput struct {
	Send bool
	Day  string
}

type ReminderOutput struct {
	Kind  string
	Title string
	Body  string
}

type PresentOutput struct {
	Reminder   ReminderOutput
	Suppressed bool
}

type StateOutput struct {
	LastCompletionNotificationDate string
	Today                          string
	NotifiedToday                  bool
}
