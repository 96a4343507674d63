package domain

import "time"

// State holds the one slot that limits completion notices to one per day.
type State struct {
	LastCompletionNotificationDate string `json:"last_completion_notification_date"`
}

func (s State) NotifiedOn(day string) bool {
	return s.LastCompletionNotificationDate != "" && s.LastCompletionNotificationDate == day
}

// CompletionCrossed is edge triggered: the goal must be reached now and not
// before, so repeated saves above the goal never fire again.
func CompletionCrossed(current, goal, previous float64) bool {
	return current >= goal && previous < goal
}

type ReminderKind string

const (
	ReminderCongratulatory ReminderKind = "congratulatory"
	ReminderMotivational   ReminderKind = "motivational"
)

type Reminder struct {
	Kind  ReminderKind `json:"kind"`
	Title string       `json:"title"`
	Body  string       `json:"body"`
}

// ReminderFor picks the daily reminder content from today's completion.
func ReminderFor(isCompleted bool) Reminder {
	if isCompleted {
		return Reminder{
			Kind:  ReminderCongratulatory,
			Title: "Mile done!",
			Body:  "You hit today's goal. See you tomorrow.",
		}
	}
	return Reminder{
		Kind:  ReminderMotivational,
		Title: "Still time for your mile",
		Body:  "A short walk keeps the streak alive.",
	}
}

type Kind string

const (
	KindCompletion Kind = "completion"
	KindReminder   Kind = "reminder"
)

// Notification is a decision handed to the platform scheduler for delivery.
type Notification struct {
	Kind  Kind      `json:"kind"`
	Day   string    `json:"day"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

func CompletionNotification(day string, at time.Time) Notification {
	return Notification{
		Kind:  KindCompletion,
		Day:   day,
		Title: "Daily goal complete",
		Body:  "You covered today's mile.",
		At:    at,
	}
}
