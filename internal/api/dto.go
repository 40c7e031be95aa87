package api

import "github.com/hey-codes/paperterm/internal/reminders"

// AddReminderRequest is the request body for appending a reminder.
type AddReminderRequest struct {
	Text     string `json:"text" example:"Water the plants" validate:"required"`
	Priority string `json:"priority,omitempty" example:"high" enums:"normal,high"`
}

// ReminderListResponse wraps the parsed reminders.
type ReminderListResponse struct {
	Reminders []reminders.Reminder `json:"reminders" validate:"required"`
}
