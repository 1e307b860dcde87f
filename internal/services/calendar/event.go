package calendar

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/ewhitmore/taskdeck/internal/timeutil"
)

// taskIDProperty is the private extended property that ties an event back to
// its task. Lookups by this property make sync idempotent.
const taskIDProperty = "taskdeck_task_id"

// defaultEventDuration is used when the task carries no subtask time at all
const defaultEventDuration = 30 * time.Minute

// BuildEvent converts a scheduled task into its calendar event. Tasks with a
// clock time become timed events sized by their remaining subtask work;
// tasks with only a date become all-day events.
func BuildEvent(task *models.Task) (*calendar.Event, error) {
	if task == nil || task.ScheduleDate == nil {
		return nil, fmt.Errorf("task has no schedule date")
	}

	summary := task.Name
	if task.Status == models.StatusCompleted {
		summary = "✓ " + summary
	}

	description := task.Description
	if open := openSeconds(task); open > 0 {
		remaining := fmt.Sprintf("Remaining work: %s", timeutil.FormatDuration(open))
		if description != "" {
			description += "\n\n"
		}
		description += remaining
	}

	event := &calendar.Event{
		Summary:     summary,
		Description: description,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				taskIDProperty: task.ID.String(),
			},
		},
	}

	start, allDay := eventStart(task)
	if allDay {
		day := start.Format("2006-01-02")
		event.Start = &calendar.EventDateTime{Date: day}
		event.End = &calendar.EventDateTime{Date: day}
		return event, nil
	}

	event.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)}
	event.End = &calendar.EventDateTime{DateTime: start.Add(eventDuration(task)).Format(time.RFC3339)}
	return event, nil
}

// eventStart resolves the event start. The clock time is kept as entered and
// applied in the schedule date's location; an absent or unparseable time
// yields an all-day event.
func eventStart(task *models.Task) (time.Time, bool) {
	date := *task.ScheduleDate
	if task.ScheduleTime == nil {
		return date, true
	}
	clock, err := time.Parse("15:04", *task.ScheduleTime)
	if err != nil {
		return date, true
	}
	start := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location())
	return start, false
}

// openSeconds sums the remaining time of the not-yet-completed subtasks
func openSeconds(task *models.Task) int {
	total := 0
	for _, sub := range task.Subtasks {
		if sub.Status == models.StatusCompleted {
			continue
		}
		total += int(sub.Duration.Clamped())
	}
	return total
}

// eventDuration sizes the event by the work still on the task
func eventDuration(task *models.Task) time.Duration {
	total := openSeconds(task)
	if total == 0 {
		return defaultEventDuration
	}
	return time.Duration(total) * time.Second
}
