package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/workoutnotifier/workout-notifier/internal/model"
)

const workoutTip = "Always warm up properly, focus on form, and stay hydrated!"

// WorkoutSubject returns the subject line for day, e.g. "Push Day - Monday".
func WorkoutSubject(day model.Day, t time.Time) string {
	return fmt.Sprintf("%s - %s", day.SubjectTitle(), t.Weekday())
}

// WorkoutEmailHTML returns the HTML body for a day's workout.
func WorkoutEmailHTML(day model.Day) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body style="margin:0;padding:16px;font-family:Arial,sans-serif;">
<div style="background-color:#f2f2f2;padding:10px;border-radius:5px;font-size:20px;margin-bottom:20px;">%s</div>
`, html.EscapeString(day.DisplayTitle()), html.EscapeString(day.DisplayTitle()))

	for _, ex := range day.Exercises {
		name := html.EscapeString(ex.DisplayName())
		if ex.URL != "" {
			name = fmt.Sprintf(`<a href="%s" target="_blank" style="text-decoration:none;color:#007BFF;">%s</a>`,
				html.EscapeString(ex.URL), name)
		}

		fmt.Fprintf(&b, `<div style="margin-bottom:15px;">
  <p><strong>%s</strong></p>
  <p>Sets/Reps: %s</p>
  <p>Rest: %s</p>
</div>
`, name, html.EscapeString(ex.Sets.String()), html.EscapeString(ex.Rest.String()))
	}

	fmt.Fprintf(&b, `<p><em>Tip:</em> %s</p>
</body>
</html>`, workoutTip)

	return b.String()
}

// WorkoutEmailText returns the plain-text body for a day's workout.
func WorkoutEmailText(day model.Day) string {
	var b strings.Builder

	b.WriteString(day.DisplayTitle())
	b.WriteString("\n\n")

	for _, ex := range day.Exercises {
		b.WriteString("- ")
		b.WriteString(ex.DisplayName())
		if ex.URL != "" {
			fmt.Fprintf(&b, " (%s)", ex.URL)
		}
		fmt.Fprintf(&b, "\n  Sets/Reps: %s\n  Rest: %s\n", ex.Sets, ex.Rest)
	}

	fmt.Fprintf(&b, "\nTip: %s\n", workoutTip)
	return b.String()
}
