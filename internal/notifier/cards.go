package notifier

import (
	"fmt"
	"strings"

	"github.com/teemow/larktask/internal/im"
	"github.com/teemow/larktask/internal/report"
	"github.com/teemow/larktask/internal/tasks"
)

// TaskCard renders a single task with a link to it.
func TaskCard(t tasks.Task, title, template string) *im.Card {
	body := fmt.Sprintf("**%s**\nStatus: %s %s", t.Summary, report.StatusIcon(t.Status), report.StatusLabel(t.Status))
	if t.DueTime != "" {
		body += fmt.Sprintf("\n**Due**: %s", dueDate(t))
	}
	return im.NewCard(title, template).
		Markdown(body).
		Button("View task", t.URL)
}

// DigestCard renders the counts of a report and its first overdue tasks.
func DigestCard(r report.Report) *im.Card {
	card := im.NewCard("📊 Daily task digest", im.TemplateBlue).
		Markdown(fmt.Sprintf("**📋 Todo**: %d\n**🔄 In progress**: %d\n**✅ Completed**: %d\n**⚠️ Overdue**: %d",
			len(r.Todo), len(r.InProgress), len(r.Completed), len(r.Overdue)))

	if len(r.Overdue) > 0 {
		lines := summaries(r.Overdue, "• ")
		if extra := len(r.Overdue) - highlightLimit; extra > 0 {
			lines = append(lines, fmt.Sprintf("... and %d more", extra))
		}
		card.Divider().Markdown("**⚠️ Overdue tasks**:\n" + strings.Join(lines, "\n"))
	}
	return card
}

// WeeklyCard renders a weekly summary.
func WeeklyCard(s report.WeeklySummary) *im.Card {
	card := im.NewCard("📈 Weekly task report", im.TemplateBlue).
		Markdown(fmt.Sprintf("**Created this week**: %d\n**Completed this week**: %d\n**Total tasks**: %d",
			len(s.Created), len(s.Completed), s.Total))

	if len(s.Completed) > 0 {
		card.Divider().Markdown("**Completed this week**:\n" + strings.Join(summaries(s.Completed, "✅ "), "\n"))
	}
	return card
}

// summaries returns up to highlightLimit prefixed task summaries.
func summaries(ts []tasks.Task, prefix string) []string {
	lines := make([]string, 0, highlightLimit)
	for i, t := range ts {
		if i == highlightLimit {
			break
		}
		lines = append(lines, prefix+t.Summary)
	}
	return lines
}
