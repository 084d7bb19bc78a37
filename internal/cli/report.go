package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"lifeadmin/internal/core"
	"lifeadmin/internal/views"
)

// ReportMarkdown renders a monthly overview of st as markdown.
func ReportMarkdown(st core.Store, monthKey string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Life Admin report: %s\n\n", monthKey)

	items := st.LifeAdmin.Items
	overall := views.OverallStatus(items, now)
	stats := views.Stats(items, now)
	fmt.Fprintf(&b, "**Status:** %s  \n", views.StatusLabel(overall))
	fmt.Fprintf(&b, "%d active items, %d due within 30 days, %d high priority.\n\n", stats.Total, stats.DueSoon, stats.High)

	next := views.BuildNextSteps(items, now)
	b.WriteString("## Next steps\n\n")
	if len(next.Today)+len(next.Week) == 0 {
		b.WriteString("Nothing due this week.\n\n")
	} else {
		b.WriteString("| Item | Due | Status |\n|---|---|---|\n")
		for _, v := range append(next.Today, next.Week...) {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(v.Name), v.DueText, v.Status)
		}
		b.WriteString("\n")
	}

	money := views.BuildMoney(st.Money, st.Settings, monthKey)
	b.WriteString("## Money\n\n")
	if money.Hidden {
		b.WriteString("Money figures are hidden.\n\n")
	} else {
		cur := money.Currency
		t := money.Totals
		fmt.Fprintf(&b, "- Income: %s\n- Spent: %s\n- Net: %s\n- Saved in funds: %s\n\n",
			core.FormatMoney(t.Income, cur), core.FormatMoney(t.Spent, cur),
			core.FormatMoney(t.Net, cur), core.FormatMoney(money.TotalSaved, cur))
		if len(money.Budgets) > 0 {
			b.WriteString("| Budget | Used |\n|---|---|\n")
			for _, bp := range money.Budgets {
				fmt.Fprintf(&b, "| %s | %d%% |\n", escapeCell(bp.Budget.Name), bp.Pct)
			}
			b.WriteString("\n")
		}
	}

	wins := views.MonthlyWins(st, monthKey)
	b.WriteString("## Wins\n\n")
	if len(wins.Totals) == 0 {
		b.WriteString("No wins recorded yet.\n\n")
	} else {
		types := make([]string, 0, len(wins.Totals))
		for k := range wins.Totals {
			types = append(types, k)
		}
		sort.Strings(types)
		for _, k := range types {
			fmt.Fprintf(&b, "- %s: %g\n", k, wins.Totals[k])
		}
		if wins.Inferred {
			b.WriteString("\n_Counts inferred from record dates._\n")
		}
		b.WriteString("\n")
	}

	home := views.Home(st.Home)
	skills := views.Skills(st.Skills)
	b.WriteString("## Home and skills\n\n")
	fmt.Fprintf(&b, "- Home planned: %d%% (%d of %d items)\n", home.CompletionPct, home.EssentialsPlanned+home.ExtrasPlanned, home.TotalItems)
	fmt.Fprintf(&b, "- Skills started: %d of %d, average level %.1f (%s)\n", skills.Started, skills.Total, skills.Average, skills.Growth)
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderMarkdown formats md for a terminal.
func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
