package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/siteassess/internal/report"
	"github.com/jask/siteassess/internal/workflow"
)

const appName = "siteassess"

var sectionTitles = map[workflow.Section]string{
	workflow.SectionAuth:     "Account",
	workflow.SectionSurvey:   "Land Survey",
	workflow.SectionBuilding: "Building",
	workflow.SectionWind:     "Wind",
	workflow.SectionAnalysis: "Analysis",
	workflow.SectionReports:  "Reports",
}

func (a *App) View() string {
	parts := []string{a.renderHeader(), a.renderBody()}
	if toasts := a.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, a.renderFooter())
	return strings.Join(parts, "\n\n")
}

func (a *App) renderHeader() string {
	tabs := make([]string, 0, len(workflow.Sections))
	for i, sec := range workflow.Sections {
		label := fmt.Sprintf("F%d %s", i+1, sectionTitles[sec])
		switch {
		case sec == a.state.Section:
			tabs = append(tabs, activeTabStyle.Render(label))
		case sec != workflow.SectionAuth && !a.state.Authenticated():
			tabs = append(tabs, lockedTabStyle.Render(label))
		default:
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	line := titleStyle.Render(appName) + "  " + strings.Join(tabs, " ")
	if u := a.state.Session.User; a.state.Authenticated() && u != nil {
		info := userStyle.Render(u.Name)
		if u.Role != "" {
			info += dimStyle.Render(" (" + u.Role + ")")
		}
		line += "  " + info
	}
	if len(a.pending) > 0 {
		line += "  " + dimStyle.Render("working…")
	}
	style := headerBarStyle
	if a.width > 0 {
		style = style.Width(a.width)
	}
	return style.Render(line)
}

func (a *App) renderBody() string {
	switch a.state.Section {
	case workflow.SectionSurvey:
		return a.renderSurvey()
	case workflow.SectionBuilding:
		return a.renderBuilding()
	case workflow.SectionWind:
		return a.renderWind()
	case workflow.SectionAnalysis:
		return a.renderAnalysis()
	case workflow.SectionReports:
		return a.renderReport()
	default:
		return a.renderAuth()
	}
}

func (a *App) renderAuth() string {
	if a.state.Authenticated() {
		name := ""
		if u := a.state.Session.User; u != nil {
			name = u.Name
		}
		return boxStyle.Render(fmt.Sprintf("Signed in as %s\n%s", userStyle.Render(name), dimStyle.Render(stageLine(a.state))))
	}
	tabs := []string{inactiveTabStyle.Render("Login"), inactiveTabStyle.Render("Register")}
	tabs[a.tab] = activeTabStyle.Render([]string{"Login", "Register"}[a.tab])
	f := a.login
	if a.tab == tabRegister {
		f = a.signup
	}
	return strings.Join(tabs, " ") + "\n\n" + boxStyle.Render(f.view())
}

func stageLine(st workflow.State) string {
	line := "Stage: " + st.Stage.String()
	if st.Pointer.SurveyID != "" {
		line += "  survey " + st.Pointer.SurveyID
	}
	if st.Pointer.BuildingID != "" {
		line += "  building " + st.Pointer.BuildingID
	}
	return line
}

func (a *App) renderSurvey() string {
	list := []string{titleStyle.Render("Your Surveys")}
	if len(a.state.Surveys) == 0 {
		list = append(list, dimStyle.Render("No surveys yet"))
	}
	for i, sv := range a.state.Surveys {
		prefix := "  "
		if i == a.cursor {
			prefix = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%s  %s  zone %s  %s", prefix, sv.ID, sv.SoilType, sv.SeismicZone, sv.CreatedAt)
		if sv.ID == a.state.Pointer.SurveyID {
			line += cursorStyle.Render("  ✓")
		}
		list = append(list, line)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(a.survey.view()), " ", boxStyle.Render(strings.Join(list, "\n")))
}

func (a *App) renderBuilding() string {
	choice := "selected survey"
	if a.state.Pointer.SurveyID != "" {
		choice += " (" + a.state.Pointer.SurveyID + ")"
	}
	if a.pick >= 0 && a.pick < len(a.state.Surveys) {
		choice = a.state.Surveys[a.pick].ID
	}
	picker := labelStyle.Render("Land survey: ") + cursorStyle.Render(choice) + dimStyle.Render("  ↑/↓ to change")
	return picker + "\n" + boxStyle.Render(a.build.view())
}

func (a *App) renderWind() string {
	target := dimStyle.Render("no building yet")
	if id := a.state.Pointer.BuildingID; id != "" {
		target = cursorStyle.Render(id)
	}
	return labelStyle.Render("Building: ") + target + "\n" + boxStyle.Render(a.wind.view())
}

func (a *App) renderAnalysis() string {
	lines := []string{
		titleStyle.Render("Run Analysis"),
		dimStyle.Render(stageLine(a.state)),
		"",
		helpLine(a.keys.Disaster, a.keys.Vastu, a.keys.Generate),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderReport() string {
	r := a.state.LastReport
	if r == nil {
		return boxStyle.Render(dimStyle.Render("No report loaded. ") + helpLine(a.keys.ViewReport...))
	}
	lines := strings.Split(strings.TrimRight(styledReport(r.Display), "\n"), "\n")
	if a.scroll >= len(lines) {
		a.scroll = len(lines) - 1
	}
	lines = lines[a.scroll:]
	if h := a.height - 10; h > 0 && len(lines) > h {
		lines = lines[:h]
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// styledReport colours the parts of a display that carry a band or tone.
func styledReport(d report.Display) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	if d.Date != "" {
		b.WriteString("  " + dimStyle.Render(d.Date))
	}
	if d.Badge != "" {
		b.WriteString("  [" + d.Badge + "]")
	}
	b.WriteString("\n")
	for _, s := range d.Sections {
		b.WriteString("\n" + titleStyle.Render(s.Title) + "\n")
		if s.Score != nil {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(s.Score.Label+":"), bandStyle(s.Score.Band).Render(s.Score.Value+" "+string(s.Score.Band)))
		}
		for _, st := range s.Stats {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(st.Label+":"), bandStyle(st.Band).Render(st.Value))
		}
		for _, it := range s.Items {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(it.Label+":"), toneStyle(it.Tone).Render(it.Value))
		}
		for _, n := range s.Notes {
			if n.Label != "" {
				fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(n.Label+":"), n.Text)
				continue
			}
			b.WriteString(n.Text + "\n")
		}
		for _, al := range s.Alerts {
			fmt.Fprintf(&b, "%s %s: %s\n  Impact: %s\n", levelStyle(al.Level).Render("["+al.Level+"]"), al.Category, al.Description, al.Impact)
		}
		for _, c := range s.Corrections {
			fmt.Fprintf(&b, "[%s] %s\n  %s\n", c.Priority, c.Violation, c.Solution)
		}
		for _, c := range s.Cards {
			b.WriteString(labelStyle.Render(c.Title) + "\n")
			for _, it := range c.Items {
				value := it.Value
				if it.Badge != "" {
					value = bandStyle(report.Band(it.Badge)).Render(value)
				}
				fmt.Fprintf(&b, "  %s: %s\n", it.Label, value)
			}
		}
		for _, l := range s.Lists {
			b.WriteString(labelStyle.Render(l.Title) + "\n")
			for _, e := range l.Entries {
				b.WriteString("  - " + e + "\n")
			}
		}
	}
	return b.String()
}

func (a *App) renderToasts() string {
	active := a.notes.Active(a.opts.Now())
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, 0, len(active))
	for _, n := range active {
		lines = append(lines, toastStyle(n.Severity).Render(n.Message))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderFooter() string {
	k := a.keys
	var help string
	switch a.state.Section {
	case workflow.SectionAuth:
		help = helpLine(k.Submit, k.NextField, k.AuthTab)
	case workflow.SectionSurvey:
		help = helpLine(k.Submit, k.NextField, k.UpDown, k.Select)
	case workflow.SectionBuilding:
		help = helpLine(k.Submit, k.NextField, k.UpDown)
	case workflow.SectionWind:
		help = helpLine(k.Submit, k.NextField)
	case workflow.SectionAnalysis:
		help = helpLine(k.Disaster, k.Vastu, k.Generate)
	case workflow.SectionReports:
		help = helpLine(append(append([]key.Binding{}, k.ViewReport...), k.UpDown)...)
	}
	help += "  " + helpLine(k.Logout, k.Quit)
	style := footerStyle
	if a.width > 0 {
		style = style.Width(a.width)
	}
	return style.Render(help)
}
