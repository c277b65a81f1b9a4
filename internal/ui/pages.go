package ui

import (
	"strconv"
	"strings"
	"time"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Ask", Href: "/", Key: "ask"},
	{Label: "History", Href: "/history", Key: "history"},
}

// headerBadge labels every page with the backend serving it, so it is always
// visible which model writes the SQL and which database runs it.
type headerBadge struct {
	Provider string
	Model    string
	Dialect  string
}

func appPage(title, active string, badge headerBadge, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := ""
		if item.Key == active {
			className = "active"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | T2S")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/static/app.css")),
			Script(
				Type("module"),
				Src("https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"),
			),
		),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text("T2S")),
						P(Class("color-fg-muted text-small mb-0"), Text("Questions in, SQL out")),
					),
					Nav(Class("app-nav"), Group(nav)),
				),
				Section(
					Class("app-main"),
					Div(
						Class("topbar"),
						H1(Class("page-title"), Text(title)),
						Div(
							Class("badge-row"),
							statusLabel(badge.Provider+" / "+badge.Model, "accent"),
							statusLabel(badge.Dialect, ""),
						),
					),
					Div(Class("content"), Group(body)),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | T2S")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/static/app.css")),
		),
		Body(
			Main(
				Class("layout"),
				H1(Class("page-title"), Text(title)),
				P(Text(message)),
				P(A(Href("/"), Text("Back to the ask page"))),
			),
		),
	)
}

func cardClass(extra ...string) string {
	parts := []string{"card"}
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

func mutedClass() string {
	return "color-fg-muted text-small"
}

func primaryButtonClass() string {
	return "btn btn-primary"
}

func secondaryButtonClass() string {
	return "btn"
}

func statusLabel(text, tone string) Node {
	className := "Label"
	if tone != "" {
		className += " Label--" + tone
	}
	return Span(Class(className), Text(text))
}

func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}

func quickFilterCard(placeholder string) Node {
	return Div(
		Class(cardClass("toolbar")),
		data.Signals(map[string]any{"q": ""}),
		Label(Class("sr-only"), Text("Quick filter")),
		Input(Type("search"), Class("form-control"), Placeholder(placeholder), data.Bind("q"), AutoComplete("off")),
	)
}

func emptyStateCard(message, ctaLabel, ctaHref string) Node {
	cta := Node(nil)
	if ctaLabel != "" && ctaHref != "" {
		cta = A(Href(ctaHref), Class(primaryButtonClass()), Text(ctaLabel))
	}
	return Div(
		Class(cardClass("blankslate")),
		P(Class("color-fg-muted"), Text(message)),
		cta,
	)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func int64PtrString(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func execMSString(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + " ms"
}
