package ui

import (
	"fmt"

	"t2s/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

func historyListPage(badge headerBadge, summaries []domain.AuditSummary) Node {
	if len(summaries) == 0 {
		return appPage("History", "history", badge,
			emptyStateCard("No questions logged yet.", "Ask a question", "/"),
		)
	}

	tableRows := make([]Node, 0, len(summaries))
	for _, s := range summaries {
		outcome := statusLabel("ok", "success")
		if s.Error != nil {
			outcome = statusLabel("failed", "danger")
		}
		detailHref := fmt.Sprintf("/history/%d", s.ID)
		tableRows = append(tableRows, Tr(
			data.Show(containsExpr(s.Question+" "+s.Provider+" "+s.Model)),
			Td(A(Href(detailHref), Text(fmt.Sprintf("#%d", s.ID)))),
			Td(Text(formatTime(s.CreatedAt))),
			Td(Text(s.Question)),
			Td(Text(s.Provider+" / "+s.Model)),
			Td(Text(int64PtrString(s.RowCount))),
			Td(Text(execMSString(s.ExecMS))),
			Td(outcome),
		))
	}

	return appPage("History", "history", badge,
		quickFilterCard("Filter by question or provider"),
		Div(
			Class(cardClass("table-wrap")),
			Table(
				THead(Tr(
					Th(Text("ID")),
					Th(Text("Asked")),
					Th(Text("Question")),
					Th(Text("Provider")),
					Th(Text("Rows")),
					Th(Text("Time")),
					Th(Text("Outcome")),
				)),
				TBody(Group(tableRows)),
			),
		),
		Div(
			Class(cardClass("toolbar")),
			P(Class(mutedClass()), Text("Clearing removes every logged question and its SQL.")),
			Form(
				Method("post"),
				Action("/history/clear"),
				Button(Type("submit"), Class("btn btn-danger"), Text("Clear history")),
			),
		),
	)
}

func historyDetailPage(badge headerBadge, rec *domain.AuditRecord) Node {
	body := []Node{
		Div(
			Class(cardClass()),
			H2(Text("Question")),
			P(Text(rec.Question)),
			P(Class(mutedClass()), Text(fmt.Sprintf(
				"Asked %s via %s / %s against %s (%s).",
				formatTime(rec.CreatedAt), rec.Provider, rec.Model, rec.DBPath, rec.Dialect,
			))),
		),
		recordStagesCard(rec),
		outcomeCard(rec),
	}

	actions := []Node{
		A(Href("/history"), Class(secondaryButtonClass()), Text("Back to history")),
	}
	if rec.SafeSQL != "" {
		actions = append(actions, A(
			Href(fmt.Sprintf("/history/%d/results.csv", rec.ID)),
			Class(primaryButtonClass()),
			Text("Download results CSV"),
		))
	}
	body = append(body, Div(Class(cardClass("toolbar")), Group(actions)))

	return appPage(fmt.Sprintf("Entry #%d", rec.ID), "history", badge, body...)
}

func recordStagesCard(rec *domain.AuditRecord) Node {
	stages := make([]Node, 0, 3)
	if rec.RawSQL != "" {
		stages = append(stages, Div(H3(Text("Raw model output")), Pre(Class("sql-pre"), Text(rec.RawSQL))))
	}
	if rec.CleanedSQL != "" {
		stages = append(stages, Div(H3(Text("Cleaned candidate")), Pre(Class("sql-pre"), Text(rec.CleanedSQL))))
	}
	if rec.SafeSQL != "" {
		stages = append(stages, Div(H3(Text("Executed SQL")), Pre(Class("sql-pre"), Text(rec.SafeSQL))))
	}
	if len(stages) == 0 {
		return Div(
			Class(cardClass()),
			H2(Text("SQL stages")),
			P(Class(mutedClass()), Text("The pipeline stopped before any SQL was produced.")),
		)
	}

	limitBadge := Node(nil)
	if rec.SafeSQL != "" {
		limitBadge = statusLabel("model limit kept", "")
		if rec.LimitAdded {
			limitBadge = statusLabel("LIMIT added", "accent")
		}
	}

	return Div(
		Class(cardClass()),
		Div(Class("toolbar"), H2(Text("SQL stages")), limitBadge),
		Div(Class("stage-grid"), Group(stages)),
	)
}

func outcomeCard(rec *domain.AuditRecord) Node {
	if rec.Error != nil {
		return Div(
			Class(cardClass()),
			H2(Text("Outcome")),
			Pre(Class("error-pre"), Text(*rec.Error)),
		)
	}
	if rec.RowCount == nil {
		return Div(
			Class(cardClass()),
			H2(Text("Outcome")),
			P(Class(mutedClass()), Text("Logged without execution (streaming request).")),
		)
	}
	return Div(
		Class(cardClass()),
		H2(Text("Outcome")),
		P(Text(fmt.Sprintf("%s row(s) in %s.", int64PtrString(rec.RowCount), execMSString(rec.ExecMS)))),
	)
}
