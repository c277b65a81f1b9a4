package ui

import (
	"fmt"
	"strings"

	"t2s/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const askMaxRows = 200

// streamScript drives the streaming panel: it posts the question to the
// streaming API endpoint and appends chunk payloads as they arrive. The
// fetch reader is used instead of EventSource because the endpoint is a POST.
const streamScript = `(function(){
  var btn=document.getElementById('stream-button');
  if(!btn){return;}
  btn.addEventListener('click',function(){
    var out=document.getElementById('stream-output');
    var status=document.getElementById('stream-status');
    var question=document.getElementById('question-input').value;
    out.textContent='';
    status.textContent='Streaming...';
    fetch('/api/v1/ask/stream',{
      method:'POST',
      headers:{'Content-Type':'application/json'},
      body:JSON.stringify({question:question})
    }).then(function(resp){
      if(!resp.ok){
        return resp.json().then(function(body){
          throw new Error((body.error&&body.error.message)||('HTTP '+resp.status));
        });
      }
      var reader=resp.body.getReader();
      var decoder=new TextDecoder();
      var buffer='';
      function handle(block){
        var event='',payload='';
        block.split('\n').forEach(function(line){
          if(line.indexOf('event: ')===0){event=line.slice(7);}
          else if(line.indexOf('data: ')===0){payload=line.slice(6);}
        });
        if(event==='chunk'){out.textContent+=JSON.parse(payload);}
        else if(event==='done'){status.textContent='Done. The raw text above was logged; nothing was executed.';}
        else if(event==='error'){status.textContent='Error: '+JSON.parse(payload).message;}
      }
      function pump(){
        return reader.read().then(function(step){
          if(step.done){return;}
          buffer+=decoder.decode(step.value,{stream:true});
          var blocks=buffer.split('\n\n');
          buffer=blocks.pop();
          blocks.forEach(handle);
          return pump();
        });
      }
      return pump();
    }).catch(function(err){status.textContent='Error: '+err.message;});
  });
})();`

type askPageView struct {
	Badge    headerBadge
	Question string
	Tables   domain.Schema
	Result   *domain.AskResult
	RunError string
}

func askPage(view askPageView) Node {
	body := []Node{
		questionCard(view.Question),
		streamPanelCard(),
	}
	if view.RunError != "" {
		body = append(body, Div(
			Class(cardClass()),
			H2(Text("Error")),
			Pre(Class("error-pre"), Text(view.RunError)),
		))
	}
	if view.Result != nil {
		body = append(body, stagesCard(view.Result))
	}
	if view.RunError == "" && view.Result != nil {
		body = append(body, resultsCard(view.Result))
	}
	body = append(body, schemaCard(view.Tables))

	return appPage("Ask", "ask", view.Badge, body...)
}

func questionCard(question string) Node {
	return Div(
		Class(cardClass()),
		Form(
			Method("post"),
			Action("/ask"),
			Label(Text("Question")),
			Textarea(
				ID("question-input"),
				Name("question"),
				Class("form-control"),
				Placeholder("Show all students in class 10 with marks above 80"),
				Required(),
				Text(question),
			),
			Div(
				Class("button-row"),
				Button(Type("submit"), Class(primaryButtonClass()), Text("Run")),
				Button(Type("button"), ID("stream-button"), Class(secondaryButtonClass()), Text("Stream raw SQL")),
			),
		),
		P(Class(mutedClass()), Text("Run executes the generated SQL read-only with a row cap. Stream shows the model output as it arrives, without executing it.")),
	)
}

func streamPanelCard() Node {
	return Div(
		Class(cardClass()),
		H2(Text("Streaming")),
		P(ID("stream-status"), Class(mutedClass()), Text("Idle.")),
		Pre(ID("stream-output"), Class("sql-pre")),
		Script(Raw(streamScript)),
	)
}

func stagesCard(result *domain.AskResult) Node {
	limitBadge := statusLabel("model limit kept", "")
	if result.LimitAdded {
		limitBadge = statusLabel("LIMIT added", "accent")
	}

	stages := []Node{
		Div(H3(Text("Raw model output")), Pre(Class("sql-pre"), Text(result.RawSQL))),
		Div(H3(Text("Cleaned candidate")), Pre(Class("sql-pre"), Text(result.CleanedSQL))),
	}
	if result.SafeSQL != "" {
		stages = append(stages, Div(
			H3(Text("Executed SQL")),
			Pre(Class("sql-pre"), Text(result.SafeSQL)),
		))
	}

	return Div(
		Class(cardClass()),
		Div(
			Class("toolbar"),
			H2(Text("SQL stages")),
			limitBadge,
		),
		Div(Class("stage-grid"), Group(stages)),
	)
}

func resultsCard(result *domain.AskResult) Node {
	headerCols := make([]Node, 0, len(result.Columns))
	for i := range result.Columns {
		headerCols = append(headerCols, Th(Text(result.Columns[i])))
	}

	displayRows := result.Rows
	truncated := false
	if len(displayRows) > askMaxRows {
		displayRows = displayRows[:askMaxRows]
		truncated = true
	}

	rows := make([]Node, 0, len(displayRows))
	for i := range displayRows {
		cells := make([]Node, 0, len(displayRows[i]))
		for j := range displayRows[i] {
			cells = append(cells, Td(Text(cellString(displayRows[i][j]))))
		}
		rows = append(rows, Tr(Group(cells)))
	}

	meta := fmt.Sprintf("%d row(s)", result.RowCount)
	if truncated {
		meta = fmt.Sprintf("%d row(s), showing first %d", result.RowCount, askMaxRows)
	}

	return Div(
		Class(cardClass("table-wrap")),
		H2(Text("Results")),
		P(Class(mutedClass()), Text(meta)),
		Table(
			THead(Tr(Group(headerCols))),
			TBody(Group(rows)),
		),
	)
}

func schemaCard(tables domain.Schema) Node {
	if len(tables) == 0 {
		return Div(
			Class(cardClass()),
			H2(Text("Schema")),
			P(Class(mutedClass()), Text("No user tables found. Seed the database first.")),
		)
	}

	items := make([]Node, 0, len(tables))
	for _, table := range tables {
		items = append(items, Li(Code(Text(table.Name+"("+strings.Join(table.Columns, ", ")+")"))))
	}
	return Div(
		Class(cardClass()),
		H2(Text("Schema")),
		P(Class(mutedClass()), Text("Tables the model sees when writing SQL.")),
		Ul(Class("schema-list"), Group(items)),
	)
}
