package layout

import (
	"fmt"
	"html/template"
	"io"

	"github.com/spektr-org/winedash/widgets"
)

// ============================================================================
// HTML RENDERING
// ============================================================================
// Server-side markup for the page. Chart placeholders are <img> tags pointing
// at the session's chart endpoint; the inline script posts widget events and
// bumps the image URLs of whichever targets the server reports as updated.
// ============================================================================

type sectionView struct {
	Title     string
	Dropdowns []widgets.Dropdown
}

type pageView struct {
	Page
	SessionID string
	Sections  []sectionView
	Open      widgets.Button
	Close     widgets.Button
}

// Render writes the page for one session.
func (p Page) Render(w io.Writer, sessionID string) error {
	view := pageView{Page: p, SessionID: sessionID}
	for _, s := range p.Sidebar.Sections {
		sv := sectionView{Title: s.Title}
		for _, id := range s.Dropdowns {
			if d, ok := p.Dropdown(id); ok {
				sv.Dropdowns = append(sv.Dropdowns, d)
			}
		}
		view.Sections = append(view.Sections, sv)
	}
	view.Open, _ = p.Button(p.Main.OpenButton)
	view.Close, _ = p.Button(p.Modal.CloseButton)

	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("layout: render: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
<div class="container-fluid" style="height: 100vh">
<div class="row">
  <div id="sidebar" class="col-2 bg-dark text-white" style="height: 100vh">
    <br>
    <h3 class="text-center fw-bold fs-2">{{.Sidebar.Title}}</h3>
    <br>
    {{- range .Sections}}
    <h3 class="fs-4">{{.Title}}</h3>
    {{- range .Dropdowns}}
    {{- $def := .Default}}
    <select id="{{.ID}}" name="{{.ID}}" class="form-select {{.ClassName}}" data-widget="dropdown" aria-label="{{.Label}}">
      {{- range .Options}}
      <option value="{{.}}"{{if eq . $def}} selected{{end}}>{{.}}</option>
      {{- end}}
    </select>
    {{- end}}
    <br>
    {{- end}}
  </div>
  <div id="main" class="col" style="height: 100vh; background-color: {{.Main.Background}}">
    <br>
    <h2 class="text-center fw-bold fs-1">{{.Main.Heading}}</h2>
    {{- range .Main.Rows}}
    <div class="row">
      {{- range .}}
      <div class="{{.ClassName}}"><img id="{{.ID}}" class="img-fluid" data-target="{{.ID}}" alt="{{.ID}}" src="/api/sessions/{{$.SessionID}}/charts/{{.ID}}?format=svg&v=0"></div>
      {{- end}}
    </div>
    {{- end}}
    {{.Main.Credit}} <button id="{{.Open.ID}}" type="button" class="btn btn-primary" data-widget="button">{{.Open.Label}}</button>
  </div>
</div>
</div>

<div id="{{.Modal.ID}}" class="modal" tabindex="-1" role="dialog" aria-hidden="true">
  <div class="modal-dialog">
    <div class="modal-content">
      <div class="modal-header"><h5 class="modal-title">{{.Modal.Title}}</h5></div>
      <div class="modal-body">
        {{- with .Modal.Profile}}
        {{- if .Image}}
        <div><img src="{{.Image}}" width="250" class="rounded-circle mx-auto d-flex img-thumbnail" alt="{{.Name}}"></div>
        <br>
        {{- end}}
        <b>Intro: </b>{{.Intro}}
        <br><br>
        {{- range $i, $p := .About}}
        {{if eq $i 0}}<b>About: </b>{{end}}{{$p}}
        <br><br>
        {{- end}}
        <b>Email: </b>{{.Email}}
        <br><br>
        <div>
          {{- range .Links}}
          <a href="{{.URL}}" target="_blank" rel="noopener" class="btn btn-outline-dark btn-sm m-1">{{.Label}}</a>
          {{- end}}
        </div>
        {{- end}}
      </div>
      <div class="modal-footer"><button id="{{.Close.ID}}" type="button" class="btn btn-secondary {{.Close.ClassName}}" data-widget="button">{{.Close.Label}}</button></div>
    </div>
  </div>
</div>

<script>
(function () {
  const session = {{.SessionID}};
  const modalID = {{.Modal.ID}};
  const clicks = {};

  function apply(updates) {
    for (const u of updates || []) {
      if (u.error) { console.warn(u.target, u.error); continue; }
      if (u.target === modalID) {
        const m = document.getElementById(modalID);
        m.classList.toggle("show", !!u.open);
        m.style.display = u.open ? "block" : "none";
        continue;
      }
      const img = document.getElementById(u.target);
      if (img) { img.src = "/api/sessions/" + session + "/charts/" + u.target + "?format=svg&v=" + u.version; }
    }
  }

  function send(events) {
    fetch("/api/sessions/" + session + "/events", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({events: events})
    }).then(r => r.json()).then(body => apply(body.updates));
  }

  document.querySelectorAll("[data-widget=dropdown]").forEach(el => {
    el.addEventListener("change", () => send([{input: el.id, value: el.value}]));
  });
  document.querySelectorAll("[data-widget=button]").forEach(el => {
    clicks[el.id] = 0;
    el.addEventListener("click", () => {
      clicks[el.id] += 1;
      send([{input: el.id, clicks: clicks[el.id]}]);
    });
  });
})();
</script>
</body>
</html>
`
