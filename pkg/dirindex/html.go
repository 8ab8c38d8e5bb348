package dirindex

import (
	"html/template"
	"io"
	"net/url"
	"strings"
)

var pageTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<meta charset="utf-8">
<title>Index of /{{.Title}}</title>
<style>
  html { font-family: Consolas, "Courier New", monospace; font-size: clamp(20px, 4vw, 20px); }
  body { margin: clamp(12px, 3vw, 24px); color: #0f172a; background: #f8fafc; }
  h1 { font-size: clamp(24px, 5vw, 28px); margin: 0 0 clamp(12px, 2.5vw, 16px); font-weight: 600; }
  ul {
    list-style: none;
    padding: 0;
    margin: 0;
    border: 1px solid #e2e8f0;
    border-radius: 8px;
    background: #ffffff;
  }
  li + li { border-top: 1px solid #e2e8f0; }
  a { display: flex; justify-content: space-between; align-items: center; padding: clamp(14px, 3vw, 18px); color: #0f172a; text-decoration: none; }
  a:hover { background: #f1f5f9; }
  .file-info { display: flex; gap: 20px; color: #64748b; font-size: clamp(0.8em, 2.5vw, 0.9em); }
  .file-info span:first-child { min-width: 140px; text-align: left; }
  .file-info span:last-child { min-width: 80px; text-align: left; }
</style>
<h1>Index of /{{.Title}}</h1>
<ul>
{{range .Entries}}  <li><a href="{{.Href}}">{{.Label}}<span class="file-info"><span>{{.TimeText}}</span><span>{{.SizeText}}</span></span></a></li>
{{end}}</ul>
`))

// Href links the entry relative to the index page. A colon in the name
// would otherwise read as a URL scheme.
func (e Entry) Href() template.URL {
	p := url.PathEscape(e.Name)
	if strings.Contains(p, ":") {
		p = "./" + p
	}
	return template.URL(p)
}

type page struct {
	Title   string
	Entries []Entry
}

// Render writes the index page. An empty title becomes "Root".
func Render(w io.Writer, title string, entries []Entry) error {
	if title == "" {
		title = "Root"
	}
	return pageTemplate.Execute(w, page{Title: title, Entries: entries})
}
