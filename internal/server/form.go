package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/njchilds90/eeformula"
)

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 2rem auto; }
label { display: block; margin-top: .75rem; }
input { width: 100%; padding: .3rem; }
output { display: block; margin-top: 1rem; padding: .5rem; background: #f3f4f5; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Enter a formula name and known values to calculate results.</p>
<form method="post" action="/">
<label>{{.NameLabel}}
<input name="name" value="{{.Name}}" autofocus></label>
{{range .Fields}}<label>{{.Label}} ({{.Symbol}}{{if .Unit}}, {{.Unit}}{{end}})
<input name="{{.Symbol}}" value="{{.Value}}" inputmode="decimal"></label>
{{end}}<button type="submit">Calculate</button>
</form>
{{if .Answer}}<output>{{.Answer}}</output>{{end}}
</body>
</html>
`))

type formField struct {
	eeformula.Field
	Value string
}

type formPage struct {
	Title     string
	NameLabel string
	Name      string
	Fields    []formField
	Answer    string
}

func newFormPage(r *http.Request) formPage {
	page := formPage{Title: eeformula.Title, NameLabel: eeformula.NameLabel}
	if r != nil {
		page.Name = r.PostFormValue("name")
	}
	for _, f := range eeformula.FormFields {
		ff := formField{Field: f}
		if r != nil {
			ff.Value = strings.TrimSpace(r.PostFormValue(f.Symbol))
		}
		page.Fields = append(page.Fields, ff)
	}
	return page
}

// handleForm serves the form on GET and answers it on POST.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var page formPage
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		page = newFormPage(nil)
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}
		page = newFormPage(r)
		values := make(eeformula.Bindings, len(page.Fields))
		for _, f := range page.Fields {
			values[f.Symbol] = f.Value
		}
		page.Answer = eeformula.Handle(page.Name, values)
		s.log.Debug("form answered", "name", page.Name, "answer", page.Answer, "request_id", RequestID(r.Context()))
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, page); err != nil {
		s.log.Error("rendering form", "error", err, "request_id", RequestID(r.Context()))
	}
}
