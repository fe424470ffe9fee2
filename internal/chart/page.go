package chart

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/MetalBlueberry/go-plotly/offline"
)

// Card is one headline number of a view.
type Card struct {
	Label string
	Value string
}

// Link points at another view or action. Actions with Method "post" are
// rendered as buttons.
type Link struct {
	Label  string
	Href   string
	Method string
	Active bool
}

// Page is one rendered dashboard view.
type Page struct {
	Title    string
	Source   string // data source line of the sidebar
	Nav      []Link
	Actions  []Link
	Cards    []Card
	Notes    []string
	Warnings []string
	Figures  []*grob.Fig
}

type figureJSON struct {
	ID   string
	JSON template.JS
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.12.1.min.js"></script>
<style>
body{font-family:sans-serif;margin:0;display:flex}
nav{width:260px;padding:1rem;background:#f0f2f6;min-height:100vh}
main{flex:1;padding:1rem 2rem}
.cards{display:flex;gap:1rem}
.card{background:#fff;border:1px solid #ddd;border-radius:6px;padding:.8rem 1.2rem}
.card b{display:block;font-size:1.6rem}
.warn{background:#fff3cd;padding:.5rem;border-radius:4px}
a.active{font-weight:bold}
</style>
</head>
<body>
<nav>
<h2>Painel de Controle</h2>
<p><b>Fonte:</b> {{.Source}}<br><i>PNAD Contínua (IBGE)</i></p>
<h3>Visualizações</h3>
<ul>{{range .Nav}}<li><a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a></li>{{end}}</ul>
<h3>Ações</h3>
<ul>{{range .Actions}}<li>{{if eq .Method "post"}}<form method="post" action="{{.Href}}"><button>{{.Label}}</button></form>{{else}}<a href="{{.Href}}">{{.Label}}</a>{{end}}</li>{{end}}</ul>
</nav>
<main>
<h1>{{.Title}}</h1>
{{range .Warnings}}<p class="warn">{{.}}</p>{{end}}
{{if .Cards}}<div class="cards">{{range .Cards}}<div class="card">{{.Label}}<b>{{.Value}}</b></div>{{end}}</div>{{end}}
{{range .Figs}}<div id="{{.ID}}"></div>
<script>(function(){var f={{.JSON}};Plotly.newPlot({{.ID}},f.data,f.layout,{responsive:true});})();</script>
{{end}}
{{range .Notes}}<p>{{.}}</p>{{end}}
<footer><p>Fontes: IBGE, Banco Central do Brasil, Caixa Econômica Federal.</p></footer>
</main>
</body>
</html>
`))

// Render writes p as a standalone HTML page.
func Render(w io.Writer, p Page) error {
	figs := make([]figureJSON, 0, len(p.Figures))
	for i, fig := range p.Figures {
		b, err := json.Marshal(fig)
		if err != nil {
			return fmt.Errorf("error marshalling figure %d: %w", i, err)
		}
		figs = append(figs, figureJSON{ID: fmt.Sprintf("fig%d", i), JSON: template.JS(b)})
	}
	return pageTemplate.Execute(w, struct {
		Page
		Figs []figureJSON
	}{p, figs})
}

// WriteFile saves fig as an HTML file at path.
func WriteFile(fig *grob.Fig, path string) {
	offline.ToHtml(fig, path)
}
