package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/imageination/internal/image"
	"github.com/dmorgan81/imageination/internal/log"
	"github.com/samber/do"
)

//go:embed assets/index.html
var indexTmpl string

type Params struct {
	Title    string
	Model    string
	Controls image.Controls
	Defaults image.Settings
	// Cooldown is the wait in seconds the page enforces after a rate-limit answer.
	Cooldown int
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(i *do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Debug("generating page")

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
