package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"kdex.dev/app-header/internal/handler"
	"kdex.dev/app-header/internal/menu"
)

const (
	ActionAttribute = "data-o-app-header-action"
	HelpAction      = "help"
	KeyAttribute    = "data-key"
	LoginAction     = "login"
	TemplateName    = "app-header"
)

//go:embed header.html.tmpl
var headerTemplate string

// Renderer turns render models into the markup placed inside the header root.
type Renderer struct {
	template *template.Template
}

func NewRenderer(translator menu.Translator) (*Renderer, error) {
	translate := func(key string) string { return key }
	if translator != nil {
		translate = translator.Translate
	}

	funcs := sprig.HtmlFuncMap()
	funcs["t"] = translate

	instance, err := template.New(TemplateName).Funcs(funcs).Parse(headerTemplate)
	if err != nil {
		return nil, err
	}

	return &Renderer{template: instance}, nil
}

func (r *Renderer) RenderOne(model *menu.Model) (string, error) {
	var buf bytes.Buffer
	if err := r.template.Execute(&buf, model); err != nil {
		return "", fmt.Errorf("failed to render header: %w", err)
	}

	return buf.String(), nil
}

// Fragment renders model and parses the result into detached nodes as they
// would appear inside a header element. Whitespace only text is dropped.
func (r *Renderer) Fragment(model *menu.Model) ([]*html.Node, error) {
	markup, err := r.RenderOne(model)
	if err != nil {
		return nil, err
	}

	context := &html.Node{Type: html.ElementNode, Data: "header", DataAtom: atom.Header}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header markup: %w", err)
	}

	out := []*html.Node{}
	for _, n := range nodes {
		if isBlank(n) {
			continue
		}
		stripBlank(n)
		out = append(out, n)
	}

	return out, nil
}

// Actions maps every action id the markup for model can carry to its handler.
// The login and help actions are owned by the caller.
func Actions(model *menu.Model) map[string]handler.Bound {
	actions := map[string]handler.Bound{}

	var collect func(items []menu.Item)
	collect = func(items []menu.Item) {
		for _, item := range items {
			if item.Invokes() {
				actions[item.Key] = item.Activation.Handler
			}
			collect(item.CourseNavMenuItems)
		}
	}
	collect(model.MenuItems)
	collect(model.Help)

	return actions
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

func stripBlank(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isBlank(c) {
			n.RemoveChild(c)
		} else {
			stripBlank(c)
		}
		c = next
	}
}
