package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const blankPage = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document is a live HTML tree plus the event listeners attached to its nodes.
// It is not safe for concurrent use.
type Document struct {
	listeners map[*html.Node]map[string][]registration
	nextID    uint64
	root      *html.Node
}

type registration struct {
	id uint64
	fn Listener
}

func New() *Document {
	d, err := Parse(strings.NewReader(blankPage))
	if err != nil {
		panic(err)
	}
	return d
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &Document{
		listeners: map[*html.Node]map[string][]registration{},
		root:      root,
	}, nil
}

func (d *Document) Root() *html.Node {
	return d.root
}

func (d *Document) Head() *html.Node {
	n, _ := d.QuerySelector(d.root, "head")
	return n
}

func (d *Document) Body() *html.Node {
	n, _ := d.QuerySelector(d.root, "body")
	return n
}

// AddEventListener registers fn for events of type typ reaching n. The returned
// function removes the registration.
func (d *Document) AddEventListener(n *html.Node, typ string, fn Listener) func() {
	d.nextID++
	id := d.nextID

	byType, ok := d.listeners[n]
	if !ok {
		byType = map[string][]registration{}
		d.listeners[n] = byType
	}
	byType[typ] = append(byType[typ], registration{id: id, fn: fn})

	return func() {
		regs := d.listeners[n][typ]
		for i, r := range regs {
			if r.id == id {
				d.listeners[n][typ] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Forget drops every listener registered on n and its descendants.
func (d *Document) Forget(n *html.Node) {
	delete(d.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.Forget(c)
	}
}

// Dispatch delivers e to target and, when the event bubbles, to each ancestor.
// It returns false if a listener prevented the default action.
func (d *Document) Dispatch(target *html.Node, e *Event) bool {
	e.Target = target

	for n := target; n != nil; n = n.Parent {
		if n != target && !e.Bubbles {
			break
		}

		e.CurrentTarget = n
		regs := append([]registration(nil), d.listeners[n][e.Type]...)
		for _, r := range regs {
			r.fn(e)
		}

		if e.stopped {
			break
		}
	}

	e.CurrentTarget = nil

	return !e.defaultPrevented
}

// DispatchEvent sends a bare bubbling, cancelable notification named name.
func (d *Document) DispatchEvent(target *html.Node, name string) bool {
	return d.Dispatch(target, NewEvent(name))
}

// Click simulates a UI activation of n.
func (d *Document) Click(n *html.Node) bool {
	return d.Dispatch(n, NewEvent(ClickEvent))
}

// QuerySelector returns the first descendant of scope matching selector, or nil.
func (d *Document) QuerySelector(scope *html.Node, selector string) (*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	for c := scope.FirstChild; c != nil; c = c.NextSibling {
		if m := sel.MatchFirst(c); m != nil {
			return m, nil
		}
	}

	return nil, nil
}

// QuerySelectorAll returns every descendant of scope matching selector in document order.
func (d *Document) QuerySelectorAll(scope *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	matches := []*html.Node{}
	for c := scope.FirstChild; c != nil; c = c.NextSibling {
		matches = append(matches, sel.MatchAll(c)...)
	}

	return matches, nil
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	return RenderNode(d.root)
}

func RenderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}
