package patch

import (
	"slices"

	"golang.org/x/net/html"

	"kdex.dev/app-header/internal/dom"
)

const DefaultKeyAttribute = "data-key"

// Stats counts the mutations applied by one Patch call.
type Stats struct {
	AttrUpdates int
	Created     int
	Moved       int
	Removed     int
	TextUpdates int
}

// Structural is the number of node insertions, moves and removals.
func (s Stats) Structural() int {
	return s.Created + s.Moved + s.Removed
}

// Patcher converges live subtrees to rendered descriptions. Nodes that keep
// their tag and key at a position are reused, so listeners and state attached
// to them survive. Attributes are compared with what the patcher last wrote,
// not with the live values, leaving attributes changed by others alone until
// the description for them changes.
type Patcher struct {
	KeyAttribute string
	OnRemove     func(n *html.Node)

	rendered map[*html.Node][]html.Attribute
}

func New() *Patcher {
	return &Patcher{
		KeyAttribute: DefaultKeyAttribute,
		rendered:     map[*html.Node][]html.Attribute{},
	}
}

// Patch makes the children of parent match desired. desired is only read.
func (p *Patcher) Patch(parent *html.Node, desired []*html.Node) Stats {
	var stats Stats
	p.patchChildren(parent, desired, &stats)
	return stats
}

func (p *Patcher) patchChildren(parent *html.Node, desired []*html.Node, stats *Stats) {
	cursor := parent.FirstChild

	for _, want := range desired {
		var match *html.Node

		switch {
		case cursor != nil && p.canUpdate(cursor, want):
			match = cursor
			cursor = cursor.NextSibling
		case p.key(want) != "":
			match = p.findKeyed(cursor, want)
			if match != nil {
				parent.RemoveChild(match)
				parent.InsertBefore(match, cursor)
				stats.Moved++
			}
		}

		if match == nil {
			match = inflate(want)
			parent.InsertBefore(match, cursor)
			stats.Created++
		}

		p.update(match, want, stats)

		if want.Type == html.ElementNode {
			p.patchChildren(match, children(want), stats)
		}
	}

	for cursor != nil {
		next := cursor.NextSibling
		parent.RemoveChild(cursor)
		p.unmount(cursor)
		stats.Removed++
		cursor = next
	}
}

func (p *Patcher) canUpdate(live, want *html.Node) bool {
	if live.Type != want.Type {
		return false
	}
	if live.Type != html.ElementNode {
		return true
	}
	return live.Data == want.Data && live.Namespace == want.Namespace && p.key(live) == p.key(want)
}

// findKeyed looks for a reusable node among from and its following siblings.
func (p *Patcher) findKeyed(from, want *html.Node) *html.Node {
	for n := from; n != nil; n = n.NextSibling {
		if p.canUpdate(n, want) {
			return n
		}
	}
	return nil
}

func (p *Patcher) key(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	v, _ := dom.Attr(n, p.KeyAttribute)
	return v
}

func (p *Patcher) update(live, want *html.Node, stats *Stats) {
	if live.Type != html.ElementNode {
		if live.Data != want.Data {
			live.Data = want.Data
			stats.TextUpdates++
		}
		return
	}

	previous, seen := p.rendered[live]

	for _, a := range want.Attr {
		if seen {
			if old, ok := lookup(previous, a); ok && old == a.Val {
				continue
			}
		} else if v, ok := dom.Attr(live, a.Key); ok && v == a.Val && a.Namespace == "" {
			continue
		}
		setAttr(live, a)
		stats.AttrUpdates++
	}

	for _, a := range previous {
		if _, ok := lookup(want.Attr, a); !ok {
			removeAttr(live, a)
			stats.AttrUpdates++
		}
	}

	p.rendered[live] = slices.Clone(want.Attr)
}

func (p *Patcher) unmount(n *html.Node) {
	delete(p.rendered, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.unmount(c)
	}
	if p.OnRemove != nil && n.Parent == nil {
		p.OnRemove(n)
	}
}

// inflate creates an empty live counterpart of want. Attributes and children
// are filled in by the caller.
func inflate(want *html.Node) *html.Node {
	return &html.Node{
		Data:      want.Data,
		DataAtom:  want.DataAtom,
		Namespace: want.Namespace,
		Type:      want.Type,
	}
}

func children(n *html.Node) []*html.Node {
	out := []*html.Node{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func lookup(attrs []html.Attribute, a html.Attribute) (string, bool) {
	for _, b := range attrs {
		if b.Namespace == a.Namespace && b.Key == a.Key {
			return b.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, a html.Attribute) {
	for i, b := range n.Attr {
		if b.Namespace == a.Namespace && b.Key == a.Key {
			n.Attr[i].Val = a.Val
			return
		}
	}
	n.Attr = append(n.Attr, a)
}

func removeAttr(n *html.Node, a html.Attribute) {
	n.Attr = slices.DeleteFunc(n.Attr, func(b html.Attribute) bool {
		return b.Namespace == a.Namespace && b.Key == a.Key
	})
}
