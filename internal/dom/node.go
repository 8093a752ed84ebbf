package dom

import (
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func Element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Attr:     attrs,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Type:     html.ElementNode,
	}
}

func Text(data string) *html.Node {
	return &html.Node{
		Data: data,
		Type: html.TextNode,
	}
}

func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

func HasClass(n *html.Node, class string) bool {
	return slices.Contains(Classes(n), class)
}

func AddClass(n *html.Node, class string) {
	classes := Classes(n)
	if slices.Contains(classes, class) {
		return
	}
	SetAttr(n, "class", strings.Join(append(classes, class), " "))
}

func RemoveClass(n *html.Node, class string) {
	classes := Classes(n)
	if !slices.Contains(classes, class) {
		return
	}
	SetAttr(n, "class", strings.Join(slices.DeleteFunc(classes, func(c string) bool {
		return c == class
	}), " "))
}

// ToggleClass adds class when on is true and removes it otherwise.
func ToggleClass(n *html.Node, class string, on bool) {
	if on {
		AddClass(n, class)
	} else {
		RemoveClass(n, class)
	}
}

func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// Closest walks from n up to and including stop and returns the first element
// matching selector.
func Closest(n, stop *html.Node, selector string) *html.Node {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}

	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && sel.Match(n) {
			return n
		}
		if n == stop {
			break
		}
	}

	return nil
}

// Contains reports whether n is ancestor or self of other.
func Contains(n, other *html.Node) bool {
	for ; other != nil; other = other.Parent {
		if other == n {
			return true
		}
	}
	return false
}

func Prepend(parent, child *html.Node) {
	parent.InsertBefore(child, parent.FirstChild)
}

// ReplaceWith puts replacement where old was and detaches old.
func ReplaceWith(old, replacement *html.Node) {
	parent := old.Parent
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}
