package dropdown

import (
	"golang.org/x/net/html"

	"kdex.dev/app-header/internal/dom"
)

const (
	ClassExpanded        = "o-dropdown-menu--expanded"
	ClassToggle          = "o-dropdown-menu__toggle"
	CollapseEvent        = "oDropdownMenu.collapse"
	Component            = "o-dropdown-menu"
	ExpandEvent          = "oDropdownMenu.expand"
	InitializedAttribute = "data-o-dropdown-menu--js"

	componentSelector = `[data-o-component~="o-dropdown-menu"]`
	toggleSelector    = "." + ClassToggle
)

// Manager drives the dropdown menus found under a scope element. A click on a
// menu toggle flips that menu and collapses its siblings. Any other click whose
// default action was not prevented collapses every open menu.
type Manager struct {
	doc    *dom.Document
	remove func()
	scope  *html.Node
}

// New starts listening for clicks on doc. Call Init after the scope content
// changes so new menus are picked up.
func New(doc *dom.Document, scope *html.Node) *Manager {
	m := &Manager{doc: doc, scope: scope}
	m.remove = doc.AddEventListener(doc.Root(), dom.ClickEvent, m.handleClick)
	return m
}

// Init marks the menus under scope that have not been seen yet and returns how
// many it found. Calling it again without new menus is a no-op.
func (m *Manager) Init() (int, error) {
	menus, err := m.doc.QuerySelectorAll(m.scope, componentSelector)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, menu := range menus {
		if m.initialized(menu) {
			continue
		}
		dom.SetAttr(menu, InitializedAttribute, "")
		if toggle, _ := m.doc.QuerySelector(menu, toggleSelector); toggle != nil {
			dom.SetAttr(toggle, "aria-expanded", "false")
		}
		count++
	}

	return count, nil
}

func (m *Manager) Menus() []*html.Node {
	menus, _ := m.doc.QuerySelectorAll(m.scope, componentSelector)
	out := []*html.Node{}
	for _, menu := range menus {
		if m.initialized(menu) {
			out = append(out, menu)
		}
	}
	return out
}

func (m *Manager) IsExpanded(menu *html.Node) bool {
	return dom.HasClass(menu, ClassExpanded)
}

func (m *Manager) Expand(menu *html.Node) {
	for _, other := range m.Menus() {
		if other != menu {
			m.Collapse(other)
		}
	}
	m.set(menu, true)
}

func (m *Manager) Collapse(menu *html.Node) {
	m.set(menu, false)
}

func (m *Manager) Toggle(menu *html.Node) {
	if m.IsExpanded(menu) {
		m.Collapse(menu)
	} else {
		m.Expand(menu)
	}
}

func (m *Manager) CollapseAll() {
	for _, menu := range m.Menus() {
		m.Collapse(menu)
	}
}

// Close stops listening for clicks.
func (m *Manager) Close() {
	if m.remove != nil {
		m.remove()
		m.remove = nil
	}
}

func (m *Manager) set(menu *html.Node, expanded bool) {
	if m.IsExpanded(menu) == expanded {
		return
	}

	dom.ToggleClass(menu, ClassExpanded, expanded)
	if toggle, _ := m.doc.QuerySelector(menu, toggleSelector); toggle != nil {
		if expanded {
			dom.SetAttr(toggle, "aria-expanded", "true")
		} else {
			dom.SetAttr(toggle, "aria-expanded", "false")
		}
	}

	if expanded {
		m.doc.DispatchEvent(menu, ExpandEvent)
	} else {
		m.doc.DispatchEvent(menu, CollapseEvent)
	}
}

func (m *Manager) handleClick(e *dom.Event) {
	if dom.Contains(m.scope, e.Target) {
		if toggle := dom.Closest(e.Target, m.scope, toggleSelector); toggle != nil {
			if menu := dom.Closest(toggle, m.scope, componentSelector); menu != nil && m.initialized(menu) {
				e.PreventDefault()
				m.Toggle(menu)
				return
			}
		}
	}

	if !e.DefaultPrevented() {
		m.CollapseAll()
	}
}

func (m *Manager) initialized(menu *html.Node) bool {
	_, ok := dom.Attr(menu, InitializedAttribute)
	return ok
}
