/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package header

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"kdex.dev/app-header/internal/dom"
	"kdex.dev/app-header/internal/dropdown"
	"kdex.dev/app-header/internal/handler"
	"kdex.dev/app-header/internal/i18n"
	"kdex.dev/app-header/internal/menu"
	"kdex.dev/app-header/internal/patch"
	"kdex.dev/app-header/internal/render"
	"kdex.dev/app-header/internal/settings"
)

const (
	ClassChevronDown = "o-app-header__icon-chevron-down"
	ClassChevronUp   = "o-app-header__icon-chevron-up"
	ClassIcon        = "o-app-header__icon"
	ClassLightTheme  = "o-header--theme-light"

	accountMenuSelector = ".o-app-header__menu-menu"
	actionSelector      = "[" + render.ActionAttribute + "]"
	iconSelector        = "." + ClassIcon
)

// RootClasses are always present on the header element.
var RootClasses = []string{"o-app-header", "o-header", "o-header--fixed"}

type Config struct {
	Document *dom.Document
	// Element, when set, is replaced by the header. It takes precedence over Selector.
	Element *html.Node
	// Selector names the element replaced by the header. With neither Element
	// nor Selector the header is prepended to the body.
	Selector string

	Logger       logr.Logger
	Options      settings.Settings
	Registry     handler.Registry
	Translations *i18n.Translations
}

// AppHeader owns one header element and the settings it was last rendered
// from. It is not safe for concurrent use.
type AppHeader struct {
	Element *html.Node
	ID      string

	actions      map[string]handler.Bound
	builder      *menu.Builder
	doc          *dom.Document
	locale       string
	log          logr.Logger
	menus        *dropdown.Manager
	patcher      *patch.Patcher
	renderer     *render.Renderer
	resolver     *handler.Resolver
	state        settings.Settings
	translations *i18n.Translations
}

// view is everything a render needs, computed before the document is touched.
type view struct {
	actions  map[string]handler.Bound
	builder  *menu.Builder
	model    *menu.Model
	nodes    []*html.Node
	renderer *render.Renderer
}

// Init resolves settings from the defaults, the configuration embedded in the
// document and config.Options, inserts the header element and renders it.
// Nothing in the document changes when Init fails.
func Init(config Config) (*AppHeader, error) {
	doc := config.Document
	if doc == nil {
		return nil, errors.New("a document is required")
	}

	global, err := settings.FromDocument(doc)
	if err != nil {
		return nil, err
	}

	state, err := settings.Resolve(settings.Defaults(), global, config.Options)
	if err != nil {
		return nil, err
	}

	target, err := findTarget(doc, config)
	if err != nil {
		return nil, err
	}

	translations := config.Translations
	if translations == nil {
		translations, err = i18n.NewTranslations(i18n.DefaultLanguage, i18n.Strings)
		if err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	root := constructRootEl()

	h := &AppHeader{
		Element:  root,
		ID:       id,
		doc:      doc,
		log:      config.Logger.WithValues("header", id),
		resolver: &handler.Resolver{
			Dispatcher: doc,
			Registry:   config.Registry,
			Root:       root,
		},
		translations: translations,
	}
	h.patcher = patch.New()
	h.patcher.OnRemove = doc.Forget

	v, err := h.prepare(state)
	if err != nil {
		return nil, err
	}

	if target != nil {
		dom.ReplaceWith(target, root)
	} else {
		dom.Prepend(doc.Body(), root)
	}

	h.listen()
	h.menus = dropdown.New(doc, root)

	if err := h.apply(state, v); err != nil {
		return nil, err
	}

	h.log.V(1).Info("initialized", "mode", state.Mode, "locale", state.Locale)

	return h, nil
}

func (h *AppHeader) GetMode() settings.Mode {
	return h.state.Mode
}

// SetMode switches to mode, merging options over the current settings, and
// renders. A changed Locale switches the header strings to that locale. On
// error the previous settings and markup stay in place.
func (h *AppHeader) SetMode(mode settings.Mode, options settings.Settings) error {
	next, err := settings.Apply(h.state, mode, options)
	if err != nil {
		return err
	}

	v, err := h.prepare(next)
	if err != nil {
		return err
	}

	previous := h.state.Mode
	if err := h.apply(next, v); err != nil {
		return err
	}

	h.log.V(1).Info("mode changed", "from", previous, "to", mode)

	return nil
}

// Settings returns a copy of the current settings.
func (h *AppHeader) Settings() settings.Settings {
	return h.state.Clone()
}

// Render renders the current settings again.
func (h *AppHeader) Render() error {
	v, err := h.prepare(h.state)
	if err != nil {
		return err
	}
	return h.apply(h.state, v)
}

func (h *AppHeader) Document() *dom.Document {
	return h.doc
}

func (h *AppHeader) prepare(state settings.Settings) (*view, error) {
	builder, renderer, err := h.localize(state.Locale)
	if err != nil {
		return nil, err
	}

	model, err := builder.Build(state)
	if err != nil {
		return nil, err
	}

	login, err := h.resolver.Resolve("onLogin", state.OnLogin, handler.LoginEvent)
	if err != nil {
		return nil, err
	}

	nodes, err := renderer.Fragment(model)
	if err != nil {
		return nil, err
	}

	actions := render.Actions(model)
	actions[render.LoginAction] = login
	actions[render.HelpAction] = h.handleHelpNavItemClick

	return &view{actions: actions, builder: builder, model: model, nodes: nodes, renderer: renderer}, nil
}

// localize returns the model builder and renderer for locale, reusing the
// current pair while the locale is unchanged.
func (h *AppHeader) localize(locale string) (*menu.Builder, *render.Renderer, error) {
	if h.renderer != nil && locale == h.locale {
		return h.builder, h.renderer, nil
	}

	translator := h.translations.Translator(locale)

	renderer, err := render.NewRenderer(translator)
	if err != nil {
		return nil, nil, err
	}

	return &menu.Builder{Resolver: h.resolver, Translator: translator}, renderer, nil
}

func (h *AppHeader) apply(state settings.Settings, v *view) error {
	h.state = state
	h.actions = v.actions
	h.builder = v.builder
	h.locale = state.Locale
	h.renderer = v.renderer

	dom.ToggleClass(h.Element, ClassLightTheme, v.model.LightTheme)

	stats := h.patcher.Patch(h.Element, v.nodes)

	initialized, err := h.menus.Init()
	if err != nil {
		return fmt.Errorf("failed to initialize dropdown menus: %w", err)
	}

	h.log.V(2).Info(
		"rendered",
		"mode", state.Mode,
		"created", stats.Created,
		"moved", stats.Moved,
		"removed", stats.Removed,
		"attrUpdates", stats.AttrUpdates,
		"textUpdates", stats.TextUpdates,
		"menus", initialized,
	)

	h.doc.DispatchEvent(h.Element, handler.DidUpdateEvent)

	return nil
}

func (h *AppHeader) listen() {
	h.doc.AddEventListener(h.Element, dropdown.ExpandEvent, func(e *dom.Event) {
		h.setChevrons(e.Target, true)
	})
	h.doc.AddEventListener(h.Element, dropdown.CollapseEvent, func(e *dom.Event) {
		h.setChevrons(e.Target, false)
	})
	h.doc.AddEventListener(h.Element, dom.ClickEvent, h.handleClick)
}

// handleClick routes activations of rendered controls to the handlers of the
// latest render.
func (h *AppHeader) handleClick(e *dom.Event) {
	control := dom.Closest(e.Target, h.Element, actionSelector)
	if control == nil {
		return
	}

	action, _ := dom.Attr(control, render.ActionAttribute)
	fn, ok := h.actions[action]
	if !ok {
		h.log.V(2).Info("no handler for action", "action", action)
		return
	}

	fn(e)
}

// handleHelpNavItemClick collapses the account menu since the prevented
// default keeps the dropdown from doing so.
func (h *AppHeader) handleHelpNavItemClick(e *dom.Event) {
	if e != nil {
		e.PreventDefault()
	}

	account, _ := h.doc.QuerySelector(h.Element, accountMenuSelector)
	if account != nil {
		dom.RemoveClass(account, dropdown.ClassExpanded)
		h.setChevrons(account, false)
	}

	h.doc.DispatchEvent(h.Element, handler.HelpToggleEvent)
}

func (h *AppHeader) setChevrons(scope *html.Node, up bool) {
	icons, _ := h.doc.QuerySelectorAll(scope, iconSelector)
	for _, icon := range icons {
		dom.ToggleClass(icon, ClassChevronDown, !up)
		dom.ToggleClass(icon, ClassChevronUp, up)
	}
}

func constructRootEl() *html.Node {
	root := dom.Element("header", html.Attribute{Key: "role", Val: "banner"})
	for _, class := range RootClasses {
		dom.AddClass(root, class)
	}
	return root
}

func findTarget(doc *dom.Document, config Config) (*html.Node, error) {
	if config.Element != nil {
		if config.Element.Parent == nil {
			return nil, errors.New("element is not attached to the document")
		}
		return config.Element, nil
	}
	if config.Selector == "" {
		if doc.Body() == nil {
			return nil, &ElementNotFoundError{Selector: "body"}
		}
		return nil, nil
	}

	target, err := doc.QuerySelector(doc.Root(), config.Selector)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &ElementNotFoundError{Selector: config.Selector}
	}
	return target, nil
}
