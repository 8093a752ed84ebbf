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
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/net/html"

	"kdex.dev/app-header/internal/dom"
	"kdex.dev/app-header/internal/dropdown"
	"kdex.dev/app-header/internal/handler"
	"kdex.dev/app-header/internal/i18n"
	"kdex.dev/app-header/internal/menu"
	"kdex.dev/app-header/internal/settings"
)

const blankPage = `<!DOCTYPE html><html><head></head><body><main id="content">Hello</main></body></html>`

func parse(markup string) *dom.Document {
	doc, err := dom.Parse(strings.NewReader(markup))
	Expect(err).NotTo(HaveOccurred())
	return doc
}

func find(doc *dom.Document, scope *html.Node, selector string) *html.Node {
	n, err := doc.QuerySelector(scope, selector)
	Expect(err).NotTo(HaveOccurred())
	return n
}

func findAll(doc *dom.Document, scope *html.Node, selector string) []*html.Node {
	n, err := doc.QuerySelectorAll(scope, selector)
	Expect(err).NotTo(HaveOccurred())
	return n
}

func counter(doc *dom.Document, name string) *int {
	count := 0
	doc.AddEventListener(doc.Root(), name, func(e *dom.Event) {
		count++
	})
	return &count
}

func courseItems(n int) settings.MenuItems {
	items := settings.MenuItems{}
	for i := range n {
		items = append(items, settings.MenuItem{
			Href: fmt.Sprintf("/courses/%d", i),
			Text: fmt.Sprintf("Course %d", i),
		})
	}
	return items
}

var _ = Describe("AppHeader", func() {
	var doc *dom.Document

	BeforeEach(func() {
		doc = parse(blankPage)
	})

	initHeader := func(config Config) *AppHeader {
		config.Document = doc
		config.Logger = logger
		h, err := Init(config)
		Expect(err).NotTo(HaveOccurred())
		return h
	}

	Context("Init", func() {
		It("should prepend the header to the body", func() {
			h := initHeader(Config{})

			Expect(doc.Body().FirstChild).To(BeIdenticalTo(h.Element))
			Expect(h.Element.Data).To(Equal("header"))
			role, _ := dom.Attr(h.Element, "role")
			Expect(role).To(Equal("banner"))
			Expect(dom.Classes(h.Element)).To(Equal([]string{"o-app-header", "o-header", "o-header--fixed"}))
			Expect(h.ID).NotTo(BeEmpty())
			Expect(h.GetMode()).To(Equal(settings.ModeSignedOut))
		})

		It("should replace the element matched by a selector", func() {
			h := initHeader(Config{Selector: "#content"})

			Expect(find(doc, doc.Root(), "#content")).To(BeNil())
			Expect(doc.Body().FirstChild).To(BeIdenticalTo(h.Element))
		})

		It("should replace a given element", func() {
			content := find(doc, doc.Root(), "#content")
			h := initHeader(Config{Element: content})

			Expect(content.Parent).To(BeNil())
			Expect(h.Element.Parent).To(BeIdenticalTo(doc.Body()))
		})

		It("should fail when the selector matches nothing", func() {
			before := doc.String()

			_, err := Init(Config{Document: doc, Selector: "#missing"})

			var notFound *ElementNotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Selector).To(Equal("#missing"))
			Expect(doc.String()).To(Equal(before))
		})

		It("should reject an unrecognized mode", func() {
			before := doc.String()

			_, err := Init(Config{Document: doc, Options: settings.Settings{Mode: "Bogus"}})

			var invalid *settings.InvalidModeError
			Expect(errors.As(err, &invalid)).To(BeTrue())
			Expect(err.Error()).To(Equal("unrecognized mode, 'Bogus'"))
			Expect(doc.String()).To(Equal(before))
		})

		It("should reject malformed embedded configuration", func() {
			doc = parse(`<html><body><script type="application/json" data-o-app-header-config>{nope</script></body></html>`)

			_, err := Init(Config{Document: doc})

			var configErr *settings.ConfigError
			Expect(errors.As(err, &configErr)).To(BeTrue())
		})

		It("should layer embedded configuration under options", func() {
			doc = parse(`<html><body><script type="application/json" data-o-app-header-config>
{"mode": "Basic", "consoleBaseUrl": "https://c.example", "user": {"givenName": "Ada"}, "links": {"home": "{consoleBaseUrl}/x"}}
</script></body></html>`)

			h := initHeader(Config{Options: settings.Settings{
				Links: settings.Links{"myAccount": "/me"},
				User:  &settings.User{GivenName: "Grace"},
			}})

			Expect(h.GetMode()).To(Equal(settings.ModeBasic))
			s := h.Settings()
			Expect(s.Links).To(HaveKeyWithValue("home", "{consoleBaseUrl}/x"))
			Expect(s.Links).To(HaveKeyWithValue("myAccount", "/me"))
			Expect(menu.ResolveLink(s, "home")).To(Equal("https://c.example/x"))

			logo := find(doc, h.Element, ".o-app-header__logo-link")
			href, _ := dom.Attr(logo, "href")
			Expect(href).To(Equal("https://c.example/x"))
			Expect(dom.TextContent(find(doc, h.Element, ".o-app-header__username"))).To(Equal("Grace"))
		})

		It("should fail when a named handler is not registered", func() {
			before := doc.String()

			_, err := Init(Config{Document: doc, Options: settings.Settings{OnLogin: settings.Named("signIn")}})

			var missing *handler.MissingHandlerError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Property).To(Equal("onLogin"))
			Expect(doc.String()).To(Equal(before))
		})

		It("should dispatch did-update after the first render", func() {
			updates := counter(doc, handler.DidUpdateEvent)

			initHeader(Config{})

			Expect(*updates).To(Equal(1))
		})
	})

	Context("Signed Out", func() {
		It("should show a sign in control", func() {
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeSignedOut, ShowLoginControls: settings.Bool(true)}})

			Expect(find(doc, h.Element, "[data-key=sign-in]")).NotTo(BeNil())
			Expect(find(doc, h.Element, ".o-app-header__menu-menu")).To(BeNil())
			Expect(find(doc, h.Element, ".o-app-header__logo-link")).To(BeNil())
		})

		It("should hide the sign in control without login controls", func() {
			h := initHeader(Config{Options: settings.Settings{ShowLoginControls: settings.Bool(false)}})

			Expect(find(doc, h.Element, "[data-key=sign-in]")).To(BeNil())
			Expect(find(doc, h.Element, ".o-header__nav-item.o-app-header__nav-item-help")).NotTo(BeNil())
		})

		It("should fire the login event and callback once per activation", func() {
			calls := 0
			logins := counter(doc, handler.LoginEvent)

			h := initHeader(Config{Options: settings.Settings{
				Mode:              settings.ModeSignedOut,
				OnLogin:           settings.Func(func() { calls++ }),
				ShowLoginControls: settings.Bool(true),
			}})

			signIn := find(doc, h.Element, "[data-key=sign-in]")
			Expect(doc.Click(signIn)).To(BeFalse())

			Expect(*logins).To(Equal(1))
			Expect(calls).To(Equal(1))
		})

		It("should resolve login handlers by name", func() {
			calls := 0
			h := initHeader(Config{
				Options:  settings.Settings{OnLogin: settings.Named("signIn")},
				Registry: handler.Registry{"signIn": func() { calls++ }},
			})

			doc.Click(find(doc, h.Element, "[data-key=sign-in]"))

			Expect(calls).To(Equal(1))
		})
	})

	Context("SetMode", func() {
		DescribeTable("should report the mode it was set to",
			func(mode settings.Mode) {
				h := initHeader(Config{})

				Expect(h.SetMode(mode, settings.Settings{})).To(Succeed())
				Expect(h.GetMode()).To(Equal(mode))

				value, _ := dom.Attr(find(doc, h.Element, "[data-key=inner]"), "data-o-app-header-mode")
				Expect(value).To(Equal(strings.ToLower(strings.ReplaceAll(string(mode), " ", "-"))))
			},
			Entry("Signed Out", settings.ModeSignedOut),
			Entry("Basic", settings.ModeBasic),
			Entry("Course", settings.ModeCourse),
			Entry("Integration", settings.ModeIntegration),
			Entry("Legacy Course", settings.ModeLegacyCourse),
		)

		It("should leave state and markup alone on an unrecognized mode", func() {
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeBasic}})
			before := doc.String()
			updates := counter(doc, handler.DidUpdateEvent)

			err := h.SetMode("not-a-real-mode", settings.Settings{Theme: settings.ThemeLight})

			var invalid *settings.InvalidModeError
			Expect(errors.As(err, &invalid)).To(BeTrue())
			Expect(h.GetMode()).To(Equal(settings.ModeBasic))
			Expect(h.Settings().Theme).To(BeEmpty())
			Expect(doc.String()).To(Equal(before))
			Expect(*updates).To(BeZero())
		})

		It("should leave state and markup alone when a handler cannot be resolved", func() {
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeBasic}})
			before := doc.String()

			err := h.SetMode(settings.ModeCourse, settings.Settings{OnLogout: settings.Named("signOut")})

			var missing *handler.MissingHandlerError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Property).To(Equal("onLogout"))
			Expect(h.GetMode()).To(Equal(settings.ModeBasic))
			Expect(doc.String()).To(Equal(before))
		})

		It("should merge options over the current settings", func() {
			h := initHeader(Config{Options: settings.Settings{User: &settings.User{GivenName: "Ada"}}})

			Expect(h.SetMode(settings.ModeBasic, settings.Settings{CourseItems: courseItems(2)})).To(Succeed())

			s := h.Settings()
			Expect(s.User.GivenName).To(Equal("Ada"))
			Expect(s.CourseItems).To(HaveLen(2))
			Expect(findAll(doc, h.Element, ".o-app-header__menu-item-course")).To(HaveLen(2))
		})

		It("should cap course items", func() {
			h := initHeader(Config{})

			Expect(h.SetMode(settings.ModeBasic, settings.Settings{CourseItems: courseItems(7)})).To(Succeed())
			Expect(findAll(doc, h.Element, ".o-app-header__menu-item-course")).To(HaveLen(5))
			Expect(findAll(doc, h.Element, ".o-app-header__menu-item-all-courses")).To(HaveLen(1))

			Expect(h.SetMode(settings.ModeBasic, settings.Settings{CourseItems: courseItems(3)})).To(Succeed())
			Expect(findAll(doc, h.Element, ".o-app-header__menu-item-course")).To(HaveLen(3))
			Expect(findAll(doc, h.Element, ".o-app-header__menu-item-all-courses")).To(BeEmpty())
		})

		It("should toggle the light theme with the mode", func() {
			h := initHeader(Config{})

			Expect(h.SetMode(settings.ModeCourse, settings.Settings{Theme: settings.ThemeLight})).To(Succeed())
			Expect(dom.HasClass(h.Element, ClassLightTheme)).To(BeTrue())

			Expect(h.SetMode(settings.ModeBasic, settings.Settings{})).To(Succeed())
			Expect(h.Settings().Theme).To(Equal(settings.ThemeLight))
			Expect(dom.HasClass(h.Element, ClassLightTheme)).To(BeFalse())

			Expect(h.SetMode(settings.ModeLegacyCourse, settings.Settings{})).To(Succeed())
			Expect(dom.HasClass(h.Element, ClassLightTheme)).To(BeTrue())
		})

		It("should switch header strings when the locale changes", func() {
			translations, err := i18n.NewTranslations(i18n.DefaultLanguage, map[string]map[string]string{
				"en": {"Sign In": "Sign In"},
				"fr": {"Sign In": "Se connecter"},
			})
			Expect(err).NotTo(HaveOccurred())

			h := initHeader(Config{Translations: translations})
			signIn := find(doc, h.Element, "[data-key=sign-in]")
			Expect(dom.TextContent(signIn)).To(Equal("Sign In"))

			Expect(h.SetMode(settings.ModeSignedOut, settings.Settings{Locale: "fr"})).To(Succeed())
			Expect(h.Settings().Locale).To(Equal("fr"))
			Expect(find(doc, h.Element, "[data-key=sign-in]")).To(BeIdenticalTo(signIn))
			Expect(dom.TextContent(signIn)).To(Equal("Se connecter"))

			Expect(h.SetMode(settings.ModeSignedOut, settings.Settings{})).To(Succeed())
			Expect(dom.TextContent(signIn)).To(Equal("Se connecter"))
		})

		It("should dispatch did-update once per render", func() {
			h := initHeader(Config{})
			updates := counter(doc, handler.DidUpdateEvent)

			Expect(h.SetMode(settings.ModeBasic, settings.Settings{})).To(Succeed())
			Expect(h.SetMode(settings.ModeIntegration, settings.Settings{})).To(Succeed())

			Expect(*updates).To(Equal(2))
		})
	})

	Context("re-rendering", func() {
		It("should keep nodes and their listeners", func() {
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeBasic, CourseItems: courseItems(2)}})

			inner := h.Element.FirstChild
			logo := find(doc, h.Element, ".o-app-header__logo-link")
			clicks := 0
			doc.AddEventListener(logo, dom.ClickEvent, func(e *dom.Event) { clicks++ })
			before := doc.String()

			Expect(h.Render()).To(Succeed())
			Expect(h.Render()).To(Succeed())

			Expect(h.Element.FirstChild).To(BeIdenticalTo(inner))
			Expect(find(doc, h.Element, ".o-app-header__logo-link")).To(BeIdenticalTo(logo))
			Expect(doc.String()).To(Equal(before))

			doc.Click(logo)
			Expect(clicks).To(Equal(1))
		})

		It("should keep the account menu when switching between account modes", func() {
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeBasic}})
			account := find(doc, h.Element, ".o-app-header__menu-menu")

			doc.Click(find(doc, h.Element, "[data-key=account-toggle]"))
			Expect(dom.HasClass(account, dropdown.ClassExpanded)).To(BeTrue())

			Expect(h.SetMode(settings.ModeCourse, settings.Settings{})).To(Succeed())

			Expect(find(doc, h.Element, ".o-app-header__menu-menu")).To(BeIdenticalTo(account))
			Expect(dom.HasClass(account, dropdown.ClassExpanded)).To(BeTrue())
			Expect(findAll(doc, account, ".o-app-header__menu-item-all-courses")).To(HaveLen(1))
		})
	})

	Context("account menu", func() {
		It("should sign out through the logout handler", func() {
			calls := 0
			logouts := counter(doc, handler.LogoutEvent)
			h := initHeader(Config{Options: settings.Settings{
				Mode:     settings.ModeBasic,
				OnLogout: settings.Func(func() { calls++ }),
			}})

			signOut := find(doc, h.Element, ".o-app-header__menu-item-sign-out a")
			Expect(doc.Click(signOut)).To(BeFalse())

			Expect(*logouts).To(Equal(1))
			Expect(calls).To(Equal(1))
		})

		It("should flip the chevrons as the menu expands and collapses", func() {
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeBasic}})
			toggle := find(doc, h.Element, "[data-key=account-toggle]")
			icon := find(doc, toggle, ".o-app-header__icon")

			doc.Click(toggle)
			Expect(dom.HasClass(icon, ClassChevronUp)).To(BeTrue())
			Expect(dom.HasClass(icon, ClassChevronDown)).To(BeFalse())

			doc.Click(toggle)
			Expect(dom.HasClass(icon, ClassChevronUp)).To(BeFalse())
			Expect(dom.HasClass(icon, ClassChevronDown)).To(BeTrue())
		})

		It("should call item handlers by name and follow plain links", func() {
			tracked := 0
			h := initHeader(Config{
				Options: settings.Settings{
					Mode: settings.ModeLegacyCourse,
					MenuItems: settings.MenuItems{
						{Text: "Track", Href: "/track", OnClick: settings.Named("track")},
						{Text: "Grades", Href: "/grades"},
					},
				},
				Registry: handler.Registry{"track": func() { tracked++ }},
			})

			links := findAll(doc, h.Element, ".o-app-header__menu-item a")
			Expect(links).To(HaveLen(2))

			Expect(doc.Click(links[0])).To(BeFalse())
			Expect(tracked).To(Equal(1))

			Expect(doc.Click(links[1])).To(BeTrue())
			Expect(tracked).To(Equal(1))
		})
	})

	Context("help", func() {
		It("should toggle help and collapse the account menu", func() {
			toggles := counter(doc, handler.HelpToggleEvent)
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeBasic}})
			account := find(doc, h.Element, ".o-app-header__menu-menu")
			icon := find(doc, account, ".o-app-header__icon")

			doc.Click(find(doc, h.Element, "[data-key=account-toggle]"))
			Expect(dom.HasClass(account, dropdown.ClassExpanded)).To(BeTrue())

			Expect(doc.Click(find(doc, h.Element, "[data-key=help-link]"))).To(BeFalse())

			Expect(*toggles).To(Equal(1))
			Expect(dom.HasClass(account, dropdown.ClassExpanded)).To(BeFalse())
			Expect(dom.HasClass(icon, ClassChevronDown)).To(BeTrue())
		})

		It("should render help entries as a menu", func() {
			opened := 0
			h := initHeader(Config{Options: settings.Settings{
				Help: settings.Help{
					"Support": {Href: "https://support.example", Target: "_blank"},
					"Chat":    {OnClick: settings.Func(func() { opened++ })},
				},
			}})

			Expect(find(doc, h.Element, "[data-key=help-link]")).To(BeNil())
			entries := findAll(doc, h.Element, ".o-app-header__menu-help .o-app-header__menu-item-help a")
			Expect(entries).To(HaveLen(2))
			Expect(dom.TextContent(entries[0])).To(Equal("Chat"))
			Expect(dom.TextContent(entries[1])).To(Equal("Support"))

			Expect(doc.Click(entries[0])).To(BeFalse())
			Expect(opened).To(Equal(1))
		})
	})

	Context("Integration", func() {
		It("should show neither the account menu nor a logo link", func() {
			h := initHeader(Config{Options: settings.Settings{Mode: settings.ModeIntegration}})

			Expect(find(doc, h.Element, ".o-app-header__menu-menu")).To(BeNil())
			Expect(find(doc, h.Element, ".o-app-header__logo-link")).To(BeNil())
			Expect(find(doc, h.Element, "[data-key=menu-nav-item]")).To(BeNil())
		})
	})
})
