package menu

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"kdex.dev/app-header/internal/handler"
	"kdex.dev/app-header/internal/settings"
)

var viewportHidden = []string{ClassTabletHidden, ClassDesktopHidden}

type Builder struct {
	Resolver   HandlerResolver
	Translator Translator
}

// Build derives the render model for s. It has no side effects and returns the
// same model, keys included, for equal input.
func (b *Builder) Build(s settings.Settings) (*Model, error) {
	mode := s.Mode
	p := &pass{builder: b, keys: map[uint64]int{}, settings: s}

	navItemClasses := []string{ClassNavItem}
	if mode == settings.ModeSignedOut && s.LoginControlsShown() {
		navItemClasses = append(navItemClasses, ClassNavItemSignIn)
	}
	if mode.HasAccountMenu() {
		navItemClasses = append(navItemClasses, ClassNavItemMenu)
	}

	items := []Item{}

	if mode == settings.ModeBasic {
		courseItems := s.CourseItems
		exceedsMax := len(courseItems) > MaxCourseItems
		if exceedsMax {
			courseItems = courseItems[:MaxCourseItems]
		}

		for i, source := range courseItems {
			item, err := p.item(fmt.Sprintf("courseItems[%d]", i), source, append([]string{ClassCourse}, viewportHidden...))
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

		if exceedsMax {
			items = append(items, p.allCourses())
		}

		if len(courseItems) > 0 {
			items = append(items, p.divider(viewportHidden...))
		}
	}

	if mode.IsCourse() {
		items = append(items, p.allCourses(), p.divider(viewportHidden...))

		courseNav, err := p.courseNav()
		if err != nil {
			return nil, err
		}
		if courseNav != nil {
			items = append(items, *courseNav)
		}
	}

	if mode == settings.ModeLegacyCourse && len(s.MenuItems) > 0 {
		for i, source := range s.MenuItems {
			item, err := p.item(fmt.Sprintf("menuItems[%d]", i), source, []string{ClassLegacyItem})
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		items = append(items, p.divider())
	}

	if mode.HasAccountMenu() {
		myAccount, err := p.item("myAccount", settings.MenuItem{
			Href: ResolveLink(s, "myAccount"),
			Text: b.translate("My Account"),
		}, []string{ClassMyAccount})
		if err != nil {
			return nil, err
		}

		signOut, err := p.item("signOut", settings.MenuItem{
			Text: b.translate("Sign Out"),
		}, []string{ClassSignOut})
		if err != nil {
			return nil, err
		}
		logout, err := p.resolve("onLogout", s.OnLogout, handler.LogoutEvent)
		if err != nil {
			return nil, err
		}
		signOut.Activation = Activation{Handler: logout, Kind: ActivationInvoke}

		items = append(items, myAccount, signOut)
	}

	help, err := p.help()
	if err != nil {
		return nil, err
	}

	userLabel := s.GivenName()
	if userLabel == "" {
		userLabel = b.translate("Menu")
	}

	return &Model{
		Help:               help,
		HelpIsMenu:         len(help) > 0,
		HomeLink:           ResolveLink(s, "home"),
		LightTheme:         s.LightTheme(),
		LogoLinked:         mode.HasAccountMenu(),
		MenuItems:          items,
		MenuNavItemClasses: strings.Join(navItemClasses, " "),
		Mode:               mode,
		ShowMenu:           mode.HasAccountMenu(),
		ShowSignIn:         mode == settings.ModeSignedOut && s.LoginControlsShown(),
		UserLabel:          userLabel,
	}, nil
}

func (b *Builder) translate(key string) string {
	if b.Translator == nil {
		return key
	}
	return b.Translator.Translate(key)
}

// ResolveLink returns links[key] with every {consoleBaseUrl} token replaced by
// the console base URL. Missing or non string links resolve to "".
func ResolveLink(s settings.Settings, key string) string {
	link, ok := s.Links[key].(string)
	if !ok || link == "" {
		return ""
	}
	return strings.ReplaceAll(link, ConsoleBaseURLToken, s.ConsoleBaseURL)
}

// pass holds the state of a single Build call.
type pass struct {
	builder  *Builder
	keys     map[uint64]int
	settings settings.Settings
}

func (p *pass) item(property string, source settings.MenuItem, classes []string) (Item, error) {
	all := classes
	if !slices.Contains(classes, ClassDivider) {
		all = append([]string{ClassMenuItem}, classes...)
	}
	joined := strings.Join(all, " ")

	item := Item{
		Classes: joined,
		Href:    source.Href,
		Key:     p.key(joined, source),
		Target:  source.Target,
		Text:    source.Text,
	}

	switch {
	case !source.OnClick.IsZero():
		bound, err := p.resolve(property+".onClick", source.OnClick, "")
		if err != nil {
			return Item{}, err
		}
		item.Activation = Activation{Handler: bound, Href: source.Href, Kind: ActivationInvoke}
	case source.Href != "":
		item.Activation = Activation{Href: source.Href, Kind: ActivationNavigate}
	}

	return item, nil
}

func (p *pass) resolve(property string, ref settings.HandlerRef, eventName string) (handler.Bound, error) {
	if p.builder.Resolver == nil {
		return nil, &handler.MissingHandlerError{Name: ref.Name, Property: property}
	}
	return p.builder.Resolver.Resolve(property, ref, eventName)
}

func (p *pass) divider(classes ...string) Item {
	joined := strings.Join(append([]string{ClassDivider}, classes...), " ")
	return Item{
		Classes: joined,
		Divider: true,
		Key:     p.key(joined, settings.MenuItem{}),
	}
}

func (p *pass) allCourses() Item {
	item, _ := p.item("home", settings.MenuItem{
		Href: ResolveLink(p.settings, "home"),
		Text: p.builder.translate("All courses"),
	}, append([]string{ClassAllCourses}, viewportHidden...))
	return item
}

func (p *pass) courseNav() (*Item, error) {
	courseNav := p.settings.CourseNav
	if courseNav == nil || (courseNav.Heading == nil && len(courseNav.Items) == 0) {
		return nil, nil
	}

	root := Item{IsCourseNav: true, Key: CourseNavKey}

	if courseNav.Heading != nil {
		heading, err := p.item("courseNav.heading", *courseNav.Heading, []string{ClassCourseNav, ClassHeading})
		if err != nil {
			return nil, err
		}
		root.CourseNavMenuItems = append(root.CourseNavMenuItems, heading)
	}

	for i, source := range courseNav.Items {
		classes := []string{ClassCourseNav}
		if source.Active {
			classes = append(classes, ClassDisabled)
		}

		item, err := p.item(fmt.Sprintf("courseNav.items[%d]", i), source, classes)
		if err != nil {
			return nil, err
		}
		root.CourseNavMenuItems = append(root.CourseNavMenuItems, item)
	}

	return &root, nil
}

// help lists help entries ordered by label.
func (p *pass) help() ([]Item, error) {
	labels := make([]string, 0, len(p.settings.Help))
	for label := range p.settings.Help {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	items := []Item{}
	for _, label := range labels {
		source := p.settings.Help[label]
		source.Text = label

		item, err := p.item("help."+label, source, []string{ClassHelpItem})
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// key derives an item key from its content so unchanged items keep their key
// across renders. Repeats of identical content are told apart by ordinal.
func (p *pass) key(classes string, source settings.MenuItem) string {
	d := xxhash.New()
	for _, part := range []string{classes, source.Text, source.Href, source.Target, strconv.FormatBool(source.Active), source.OnClick.Name} {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0})
	}
	sum := d.Sum64()

	n := p.keys[sum]
	p.keys[sum]++

	return fmt.Sprintf("%016x-%d", sum, n)
}
