package menu

import (
	"kdex.dev/app-header/internal/handler"
	"kdex.dev/app-header/internal/settings"
)

const MaxCourseItems = 5

const (
	ClassAllCourses     = "o-app-header__menu-item-all-courses"
	ClassCourse         = "o-app-header__menu-item-course"
	ClassCourseNav      = "o-app-header__menu-item-course-nav"
	ClassDesktopHidden  = "o-header__viewport-desktop--hidden"
	ClassDisabled       = "o-dropdown-menu__menu-item--disabled"
	ClassDivider        = "o-dropdown-menu__divider"
	ClassHeading        = "o-dropdown-menu__heading"
	ClassHelpItem       = "o-app-header__menu-item-help"
	ClassLegacyItem     = "o-app-header__menu-item"
	ClassMenuItem       = "o-dropdown-menu__menu-item"
	ClassMyAccount      = "o-app-header__menu-item-my-account"
	ClassNavItem        = "o-header__nav-item"
	ClassNavItemMenu    = "o-app-header__nav-item-menu"
	ClassNavItemSignIn  = "o-app-header__nav-item-sign-in"
	ClassSignOut        = "o-app-header__menu-item-sign-out"
	ClassTabletHidden   = "o-header__viewport-tablet--hidden"
	CourseNavKey        = "course-nav"
	ConsoleBaseURLToken = settings.ConsoleBaseURLToken
)

type ActivationKind int

const (
	ActivationNone ActivationKind = iota
	ActivationInvoke
	ActivationNavigate
)

// Activation is what happens when a rendered item is activated.
type Activation struct {
	Handler handler.Bound
	Href    string
	Kind    ActivationKind
}

type Item struct {
	Activation         Activation
	Classes            string
	CourseNavMenuItems []Item
	Divider            bool
	Href               string
	IsCourseNav        bool
	Key                string
	Target             string
	Text               string
}

// Model is the resolved view of one render pass.
type Model struct {
	Help               []Item
	HelpIsMenu         bool
	HomeLink           string
	LightTheme         bool
	LogoLinked         bool
	MenuItems          []Item
	MenuNavItemClasses string
	Mode               settings.Mode
	ShowMenu           bool
	ShowSignIn         bool
	UserLabel          string
}

type Translator interface {
	Translate(key string) string
}

type HandlerResolver interface {
	Resolve(property string, ref settings.HandlerRef, eventName string) (handler.Bound, error)
}

// Invokes reports whether activating the item calls a handler.
func (i Item) Invokes() bool {
	return i.Activation.Kind == ActivationInvoke
}
