package settings

import (
	"maps"
	"slices"
)

type Mode string

const (
	ModeBasic        Mode = "Basic"
	ModeCourse       Mode = "Course"
	ModeIntegration  Mode = "Integration"
	ModeLegacyCourse Mode = "Legacy Course"
	ModeSignedOut    Mode = "Signed Out"
)

var Modes = []Mode{ModeSignedOut, ModeBasic, ModeCourse, ModeIntegration, ModeLegacyCourse}

func (m Mode) Valid() bool {
	return slices.Contains(Modes, m)
}

// HasAccountMenu reports whether the mode shows the account dropdown.
func (m Mode) HasAccountMenu() bool {
	return m == ModeBasic || m == ModeCourse || m == ModeLegacyCourse
}

// IsCourse reports whether the mode is one of the course layouts.
func (m Mode) IsCourse() bool {
	return m == ModeCourse || m == ModeLegacyCourse
}

type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeLight   Theme = "light"
)

// HandlerRef points at a callback either directly or by its registry name.
// Invalid holds the type of a configured value that is neither, such as a
// number in embedded JSON; such a reference never resolves.
type HandlerRef struct {
	Func    func() `json:"-"`
	Invalid string `json:"-"`
	Name    string `json:"-"`
}

func Func(fn func()) HandlerRef {
	return HandlerRef{Func: fn}
}

func Named(name string) HandlerRef {
	return HandlerRef{Name: name}
}

func (r HandlerRef) IsZero() bool {
	return r.Func == nil && r.Name == "" && r.Invalid == ""
}

type User struct {
	GivenName string `json:"givenName,omitempty"`
}

// MenuItem is a caller authored item description. It is only ever read.
type MenuItem struct {
	Active  bool       `json:"active,omitempty"`
	Href    string     `json:"href,omitempty"`
	OnClick HandlerRef `json:"onClick,omitempty"`
	Target  string     `json:"target,omitempty"`
	Text    string     `json:"text,omitempty"`
}

type MenuItems []MenuItem

type CourseNav struct {
	Heading *MenuItem `json:"heading,omitempty"`
	Items   MenuItems `json:"items,omitempty"`
}

// Help maps a help menu label to its target. Entries decoded from a plain
// string only carry Href.
type Help map[string]MenuItem

// Links holds link templates by key. Values that are not strings resolve to no link.
type Links map[string]any

type Settings struct {
	ConsoleBaseURL    string         `json:"consoleBaseUrl,omitempty"`
	CourseItems       MenuItems      `json:"courseItems,omitempty"`
	CourseNav         *CourseNav     `json:"courseNav,omitempty"`
	Extra             map[string]any `json:",remain"`
	Help              Help           `json:"help,omitempty"`
	Links             Links          `json:"links,omitempty"`
	Locale            string         `json:"locale,omitempty"`
	MenuItems         MenuItems      `json:"menuItems,omitempty"`
	Mode              Mode           `json:"mode,omitempty"`
	OnLogin           HandlerRef     `json:"onLogin,omitempty"`
	OnLogout          HandlerRef     `json:"onLogout,omitempty"`
	ShowLoginControls *bool          `json:"showLoginControls,omitempty"`
	Theme             Theme          `json:"theme,omitempty"`
	User              *User          `json:"user,omitempty"`
}

func Bool(b bool) *bool {
	return &b
}

func (s Settings) LoginControlsShown() bool {
	return s.ShowLoginControls != nil && *s.ShowLoginControls
}

func (s Settings) GivenName() string {
	if s.User == nil {
		return ""
	}
	return s.User.GivenName
}

// LightTheme reports whether the light header theme applies.
func (s Settings) LightTheme() bool {
	return s.Mode.IsCourse() && s.Theme == ThemeLight
}

// Clone returns a copy whose maps can be replaced without touching s. Nested
// values are shared since they are never mutated.
func (s Settings) Clone() Settings {
	c := s
	c.Extra = maps.Clone(s.Extra)
	if c.Extra == nil {
		c.Extra = map[string]any{}
	}
	c.Help = maps.Clone(s.Help)
	c.Links = maps.Clone(s.Links)
	if c.Links == nil {
		c.Links = Links{}
	}
	return c
}
