package settings

const (
	ConfigAttribute       = "data-o-app-header-config"
	ConsoleBaseURLToken   = "{consoleBaseUrl}"
	DefaultConsoleBaseURL = "https://console.pearson.com"
	DefaultLocale         = "en"
)

// Defaults returns the lowest priority settings layer.
func Defaults() Settings {
	return Settings{
		ConsoleBaseURL: DefaultConsoleBaseURL,
		Extra:          map[string]any{},
		Links: Links{
			"home":      ConsoleBaseURLToken + "/console/home",
			"myAccount": ConsoleBaseURLToken + "/account/manage/account",
		},
		Locale:            DefaultLocale,
		MenuItems:         MenuItems{},
		Mode:              ModeSignedOut,
		OnLogin:           Func(noop),
		OnLogout:          Func(noop),
		ShowLoginControls: Bool(true),
	}
}

func noop() {}
