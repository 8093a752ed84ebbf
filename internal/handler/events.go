package handler

// Domain events dispatched on the header root. All are bare, bubbling and cancelable.
const (
	DidUpdateEvent  = "oAppHeader.didUpdate"
	HelpToggleEvent = "oAppHeader.help.toggle"
	LoginEvent      = "oAppHeader.login"
	LogoutEvent     = "oAppHeader.logout"
)
