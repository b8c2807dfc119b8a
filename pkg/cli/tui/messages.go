package tui

// DispatchMsg carries a job controller callback onto the update loop.
// The root model runs Fn before anything else sees the message.
type DispatchMsg struct {
	Fn func()
}

// MenuNavigationMsg returns from the active flow to the root menu
type MenuNavigationMsg struct{}
