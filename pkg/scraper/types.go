package scraper

// Backend endpoints, relative to the configured base URL.
const (
	PathProjects = "/api/projects"
	PathScrape   = "/api/scrape"
	PathDownload = "/api/download"
	PathHealth   = "/health"
)

// Event names on the progress stream. Unnamed events arrive as EventMessage.
const (
	EventMessage = "message"
	EventDone    = "done"
	EventError   = "error"
)

// DefaultExportName is used when the backend does not name the artifact.
const DefaultExportName = "final_dorahacks_data.xlsx"

// Handlers receives the events of one progress stream subscription.
// OnLine fires zero or more times in arrival order, then at most one of
// OnDone or OnError. Nothing fires after the subscription has been closed.
type Handlers struct {
	OnLine  func(text string)
	OnDone  func()
	OnError func(err error)
}

// Subscription is an open progress stream. Close is idempotent.
type Subscription interface {
	Close()
}
