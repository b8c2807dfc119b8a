package explorer

import (
	"buidl-explorer-go/pkg/models"
)

// ProjectsLoadedMsg is emitted when the browse flow has fetched the result set
type ProjectsLoadedMsg struct {
	Records []models.ProjectRecord
	Err     error
}

// DownloadDoneMsg is emitted when the export download finishes
type DownloadDoneMsg struct {
	Path string
	Err  error
}

// CopiedMsg is emitted after a profile URL was put on the clipboard
type CopiedMsg struct {
	Text string
	Err  error
}
