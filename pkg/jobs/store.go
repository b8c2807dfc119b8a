package jobs

import "buidl-explorer-go/pkg/models"

// ResultStore holds the most recently retrieved result set. The set is only
// ever replaced whole or cleared.
type ResultStore struct {
	records []models.ProjectRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) Replace(records []models.ProjectRecord) {
	s.records = append([]models.ProjectRecord(nil), records...)
}

func (s *ResultStore) Clear() {
	s.records = nil
}

// Records returns a copy of the stored set in server order.
func (s *ResultStore) Records() []models.ProjectRecord {
	if len(s.records) == 0 {
		return nil
	}
	return append([]models.ProjectRecord(nil), s.records...)
}

func (s *ResultStore) Len() int {
	return len(s.records)
}

// LogBuffer is the ordered, unbounded log of the current job's progress lines.
type LogBuffer struct {
	lines []string
}

func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

func (b *LogBuffer) Append(line string) {
	b.lines = append(b.lines, line)
}

func (b *LogBuffer) Clear() {
	b.lines = nil
}

func (b *LogBuffer) Lines() []string {
	if len(b.lines) == 0 {
		return nil
	}
	return append([]string(nil), b.lines...)
}

func (b *LogBuffer) Len() int {
	return len(b.lines)
}
