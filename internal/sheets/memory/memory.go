// Package memory keeps mirrored summaries in process, for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"rehabcenter/internal/report"
	ports "rehabcenter/internal/sheets"
	"rehabcenter/internal/xlsx"
)

// Publisher stores the last grid written to each tab.
type Publisher struct {
	mu   sync.Mutex
	base string
	tabs map[string][][]any
}

var _ ports.SummaryPublisher = (*Publisher)(nil)

func New(base string) *Publisher {
	return &Publisher{base: base, tabs: make(map[string][][]any)}
}

func (p *Publisher) PublishSummary(_ context.Context, t report.Table) (string, error) {
	tab := ports.TabName(p.base, t)
	grid := xlsx.Grid(t)
	p.mu.Lock()
	p.tabs[tab] = grid
	p.mu.Unlock()
	return fmt.Sprintf("mem:%s!A1:%d", tab, len(grid)), nil
}

// Tab returns the grid last written to tab.
func (p *Publisher) Tab(tab string) ([][]any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.tabs[tab]
	return g, ok
}

// Tabs returns the number of tabs written so far.
func (p *Publisher) Tabs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tabs)
}
