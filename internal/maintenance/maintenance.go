// Package maintenance runs the background loop that keeps derived state in
// step with the workspace. Each pass snapshots the resident documents, then
// refreshes package relevance for every LaTeX document without holding the
// workspace lock.
package maintenance

import (
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"vellum/internal/deferred"
	"vellum/internal/metadata"
	"vellum/internal/parser"
	"vellum/internal/workspace"
)

const DefaultInterval = time.Second

var log = commonlog.GetLogger("vellum.maintenance")

// Loop periodically refreshes package relevance in the component database.
type Loop struct {
	interval  time.Duration
	workspace *workspace.Workspace
	store     *deferred.Value[metadata.Store]

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewLoop creates a maintenance loop. A non-positive interval falls back to
// DefaultInterval.
func NewLoop(ws *workspace.Workspace, store *deferred.Value[metadata.Store], interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		interval:  interval,
		workspace: ws,
		store:     store,
		stopChan:  make(chan struct{}),
	}
}

// Run starts the loop in its own goroutine. The first pass runs after one
// full interval.
func (l *Loop) Run() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.RunOnce()
			case <-l.stopChan:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (l *Loop) Stop() {
	close(l.stopChan)
	l.wg.Wait()
}

// RunOnce performs a single maintenance pass. A document whose refresh fails
// is logged and skipped; the pass continues with the rest. The component
// database is consulted without blocking, so a slow or failed initialization
// never delays the next pass from observing newly opened documents.
func (l *Loop) RunOnce() {
	snapshot := l.workspace.Snapshot()

	store, ready := l.store.TryGet()
	if !ready {
		log.Debug("component database not ready, skipping relevance refresh")
		return
	}

	for _, doc := range snapshot {
		if doc.Language != parser.LanguageLaTeX {
			continue
		}
		related := l.workspace.RelatedDocuments(doc.URI)
		packages := packagesOf(related)
		if err := store.UpsertRelevance(doc.URI, packages); err != nil {
			log.Errorf("relevance refresh for %s: %s", doc.URI, err.Error())
		}
	}
}

// packagesOf collects the distinct package includes across a related set, in
// first-seen order.
func packagesOf(related []workspace.Document) []string {
	seen := make(map[string]bool)
	var packages []string
	for _, doc := range related {
		if doc.Tree == nil {
			continue
		}
		for _, include := range doc.Tree.Includes {
			if include.Kind == parser.IncludePackage && !seen[include.Target] {
				seen[include.Target] = true
				packages = append(packages, include.Target)
			}
		}
	}
	return packages
}
