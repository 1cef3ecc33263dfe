package feature

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("vellum.feature")

// DefaultCompletionLimit caps the merged completion list.
const DefaultCompletionLimit = 50

// Aggregator fans each request out to a fixed, ordered list of providers
// per feature kind and merges their results deterministically. Provider
// lists are resolved at startup and never change afterwards.
type Aggregator struct {
	Completion  []CompletionProvider
	Diagnostics []DiagnosticsProvider
	Folding     []FoldingProvider
	Symbols     []SymbolProvider
	Rename      []RenameProvider
	Hover       []HoverProvider
	References  []ReferenceProvider
	Links       []LinkProvider
	Definition  []DefinitionProvider
	Highlights  []HighlightProvider

	// CompletionLimit overrides DefaultCompletionLimit when positive.
	CompletionLimit int
}

// fanOut invokes run for every provider index concurrently and collects the
// per-provider results in registration order. A provider failure or panic
// is isolated: it is logged and treated as an empty result.
func fanOut[T any](ctx context.Context, count int, run func(ctx context.Context, i int) (T, error)) []T {
	results := make([]T, count)
	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < count; i++ {
		i := i
		group.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("provider %d panicked: %v", i, r)
				}
			}()
			result, err := run(groupCtx, i)
			if err != nil {
				log.Errorf("provider %d failed: %v", i, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}

	// Providers never return errors through the group, so this cannot fail.
	group.Wait()
	return results
}

// CompleteAll merges completion results: concatenate in provider order,
// rank, then truncate to the limit.
func (a *Aggregator) CompleteAll(ctx context.Context, req Request) []protocol.CompletionItem {
	perProvider := fanOut(ctx, len(a.Completion), func(ctx context.Context, i int) ([]protocol.CompletionItem, error) {
		return a.Completion[i].Complete(ctx, req)
	})

	type ranked struct {
		item     protocol.CompletionItem
		provider int
	}
	var all []ranked
	for providerIndex, items := range perProvider {
		for _, item := range items {
			all = append(all, ranked{item: item, provider: providerIndex})
		}
	}

	// Quality ranking: preselected items first, then provider registration
	// order, then label.
	sort.SliceStable(all, func(i, j int) bool {
		left, right := all[i], all[j]
		if pre(left.item) != pre(right.item) {
			return pre(left.item)
		}
		if left.provider != right.provider {
			return left.provider < right.provider
		}
		return left.item.Label < right.item.Label
	})

	limit := a.CompletionLimit
	if limit <= 0 {
		limit = DefaultCompletionLimit
	}
	if len(all) > limit {
		all = all[:limit]
	}

	items := make([]protocol.CompletionItem, len(all))
	for i, entry := range all {
		// Stable client-side ordering regardless of label sorting rules.
		entry.item.SortText = strPtr(fmt.Sprintf("%04d", i))
		items[i] = entry.item
	}
	return items
}

// DiagnoseAll concatenates diagnostics from every provider.
func (a *Aggregator) DiagnoseAll(ctx context.Context, req Request) []protocol.Diagnostic {
	perProvider := fanOut(ctx, len(a.Diagnostics), func(ctx context.Context, i int) ([]protocol.Diagnostic, error) {
		return a.Diagnostics[i].Diagnose(ctx, req)
	})
	return concat(perProvider)
}

// FoldAll concatenates folding ranges in registration order.
func (a *Aggregator) FoldAll(ctx context.Context, req Request) []protocol.FoldingRange {
	perProvider := fanOut(ctx, len(a.Folding), func(ctx context.Context, i int) ([]protocol.FoldingRange, error) {
		return a.Folding[i].Fold(ctx, req)
	})
	return concat(perProvider)
}

// SymbolsAll concatenates document symbols in registration order.
func (a *Aggregator) SymbolsAll(ctx context.Context, req Request) []protocol.DocumentSymbol {
	perProvider := fanOut(ctx, len(a.Symbols), func(ctx context.Context, i int) ([]protocol.DocumentSymbol, error) {
		return a.Symbols[i].Symbols(ctx, req)
	})
	return concat(perProvider)
}

// ReferencesAll concatenates reference locations in registration order.
func (a *Aggregator) ReferencesAll(ctx context.Context, req ReferenceRequest) []protocol.Location {
	perProvider := fanOut(ctx, len(a.References), func(ctx context.Context, i int) ([]protocol.Location, error) {
		return a.References[i].References(ctx, req)
	})
	return concat(perProvider)
}

// LinksAll concatenates document links in registration order.
func (a *Aggregator) LinksAll(ctx context.Context, req Request) []protocol.DocumentLink {
	perProvider := fanOut(ctx, len(a.Links), func(ctx context.Context, i int) ([]protocol.DocumentLink, error) {
		return a.Links[i].Links(ctx, req)
	})
	return concat(perProvider)
}

// HighlightsAll concatenates highlights in registration order.
func (a *Aggregator) HighlightsAll(ctx context.Context, req Request) []protocol.DocumentHighlight {
	perProvider := fanOut(ctx, len(a.Highlights), func(ctx context.Context, i int) ([]protocol.DocumentHighlight, error) {
		return a.Highlights[i].Highlights(ctx, req)
	})
	return concat(perProvider)
}

// HoverFirst returns the first non-empty hover in registration order.
func (a *Aggregator) HoverFirst(ctx context.Context, req Request) *protocol.Hover {
	perProvider := fanOut(ctx, len(a.Hover), func(ctx context.Context, i int) (*protocol.Hover, error) {
		return a.Hover[i].Hover(ctx, req)
	})
	for _, hover := range perProvider {
		if hover != nil {
			return hover
		}
	}
	return nil
}

// DefinitionFirst returns the first non-empty definition result in
// registration order.
func (a *Aggregator) DefinitionFirst(ctx context.Context, req Request) []protocol.Location {
	perProvider := fanOut(ctx, len(a.Definition), func(ctx context.Context, i int) ([]protocol.Location, error) {
		return a.Definition[i].Definition(ctx, req)
	})
	for _, locations := range perProvider {
		if len(locations) > 0 {
			return locations
		}
	}
	return nil
}

// RenameFirst returns the first non-empty workspace edit in registration
// order.
func (a *Aggregator) RenameFirst(ctx context.Context, req RenameRequest) *protocol.WorkspaceEdit {
	perProvider := fanOut(ctx, len(a.Rename), func(ctx context.Context, i int) (*protocol.WorkspaceEdit, error) {
		return a.Rename[i].Rename(ctx, req)
	})
	for _, edit := range perProvider {
		if edit != nil && len(edit.Changes) > 0 {
			return edit
		}
	}
	return nil
}

func concat[T any](perProvider [][]T) []T {
	var all []T
	for _, items := range perProvider {
		all = append(all, items...)
	}
	return all
}

func pre(item protocol.CompletionItem) bool {
	return item.Preselect != nil && *item.Preselect
}

// matchesPrefix is the shared case-insensitive prefix filter used by the
// completion providers.
func matchesPrefix(label, prefix string) bool {
	return prefix == "" || strings.HasPrefix(strings.ToLower(label), strings.ToLower(prefix))
}
