package feature

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type fakeCompletion struct {
	labels []string
	err    error
	panics bool
}

func (f *fakeCompletion) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	items := make([]protocol.CompletionItem, len(f.labels))
	for i, label := range f.labels {
		items[i] = protocol.CompletionItem{Label: label}
	}
	return items, nil
}

type fakeHover struct {
	value *protocol.Hover
}

func (f *fakeHover) Hover(ctx context.Context, req Request) (*protocol.Hover, error) {
	return f.value, nil
}

type fakeDefinition struct {
	locations []protocol.Location
}

func (f *fakeDefinition) Definition(ctx context.Context, req Request) ([]protocol.Location, error) {
	return f.locations, nil
}

func labels(items []protocol.CompletionItem) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Label
	}
	return result
}

func TestCompletionMergeRespectsCapAndProviderOrder(t *testing.T) {
	a := &Aggregator{
		Completion: []CompletionProvider{
			&fakeCompletion{labels: []string{"a", "b"}},
			&fakeCompletion{labels: []string{"c"}},
		},
		CompletionLimit: 2,
	}

	items := a.CompleteAll(context.Background(), Request{})
	assert.Equal(t, []string{"a", "b"}, labels(items))
}

func TestCompletionMergePrefersPreselectedItems(t *testing.T) {
	preselect := true
	first := &fakeCompletion{labels: []string{"zz"}}
	a := &Aggregator{
		Completion: []CompletionProvider{first},
	}
	a.Completion = append(a.Completion, completionFunc(func(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
		return []protocol.CompletionItem{{Label: "best", Preselect: &preselect}}, nil
	}))

	items := a.CompleteAll(context.Background(), Request{})
	require.NotEmpty(t, items)
	assert.Equal(t, "best", items[0].Label)
}

type completionFunc func(ctx context.Context, req Request) ([]protocol.CompletionItem, error)

func (f completionFunc) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	return f(ctx, req)
}

func TestCompletionMergeAssignsStableSortText(t *testing.T) {
	a := &Aggregator{
		Completion: []CompletionProvider{
			&fakeCompletion{labels: []string{"beta", "alpha"}},
		},
	}

	items := a.CompleteAll(context.Background(), Request{})
	require.Len(t, items, 2)
	require.NotNil(t, items[0].SortText)
	require.NotNil(t, items[1].SortText)
	assert.Less(t, *items[0].SortText, *items[1].SortText)
}

func TestProviderFailureIsIsolated(t *testing.T) {
	a := &Aggregator{
		Completion: []CompletionProvider{
			&fakeCompletion{err: errors.New("backend down")},
			&fakeCompletion{labels: []string{"ok"}},
		},
	}

	items := a.CompleteAll(context.Background(), Request{})
	assert.Equal(t, []string{"ok"}, labels(items))
}

func TestProviderPanicIsIsolated(t *testing.T) {
	a := &Aggregator{
		Completion: []CompletionProvider{
			&fakeCompletion{panics: true},
			&fakeCompletion{labels: []string{"survivor"}},
		},
	}

	items := a.CompleteAll(context.Background(), Request{})
	assert.Equal(t, []string{"survivor"}, labels(items))
}

func TestHoverFirstMatchWins(t *testing.T) {
	second := &protocol.Hover{Contents: "from-second"}
	a := &Aggregator{
		Hover: []HoverProvider{
			&fakeHover{value: nil},
			&fakeHover{value: second},
			&fakeHover{value: &protocol.Hover{Contents: "from-third"}},
		},
	}

	hover := a.HoverFirst(context.Background(), Request{})
	require.NotNil(t, hover)
	assert.Equal(t, "from-second", hover.Contents)
}

func TestDefinitionFirstMatchWins(t *testing.T) {
	want := []protocol.Location{{URI: "file:///b.tex"}}
	a := &Aggregator{
		Definition: []DefinitionProvider{
			&fakeDefinition{},
			&fakeDefinition{locations: want},
		},
	}

	assert.Equal(t, want, a.DefinitionFirst(context.Background(), Request{}))
}

func TestEmptyAggregatorReturnsEmptyResults(t *testing.T) {
	a := &Aggregator{}
	ctx := context.Background()

	assert.Empty(t, a.CompleteAll(ctx, Request{}))
	assert.Empty(t, a.DiagnoseAll(ctx, Request{}))
	assert.Nil(t, a.HoverFirst(ctx, Request{}))
	assert.Nil(t, a.RenameFirst(ctx, RenameRequest{}))
}
