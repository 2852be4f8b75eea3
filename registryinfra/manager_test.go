package registryinfra

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-clib/clib/internal/dcontext"
)

type fakeRegistry struct {
	records   []Record
	failFetch bool
}

func (f *fakeRegistry) Fetch(ctx context.Context) error {
	if f.failFetch {
		return errFakeFetch
	}

	return nil
}

func (f *fakeRegistry) Iterate() []Record { return f.records }

var errFakeFetch = errors.New("fake fetch failure")

func TestManagerPrecedence(t *testing.T) {
	priv := &fakeRegistry{records: []Record{{ID: "acme/widget", Href: "https://private.example/acme/widget"}}}
	def := &fakeRegistry{records: []Record{{ID: "acme/widget", Href: "https://default.example/acme/widget"}}}

	m := &Manager{registries: []Registry{priv, def}}

	rec, ok := m.FindPackage(dcontext.Background(), "acme/widget")
	require.True(t, ok)
	require.Equal(t, "https://private.example/acme/widget", rec.Href)
}

func TestManagerFallsThroughOnFetchFailure(t *testing.T) {
	broken := &fakeRegistry{failFetch: true}
	def := &fakeRegistry{records: []Record{{ID: "acme/widget", Href: "https://default.example/acme/widget"}}}

	m := &Manager{registries: []Registry{broken, def}}

	rec, ok := m.FindPackage(dcontext.Background(), "acme/widget")
	require.True(t, ok)
	require.Equal(t, "https://default.example/acme/widget", rec.Href)
}

func TestManagerNotFound(t *testing.T) {
	m := &Manager{registries: []Registry{&fakeRegistry{}}}

	_, ok := m.FindPackage(dcontext.Background(), "acme/missing")
	require.False(t, ok)
}

func TestManagerSearchFiltersAcrossRegistries(t *testing.T) {
	a := &fakeRegistry{records: []Record{
		{ID: "acme/widget", Description: "a small widget"},
		{ID: "acme/gizmo", Description: "a gadget"},
	}}
	b := &fakeRegistry{records: []Record{
		{ID: "other/widgetry", Description: "unrelated"},
	}}

	m := &Manager{registries: []Registry{a, b}}

	matches := m.Search(dcontext.Background(), []string{"widget"})
	require.Len(t, matches, 2)
}

func TestManagerSearchEmptyQueryReturnsEverything(t *testing.T) {
	a := &fakeRegistry{records: []Record{{ID: "acme/widget"}, {ID: "acme/gizmo"}}}

	m := &Manager{registries: []Registry{a}}

	matches := m.Search(dcontext.Background(), nil)
	require.Len(t, matches, 2)
}

func TestManagerSearchSkipsBrokenRegistry(t *testing.T) {
	broken := &fakeRegistry{failFetch: true}
	ok := &fakeRegistry{records: []Record{{ID: "acme/widget"}}}

	m := &Manager{registries: []Registry{broken, ok}}

	matches := m.Search(dcontext.Background(), []string{"widget"})
	require.Len(t, matches, 1)
}
