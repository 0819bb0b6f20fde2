package lspproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/graphql-lsp-router/internal/source"
)

func TestDocumentStoreOpenAndGet(t *testing.T) {
	store := NewDocumentStore()
	store.Open("file:///ws/app.tsx", "typescriptreact", 1, "const q = gql`{a}`;")

	doc, ok := store.Get("file:///ws/app.tsx")
	require.True(t, ok)
	assert.Equal(t, "typescriptreact", doc.LanguageID)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "const q = gql`{a}`;", doc.Text)
	assert.Equal(t, 1, store.Len())
}

func TestDocumentStoreLanguageFallback(t *testing.T) {
	store := NewDocumentStore()
	store.Open("file:///ws/Query.re", "", 1, "")

	doc, ok := store.Get("file:///ws/Query.re")
	require.True(t, ok)
	assert.Equal(t, source.LangReason, doc.LanguageID)
}

func TestDocumentStoreGetReturnsCopy(t *testing.T) {
	store := NewDocumentStore()
	store.Open("file:///a.graphql", "graphql", 1, "query { a }")

	doc, ok := store.Get("file:///a.graphql")
	require.True(t, ok)
	doc.Text = "mutated"

	again, ok := store.Get("file:///a.graphql")
	require.True(t, ok)
	assert.Equal(t, "query { a }", again.Text)
}

func TestDocumentStoreChange(t *testing.T) {
	store := NewDocumentStore()
	store.Open("file:///a.graphql", "graphql", 1, "query { a }")
	store.Change("file:///a.graphql", 2, "query { b }")

	doc, ok := store.Get("file:///a.graphql")
	require.True(t, ok)
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, "query { b }", doc.Text)
	assert.Equal(t, "graphql", doc.LanguageID)
}

func TestDocumentStoreChangeOpensImplicitly(t *testing.T) {
	store := NewDocumentStore()
	store.Change("file:///late/show.ts", 4, "const q = 1;")

	doc, ok := store.Get("file:///late/show.ts")
	require.True(t, ok)
	assert.Equal(t, source.LangTypeScript, doc.LanguageID)
	assert.Equal(t, 4, doc.Version)
	assert.Equal(t, "const q = 1;", doc.Text)
}

func TestDocumentStoreClose(t *testing.T) {
	store := NewDocumentStore()
	store.Open("file:///a.graphql", "graphql", 1, "")
	store.Close("file:///a.graphql")

	_, ok := store.Get("file:///a.graphql")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	// Closing twice is harmless.
	store.Close("file:///a.graphql")
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///home/dev/app.ts", "/home/dev/app.ts"},
		{"file:///with%20space/q.graphql", "/with space/q.graphql"},
		{"untitled:Untitled-1", "untitled:Untitled-1"},
		{"/already/a/path.res", "/already/a/path.res"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, uriToPath(tt.uri), "uri %q", tt.uri)
	}
}
