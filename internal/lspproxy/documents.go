package lspproxy

import (
	"net/url"
	"strings"
	"sync"

	"go.trai.ch/graphql-lsp-router/internal/source"
)

// Document is the proxy's mirror of one open editor document.
type Document struct {
	URI        string
	LanguageID string
	Version    int
	Text       string
}

// DocumentStore tracks the full text of every document the editor has open.
// The proxy forces full sync on the wire, so each change event replaces the
// mirrored text wholesale.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open registers a document. An empty languageId falls back to the file
// extension.
func (s *DocumentStore) Open(uri, languageID string, version int, text string) {
	if languageID == "" {
		languageID = source.LanguageForPath(uriToPath(uri))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &Document{URI: uri, LanguageID: languageID, Version: version, Text: text}
}

// Change replaces the text of a tracked document. A change for an unknown
// URI opens it implicitly, guessing the language from the path.
func (s *DocumentStore) Change(uri string, version int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		s.docs[uri] = &Document{
			URI:        uri,
			LanguageID: source.LanguageForPath(uriToPath(uri)),
			Version:    version,
			Text:       text,
		}
		return
	}
	doc.Version = version
	doc.Text = text
}

// Close forgets a document.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Get returns a copy of the tracked document.
func (s *DocumentStore) Get(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Len reports how many documents are currently tracked.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// uriToPath converts a file:// URI into a filesystem path. Anything that
// does not parse as a file URI comes back unchanged.
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return u.Path
}
