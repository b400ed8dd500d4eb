package links

import (
	"context"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/document"
)

// Provider produces the links snapshot for one document version.
type Provider interface {
	GetLinks(ctx context.Context, doc *document.Document) (*Snapshot, error)
}

type cacheKey struct {
	uri     string
	version protocol.Integer
}

// CachingProvider memoizes the latest snapshot of each document, keyed by
// URI and version. A new document version evicts the stale entry.
type CachingProvider struct {
	inner Provider

	mu    sync.Mutex
	cache map[string]cachedSnapshot
}

type cachedSnapshot struct {
	key  cacheKey
	snap *Snapshot
}

func NewCachingProvider(inner Provider) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		cache: make(map[string]cachedSnapshot),
	}
}

func (p *CachingProvider) GetLinks(ctx context.Context, doc *document.Document) (*Snapshot, error) {
	key := cacheKey{uri: doc.URI(), version: doc.Version()}

	p.mu.Lock()
	entry, ok := p.cache[key.uri]
	p.mu.Unlock()
	if ok && entry.key == key {
		return entry.snap, nil
	}

	snap, err := p.inner.GetLinks(ctx, doc)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key.uri] = cachedSnapshot{key: key, snap: snap}
	p.mu.Unlock()
	return snap, nil
}

// Forget drops any cached snapshot for uri, e.g. when the document closes.
func (p *CachingProvider) Forget(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, uri)
}
