// Package mapping implements the cross-ecosystem name reconciler: it maps
// conda package names to canonical language-ecosystem identifiers and
// amends solved records with package-url metadata.
package mapping

import (
	"context"
	"slices"
	"sync"

	"github.com/package-url/packageurl-go"
	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/zerr"
)

// Reconciler resolves conda package names through two mapping layers: a
// best-effort bulk lookup derived from the records being processed, and a
// compressed override table that always wins when it carries a name.
//
// Bulk lookups are memoized for the lifetime of the Reconciler, which is
// scoped to a single resolution pass and discarded at pass end; concurrent
// amendment batches never issue duplicate external lookups for the same
// name.
type Reconciler struct {
	lookup    ports.PurlLookup
	overrides map[string]string

	mu    sync.Mutex
	cache map[string]*lookupEntry
}

type lookupEntry struct {
	done chan struct{}
	id   string
	ok   bool
	err  error
}

// NewReconciler creates a Reconciler for one resolution pass. The override
// table may be nil.
func NewReconciler(lookup ports.PurlLookup, overrides map[string]string) *Reconciler {
	return &Reconciler{
		lookup:    lookup,
		overrides: overrides,
		cache:     make(map[string]*lookupEntry),
	}
}

// Amend resolves each record's name and appends one package-url entry built
// from the resolved identifier and the record's version. The override table
// is consulted first; the bulk layer only fills names the overrides do not
// carry. A lookup tried on the override table and then the bulk table, in
// that order, preserves override precedence on conflict. Records with no
// resolution in either layer are left unmodified; that is not an error.
//
// Amend is idempotent: a record already carrying the matching purl is not
// amended again.
func (r *Reconciler) Amend(ctx context.Context, records []domain.CondaRecord, auth ports.AuthContext) ([]domain.CondaRecord, error) {
	var unknown []string
	for _, record := range records {
		name := record.Name.String()
		if _, ok := r.overrides[name]; ok {
			continue
		}
		unknown = append(unknown, name)
	}

	bulk, err := r.memoizedLookup(ctx, unknown, auth)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CondaRecord, len(records))
	for i, record := range records {
		out[i] = record
		name := record.Name.String()

		id, ok := r.overrides[name]
		if !ok {
			id, ok = bulk[name]
		}
		if !ok {
			// Lookup miss: the record keeps its purl set as-is.
			continue
		}

		purl := packageurl.NewPackageURL(
			packageurl.TypePyPi, "", id, record.Version, nil, "",
		).ToString()
		if !record.HasPurl(purl) {
			out[i].Purls = append(slices.Clone(record.Purls), purl)
		}
	}

	return out, nil
}

// memoizedLookup returns the bulk-layer mapping for the given names,
// issuing at most one external lookup per name for the reconciler's
// lifetime. Names another batch is already fetching are waited on rather
// than fetched again.
func (r *Reconciler) memoizedLookup(ctx context.Context, names []string, auth ports.AuthContext) (map[string]string, error) {
	entries := make(map[string]*lookupEntry, len(names))
	var claimed []string

	r.mu.Lock()
	for _, name := range names {
		if entry, ok := r.cache[name]; ok {
			entries[name] = entry
			continue
		}
		entry := &lookupEntry{done: make(chan struct{})}
		r.cache[name] = entry
		entries[name] = entry
		claimed = append(claimed, name)
	}
	r.mu.Unlock()

	if len(claimed) > 0 {
		result, lookupErr := r.lookup.Lookup(ctx, claimed, auth)

		r.mu.Lock()
		for _, name := range claimed {
			entry := entries[name]
			if lookupErr != nil {
				entry.err = zerr.Wrap(lookupErr, domain.ErrLookupFailed.Error())
				// Failed claims are dropped from the cache so the caller's
				// next resolution pass may try again; the engine itself
				// never retries automatically.
				delete(r.cache, name)
			} else {
				entry.id, entry.ok = result[name]
			}
			close(entry.done)
		}
		r.mu.Unlock()
	}

	out := make(map[string]string, len(names))
	for _, name := range names {
		entry := entries[name]
		select {
		case <-entry.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if entry.err != nil {
			return nil, entry.err
		}
		if entry.ok {
			out[name] = entry.id
		}
	}

	return out, nil
}
