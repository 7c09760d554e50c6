package ports

import "context"

// AuthContext carries the credentials for external lookups. A zero value
// means anonymous access.
type AuthContext struct {
	Token string
}

// PurlLookup is the external best-effort capability mapping conda package
// names to their canonical language-ecosystem project identifiers.
//
// The result is partial: names absent from the returned map simply have no
// known mapping, which is not an error. Implementations are not required to
// deduplicate concurrent lookups; the reconciler memoizes per resolution
// pass.
//
//go:generate go run go.uber.org/mock/mockgen -source=purl_lookup.go -destination=mocks/mock_purl_lookup.go -package=mocks
type PurlLookup interface {
	Lookup(ctx context.Context, names []string, auth AuthContext) (map[string]string, error)
}
