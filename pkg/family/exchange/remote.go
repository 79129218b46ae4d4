package exchange

import (
	"context"

	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/httputil"
)

// FetchDocument retrieves an exchange document from a remote instance's
// export endpoint.
func FetchDocument(ctx context.Context, client *httputil.Client, url string) (*Document, error) {
	var doc Document
	if err := client.GetJSON(ctx, url, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportRemote fetches a document from url and imports it into the store.
// Combine with Options.AsLinked and Options.TargetFamily to pull a remote
// family into an existing tree as one linked group.
func ImportRemote(ctx context.Context, st family.Store, client *httputil.Client, url string, opts Options) (*Bundle, error) {
	doc, err := FetchDocument(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return Import(ctx, st, doc, opts)
}
