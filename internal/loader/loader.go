// Package loader fetches form documents from files, fs.FS trees, or HTTP
// endpoints. Construction helpers live in the top-level formflow package.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Loader implements schema.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options schema.LoaderOptions) schema.Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if !l.allowHTTP {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("loader: unsupported source kind")
	}
	if err != nil {
		return schema.Document{}, err
	}

	return schema.NewDocument(src, data)
}
