package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formintake/pkg/logger"
	"github.com/goliatone/go-formintake/pkg/schema"
)

// Loader reads catalog sources from disk, an embedded fs.FS or a remote
// catalog endpoint. Remote reads are opt-in and size capped.
type Loader struct {
	files    fs.FS
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options schema.LoaderOptions) *Loader {
	l := &Loader{
		files:    options.FileSystem,
		timeout:  options.RequestTimeout,
		maxBytes: options.MaxDocumentBytes,
	}
	if l.maxBytes <= 0 {
		l.maxBytes = DefaultMaxDocumentBytes
	}

	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if l.timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = l.timeout
		}
		l.client = &clone
	case options.AllowHTTPFallback:
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load reads one catalog source and wraps it as a Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}
	log := logger.FromContext(ctx).With("source_kind", string(src.Kind()), "source", src.Location())

	start := time.Now()
	data, err := l.read(ctx, src)
	if err != nil {
		log.Warn("Catalog source unreadable", "error", err)
		return schema.Document{}, fmt.Errorf("loader: %s %q: %w", src.Kind(), src.Location(), err)
	}
	log.Debug("Catalog source read", "bytes", len(data), "elapsed", time.Since(start))

	return schema.NewDocument(src, data)
}

func (l *Loader) read(ctx context.Context, src schema.Source) ([]byte, error) {
	switch src.Kind() {
	case schema.SourceKindFile:
		return loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		return loadFromFS(ctx, l.files, src.Location())
	case schema.SourceKindURL:
		if l.client == nil {
			return nil, errors.New("http support disabled")
		}
		return loadHTTP(ctx, l.client, src.Location(), l.timeout, l.maxBytes)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind())
	}
}
