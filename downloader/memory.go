package downloader

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Caches downloaded files in memory
type MemoryDownloader struct {
	mutex sync.Mutex
	cache map[string]downloaderCacheEntry

	TimeNow func() time.Time
	Logger  *slog.Logger
}

func NewMemoryDownloader() *MemoryDownloader {
	return &MemoryDownloader{
		cache:   make(map[string]downloaderCacheEntry),
		TimeNow: time.Now,
		Logger:  slog.Default().With(slog.String("component", "downloader")),
	}
}

type downloaderCacheEntry struct {
	data       []byte
	expiration time.Time
}

func (d *MemoryDownloader) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		d.mutex.Lock()
		entry, ok := d.cache[url]
		d.mutex.Unlock()

		if ok && entry.expiration.After(d.TimeNow()) {
			d.Logger.Debug("cache hit", slog.String("url", url))
			return entry.data, nil
		}
	}

	start := d.TimeNow()
	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		d.Logger.Debug("download failed", slog.String("url", url), slog.Any("error", err))
		return nil, err
	}
	d.Logger.Debug(
		"downloaded",
		slog.String("url", url),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", d.TimeNow().Sub(start)),
	)

	if options.Cache {
		d.mutex.Lock()
		d.cache[url] = downloaderCacheEntry{
			data:       body,
			expiration: d.TimeNow().Add(options.CacheTTL),
		}
		d.mutex.Unlock()
	}

	return body, nil
}
