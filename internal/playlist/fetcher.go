package playlist

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 10 * time.Second

// Fetcher downloads playlist documents and resolves them to a stream URL.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher creates a Fetcher that identifies itself as userAgent.
func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(requestTimeout).
			SetHeader("User-Agent", userAgent),
	}
}

// Resolve fetches the playlist at url and returns its first stream URL.
// Fetch failures are reported as no result, the same as an empty playlist.
func (f *Fetcher) Resolve(ctx context.Context, url string) (string, bool) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Failed to fetch playlist")
		return "", false
	}

	body := resp.RawBody()
	if body == nil {
		return "", false
	}
	defer body.Close()

	if !resp.IsSuccess() {
		log.Debug().Str("url", url).Msgf("Playlist returned status %d: %s", resp.StatusCode(), resp.Status())
		return "", false
	}

	stream, ok := ExtractFirstURLFromReader(body)
	if !ok {
		log.Debug().Str("url", url).Msg("No stream found in playlist")
		return "", false
	}

	log.Debug().Str("url", url).Str("stream", stream).Msg("Resolved playlist")
	return stream, true
}
