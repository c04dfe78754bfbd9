package encoder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"vod-egress/internal/logging"
)

// RelayClient streams packaged segment bytes back to the egress server's
// pipe relay instead of durable storage. The server answers 202 once the
// whole stream has been routed into the waiting response.
type RelayClient struct {
	url    string
	client *http.Client
}

// NewRelayClient creates a client for one relay output URL
// (http://pod/pipe/{handle}).
func NewRelayClient(url string) *RelayClient {
	return &RelayClient{url: url, client: &http.Client{}}
}

// Send posts the stream as a chunked request body.
func (c *RelayClient) Send(ctx context.Context, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return fmt.Errorf("building relay request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to relay: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("relay rejected stream with status %d", resp.StatusCode)
	}
	logging.Info("relay stream to %s accepted", c.url)
	return nil
}

// SendFile streams one local artifact, typically the packager's output
// pipe, to the relay.
func (c *RelayClient) SendFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	return c.Send(ctx, file)
}
