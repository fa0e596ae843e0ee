// Package storage retrieves and publishes credit-batch metadata on IPFS.
// Content is read through a Kubo HTTP API client when one is configured,
// with a plain HTTP gateway as fallback.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
const IpfsPrefix = "ipfs://"

const fetchTimeout = 60 * time.Second

// Fetcher fetches content addressed by CID.
type Fetcher interface {
	Fetch(ctx context.Context, hash string) ([]byte, error)
}

// Uploader stores a blob and returns its ipfs:// URI.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// Client reads and writes content-addressed blobs. Reads go through the
// Kubo API node when configured and fall back to the HTTP gateway.
type Client struct {
	api        *rpc.HttpApi
	gatewayURL string

	nodeFetcher    Fetcher
	gatewayFetcher Fetcher
}

// NewStorage constructs a storage client. ipfsURL points at a Kubo HTTP
// API node and may be empty, in which case all reads use the gateway and
// uploads are unavailable.
func NewStorage(ipfsURL, gatewayURL string) *Client {
	s := &Client{gatewayURL: strings.TrimSuffix(gatewayURL, "/")}
	if ipfsURL != "" {
		api, err := NewIPFSClient(ipfsURL)
		if err != nil {
			zap.L().Error("ipfs node unavailable, falling back to gateway",
				zap.String("url", ipfsURL), zap.Error(err))
		} else {
			s.api = api
			s.nodeFetcher = &nodeFetcher{api: api}
		}
	}
	s.gatewayFetcher = &gatewayFetcher{baseURL: s.gatewayURL}
	return s
}

// ReadFile fetches the content identified by hash, which may carry the
// ipfs:// prefix. The Kubo node is tried first; on failure the gateway
// serves the same CID.
func (s *Client) ReadFile(ctx context.Context, hash string) ([]byte, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
	}

	hash = formatHash(hash)
	if _, err := cid.Parse(hash); err != nil {
		return nil, fmt.Errorf("invalid cid %q: %w", hash, err)
	}

	if s.nodeFetcher != nil {
		content, err := s.nodeFetcher.Fetch(ctx, hash)
		if err == nil {
			return content, nil
		}
		zap.L().Warn("ipfs node read failed, trying gateway",
			zap.String("hash", hash), zap.Error(err))
	}
	if s.gatewayURL == "" {
		return nil, fmt.Errorf("no ipfs gateway configured for %s", hash)
	}
	return s.gatewayFetcher.Fetch(ctx, hash)
}

// UploadJSON stores the blob on the Kubo node and returns its ipfs:// URI.
// Requires a configured node; the public gateway is read-only.
func (s *Client) UploadJSON(ctx context.Context, data []byte) (string, error) {
	if s.nodeFetcher == nil {
		return "", fmt.Errorf("ipfs node not configured, cannot upload")
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
	}
	uploader, ok := s.nodeFetcher.(Uploader)
	if !ok {
		return "", fmt.Errorf("configured ipfs backend does not support uploads")
	}
	return uploader.Upload(ctx, data)
}

// nodeFetcher reads and writes blobs through a Kubo HTTP API node.
type nodeFetcher struct {
	api *rpc.HttpApi
}

func (f *nodeFetcher) Fetch(ctx context.Context, hash string) ([]byte, error) {
	resp, err := f.api.Request("cat", hash).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", hash, err)
	}
	defer func() {
		if err := resp.Close(); err != nil {
			zap.L().Error("error closing ipfs response", zap.String("hash", hash), zap.Error(err))
		}
	}()
	if resp.Error != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", hash, resp.Error)
	}
	content, err := io.ReadAll(resp.Output)
	if err != nil {
		return nil, fmt.Errorf("reading ipfs content %s: %w", hash, err)
	}
	return content, nil
}

func (f *nodeFetcher) Upload(ctx context.Context, data []byte) (string, error) {
	req := f.api.Request("add")
	req.Body(strings.NewReader(string(data)))
	resp, err := req.Send(ctx)
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	defer func() {
		if err := resp.Close(); err != nil {
			zap.L().Error("error closing ipfs response", zap.Error(err))
		}
	}()
	if resp.Error != nil {
		return "", fmt.Errorf("ipfs add: %w", resp.Error)
	}
	var added struct {
		Hash string `json:"Hash"`
	}
	if err := decodeJSONBody(resp.Output, &added); err != nil {
		return "", fmt.Errorf("parsing ipfs add response: %w", err)
	}
	zap.L().Debug("uploaded to ipfs", zap.String("hash", added.Hash))
	return IpfsPrefix + added.Hash, nil
}

// gatewayFetcher reads blobs over a public HTTP gateway (/ipfs/<cid>).
type gatewayFetcher struct {
	baseURL string
}

func (f *gatewayFetcher) Fetch(ctx context.Context, hash string) ([]byte, error) {
	url := f.baseURL + "/ipfs/" + hash
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway fetch %s: %w", hash, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Error("error closing gateway response", zap.Error(err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway fetch %s: unexpected status %s", hash, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url.
func NewIPFSClient(url string) (*rpc.HttpApi, error) {
	httpClient := http.Client{
		Timeout: 5 * time.Second,
	}
	return rpc.NewURLApiWithClient(url, &httpClient)
}

// formatHash strips the ipfs:// prefix and any characters that cannot
// appear in a CID, leaving a clean identifier for the backends.
func formatHash(hash string) string {
	hash = strings.Replace(hash, IpfsPrefix, "", -1)
	return removeSpecialCharacters(hash)
}

var cidCharacters = regexp.MustCompile("[^a-zA-Z0-9=]")

func removeSpecialCharacters(pString string) string {
	return cidCharacters.ReplaceAllString(pString, "")
}
