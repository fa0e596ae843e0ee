package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// BatchMetadata describes a credit batch: the project it originates from,
// its vintage year and the registry serial range backing the on-chain
// position. The document is stored as JSON on IPFS and referenced from the
// token URI.
type BatchMetadata struct {
	ProjectName string `json:"projectName"`
	ProjectID   string `json:"projectId"`
	Registry    string `json:"registry"`
	Standard    string `json:"standard"`
	Vintage     int    `json:"vintage"`
	Country     string `json:"country"`
	Methodology string `json:"methodology"`
	SerialStart string `json:"serialStart"`
	SerialEnd   string `json:"serialEnd"`
	URI         string `json:"-"`
}

// BatchMetadata fetches and decodes the metadata document at the given
// ipfs:// URI or bare CID.
func (s *Client) BatchMetadata(ctx context.Context, uri string) (*BatchMetadata, error) {
	raw, err := s.ReadFile(ctx, uri)
	if err != nil {
		return nil, err
	}
	var meta BatchMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding batch metadata %s: %w", uri, err)
	}
	meta.URI = uri
	return &meta, nil
}

// PublishBatchMetadata stores the metadata document on IPFS and returns
// its ipfs:// URI.
func (s *Client) PublishBatchMetadata(ctx context.Context, meta *BatchMetadata) (string, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encoding batch metadata: %w", err)
	}
	return s.UploadJSON(ctx, raw)
}

func decodeJSONBody(r io.Reader, out interface{}) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
