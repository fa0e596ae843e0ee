package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// wellKnownCID is a syntactically valid CIDv0.
const wellKnownCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestFormatHash(t *testing.T) {
	cases := map[string]string{
		"ipfs://" + wellKnownCID:  wellKnownCID,
		wellKnownCID:              wellKnownCID,
		wellKnownCID + "\n":       wellKnownCID,
		"ipfs://" + wellKnownCID + "?x=1": wellKnownCID + "x1",
	}
	for in, want := range cases {
		if got := formatHash(in); got != want {
			t.Fatalf("formatHash(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadFile_GatewayFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/"+wellKnownCID {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("credit batch payload"))
	}))
	defer server.Close()

	// No node configured: reads go straight to the gateway.
	s := NewStorage("", server.URL)

	content, err := s.ReadFile(context.Background(), "ipfs://"+wellKnownCID)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "credit batch payload" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestReadFile_RejectsInvalidCID(t *testing.T) {
	s := NewStorage("", "https://gateway.example")
	if _, err := s.ReadFile(context.Background(), "not-a-cid"); err == nil {
		t.Fatal("expected error for invalid CID")
	}
}

func TestReadFile_GatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewStorage("", server.URL)
	if _, err := s.ReadFile(context.Background(), wellKnownCID); err == nil {
		t.Fatal("expected error for gateway failure")
	}
}

func TestBatchMetadata(t *testing.T) {
	meta := BatchMetadata{
		ProjectName: "Katingan Peatland Restoration",
		ProjectID:   "VCS-1477",
		Registry:    "verra",
		Standard:    "VCS",
		Vintage:     2019,
		Country:     "ID",
		SerialStart: "10000-1",
		SerialEnd:   "10000-500",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(meta)
	}))
	defer server.Close()

	s := NewStorage("", server.URL)
	got, err := s.BatchMetadata(context.Background(), "ipfs://"+wellKnownCID)
	if err != nil {
		t.Fatalf("BatchMetadata: %v", err)
	}
	if got.ProjectID != "VCS-1477" || got.Vintage != 2019 {
		t.Fatalf("unexpected metadata: %+v", got)
	}
	if got.URI != "ipfs://"+wellKnownCID {
		t.Fatalf("unexpected URI: %s", got.URI)
	}
}

func TestUploadJSON_RequiresNode(t *testing.T) {
	s := NewStorage("", "https://gateway.example")
	if _, err := s.UploadJSON(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("expected error without a configured node")
	}
}
