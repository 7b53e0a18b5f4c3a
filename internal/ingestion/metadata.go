package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes where a batch of snippets came from
type Metadata struct {
	Source       string `json:"source,omitempty"`   // File path or URL
	Timestamp    string `json:"timestamp"`          // RFC3339 format
	Hash         string `json:"hash"`               // SHA256 hex digest of the raw input
	Engine       string `json:"engine,omitempty"`   // Detected search engine for HTML input
	Format       string `json:"format"`             // json or html
	SnippetCount int    `json:"snippet_count"`      // Number of snippets extracted
	Rendered     bool   `json:"rendered,omitempty"` // Whether a headless browser produced the HTML
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(raw []byte, source, format string) *Metadata {
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(raw),
		Format:    format,
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
