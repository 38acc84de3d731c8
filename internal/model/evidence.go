package model

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// EvidenceItem represents one piece of retrieved source material with a stance
// toward the claim. Immutable once produced by a source adapter.
type EvidenceItem struct {
	SourceID    string     `json:"source_id"`              // Adapter-scoped identifier (e.g., "wikipedia")
	SourceName  string     `json:"source_name"`            // Human-readable source name
	Kind        SourceKind `json:"kind"`                   // Provider class
	URL         string     `json:"url,omitempty"`          // Link to the source material
	Title       string     `json:"title,omitempty"`        // Title of the source document
	Snippet     string     `json:"snippet"`                // Relevant excerpt
	PublishedAt *time.Time `json:"published_at,omitempty"` // Publication time, if known
	Stance      Stance     `json:"stance"`                 // Stance toward the claim
	Weight      float64    `json:"source_weight"`          // Evidentiary reliability in [0,1]
}

// SourceKind classifies the provider class of an evidence item
type SourceKind string

const (
	KindEncyclopedia SourceKind = "encyclopedia"
	KindNews         SourceKind = "news"
	KindFactCheck    SourceKind = "factcheck_registry"
	KindWebSearch    SourceKind = "web_search"
)

// Stance is the relation of a piece of evidence to the claim
type Stance string

const (
	StanceSupports Stance = "supports"
	StanceRefutes  Stance = "refutes"
	StanceNeutral  Stance = "neutral"
	StanceUnknown  Stance = "unknown"
)

// DedupeKey returns the key under which this item is deduplicated:
// the normalized URL, or a hash of the normalized snippet when no URL exists.
func (e EvidenceItem) DedupeKey() string {
	if e.URL != "" {
		return NormalizeURL(e.URL)
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.Join(strings.Fields(e.Snippet), " "))))
	return "snippet:" + hex.EncodeToString(sum[:8])
}

// EvidenceSet is an ordered sequence of deduplicated evidence items.
// Invariant: no two items share a DedupeKey.
type EvidenceSet []EvidenceItem

// URLs returns the distinct URLs present in the set, in order.
func (s EvidenceSet) URLs() []string {
	urls := make([]string, 0, len(s))
	for _, item := range s {
		if item.URL != "" {
			urls = append(urls, item.URL)
		}
	}
	return urls
}

// TotalWeight sums the source weights of all items.
func (s EvidenceSet) TotalWeight() float64 {
	total := 0.0
	for _, item := range s {
		total += item.Weight
	}
	return total
}

// Conclusive reports whether the set carries any supporting or refuting evidence.
// A set that is empty or entirely neutral/unknown cannot ground a verdict.
func (s EvidenceSet) Conclusive() bool {
	for _, item := range s {
		if item.Stance == StanceSupports || item.Stance == StanceRefutes {
			return true
		}
	}
	return false
}

// NormalizeURL canonicalizes a URL for deduplication: lowercased scheme/host,
// "www." stripped, trailing slash and fragment dropped.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimSuffix(u.Path, "/")
	normalized := host + path
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	return normalized
}
