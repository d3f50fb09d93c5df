package models

import "strings"

// SourceKind identifies how a service publishes its status
type SourceKind string

const (
	SourceRSS  SourceKind = "rss"
	SourceAtom SourceKind = "atom"
	SourceJSON SourceKind = "json"
	SourceNone SourceKind = "none"
)

// FAQEntry is one question/answer pair shown on a service page
type FAQEntry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Service is a catalog entry describing a monitored third-party service
type Service struct {
	Slug            string     `json:"slug" yaml:"slug"`
	Name            string     `json:"name" yaml:"name"`
	Kind            SourceKind `json:"kind" yaml:"kind"`
	FeedURL         string     `json:"feed_url,omitempty" yaml:"feed_url,omitempty"`
	StatusAPIURL    string     `json:"status_api_url,omitempty" yaml:"status_api_url,omitempty"`
	IncidentsAPIURL string     `json:"incidents_api_url,omitempty" yaml:"incidents_api_url,omitempty"`
	StatusPageURL   string     `json:"status_page_url,omitempty" yaml:"status_page_url,omitempty"`
	CommunityURL    string     `json:"community_url,omitempty" yaml:"community_url,omitempty"`
	Tags            []string   `json:"tags" yaml:"tags"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty"`
	FAQ             []FAQEntry `json:"faq,omitempty" yaml:"faq,omitempty"`
	Notify          bool       `json:"notify" yaml:"notify"`
}

// HasSource reports whether the service has a machine-readable status source
func (s Service) HasSource() bool {
	return s.Kind == SourceRSS || s.Kind == SourceAtom || s.Kind == SourceJSON
}

// HasTag reports whether the service carries the given tag (case-insensitive)
func (s Service) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Matches reports whether the free-text query matches name, slug or tags
func (s Service) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(s.Slug, q) {
		return true
	}
	for _, t := range s.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
