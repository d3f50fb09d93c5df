package feed

import (
	"bytes"
	"strings"

	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

// ParseRSS reads an RSS 2.0 document. Items whose pubDate cannot be parsed
// are dropped.
func ParseRSS(data []byte) ([]models.RawIncident, error) {
	fp := rss.Parser{}
	doc, err := fp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.ParseError{Format: "rss", Err: err}
	}

	records := make([]models.RawIncident, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item == nil || item.PubDateParsed == nil {
			continue
		}
		body := item.Description
		if body == "" {
			body = item.Content
		}
		ts := item.PubDateParsed.UTC()
		records = append(records, models.RawIncident{
			Title:      strings.TrimSpace(item.Title),
			RawBody:    strings.TrimSpace(body),
			Timestamp:  ts,
			Updated:    ts,
			Components: ExtractComponents(body),
		})
	}
	return records, nil
}

// ParseAtom reads an Atom document. The summary is preferred over content;
// the timestamp is published, falling back to updated.
func ParseAtom(data []byte) ([]models.RawIncident, error) {
	fp := atom.Parser{}
	doc, err := fp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.ParseError{Format: "atom", Err: err}
	}

	records := make([]models.RawIncident, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		if entry == nil {
			continue
		}

		published := entry.PublishedParsed
		if published == nil {
			published = entry.UpdatedParsed
		}
		if published == nil {
			continue
		}
		updated := entry.UpdatedParsed
		if updated == nil {
			updated = published
		}

		body := entry.Summary
		if body == "" && entry.Content != nil {
			body = entry.Content.Value
		}

		records = append(records, models.RawIncident{
			Title:      strings.TrimSpace(entry.Title),
			RawBody:    strings.TrimSpace(body),
			Timestamp:  published.UTC(),
			Updated:    updated.UTC(),
			Components: ExtractComponents(body),
		})
	}
	return records, nil
}
