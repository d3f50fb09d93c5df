package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rajasatyajit/StatusAggregator/internal/models"
	"github.com/rajasatyajit/StatusAggregator/internal/store"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type response struct {
	data string
	err  error
}

// fakeFetcher serves canned payloads by URL
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]response
	calls     map[string]int
	gate      chan struct{} // when set, Fetch blocks until closed
	entered   chan struct{} // receives once per Fetch call when set
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: map[string]response{}, calls: map[string]int{}}
}

func (f *fakeFetcher) set(url, data string) { f.responses[url] = response{data: data} }

func (f *fakeFetcher) fail(url string) {
	f.responses[url] = response{err: errors.New("connection refused")}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	r, ok := f.responses[url]
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("no response for %s", url)
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.data), nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type rssItem struct {
	title, body string
	at          time.Time
}

func rssFeed(items ...rssItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Status</title>`)
	for _, it := range items {
		fmt.Fprintf(&b, "<item><title>%s</title><description><![CDATA[%s]]></description><pubDate>%s</pubDate></item>",
			it.title, it.body, it.at.Format(time.RFC1123Z))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func indicatorJSON(indicator, description string) string {
	return fmt.Sprintf(`{"status":{"indicator":%q,"description":%q}}`, indicator, description)
}

// fakeCatalog lists services in the given order
type fakeCatalog struct {
	services []models.Service
}

func (c fakeCatalog) Sources() []models.Service {
	var out []models.Service
	for _, s := range c.services {
		if s.HasSource() {
			out = append(out, s)
		}
	}
	return out
}

func (c fakeCatalog) Name(slug string) string {
	for _, s := range c.services {
		if s.Slug == slug {
			return s.Name
		}
	}
	return slug
}

type sentNotification struct{ subject, message string }

type captureNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *captureNotifier) Notify(ctx context.Context, subject, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{subject, message})
	return n.err
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type capturePublisher struct {
	mu      sync.Mutex
	changes []models.StatusChange
}

func (p *capturePublisher) Publish(ctx context.Context, c models.StatusChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

// flakyStore fails writes for the listed slugs
type flakyStore struct {
	*store.InMemoryStore
	failFor map[string]bool
}

func (s *flakyStore) UpsertStatus(ctx context.Context, row models.StatusRow) error {
	if s.failFor[row.ServiceSlug] {
		return errors.New("write failed")
	}
	return s.InMemoryStore.UpsertStatus(ctx, row)
}

func seed(st store.Store, statuses map[string]models.Status) {
	for slug, status := range statuses {
		_ = st.UpsertStatus(context.Background(), models.StatusRow{
			ServiceSlug: slug,
			Status:      status,
			UpdatedAt:   testNow.Add(-time.Hour),
		})
	}
}
