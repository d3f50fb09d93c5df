// Package catalog holds the list of monitored services and their status
// sources. A default catalog is embedded; CATALOG_PATH replaces it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
	"github.com/rajasatyajit/StatusAggregator/pkg/utils"
)

//go:embed services.yaml
var defaultCatalog []byte

type catalogFile struct {
	Services []models.Service `yaml:"services"`
}

// Catalog is an immutable, name-ordered set of services
type Catalog struct {
	services []models.Service
	bySlug   map[string]int
}

// Load reads the catalog from path, or the embedded default when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return New(f.Services)
}

// New validates services and builds a catalog from them
func New(services []models.Service) (*Catalog, error) {
	c := &Catalog{
		services: make([]models.Service, 0, len(services)),
		bySlug:   make(map[string]int, len(services)),
	}

	for i, s := range services {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, apperrors.ValidationError{Field: fmt.Sprintf("services[%d].name", i), Message: "is required"}
		}
		if s.Slug == "" {
			s.Slug = utils.Slugify(s.Name)
		}
		if s.Kind == "" {
			s.Kind = models.SourceNone
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		if err := validate(s); err != nil {
			return nil, err
		}
		if _, dup := c.bySlug[s.Slug]; dup {
			return nil, apperrors.ValidationError{Field: "slug", Message: fmt.Sprintf("duplicate slug %q", s.Slug)}
		}
		c.bySlug[s.Slug] = len(c.services)
		c.services = append(c.services, s)
	}

	sort.SliceStable(c.services, func(i, j int) bool {
		return strings.ToLower(c.services[i].Name) < strings.ToLower(c.services[j].Name)
	})
	for i, s := range c.services {
		c.bySlug[s.Slug] = i
	}
	return c, nil
}

func validate(s models.Service) error {
	field := "services[" + s.Slug + "]"
	switch s.Kind {
	case models.SourceRSS, models.SourceAtom:
		if s.FeedURL == "" {
			return apperrors.ValidationError{Field: field + ".feed_url", Message: "is required for kind " + string(s.Kind)}
		}
	case models.SourceJSON:
		if s.StatusAPIURL == "" {
			return apperrors.ValidationError{Field: field + ".status_api_url", Message: "is required for kind json"}
		}
	case models.SourceNone:
	default:
		return apperrors.ValidationError{Field: field + ".kind", Message: fmt.Sprintf("unknown kind %q", s.Kind)}
	}
	return nil
}

// Get looks up a service by slug
func (c *Catalog) Get(slug string) (models.Service, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return models.Service{}, false
	}
	return c.services[i], true
}

// Name returns the display name for slug, or the slug itself when unknown
func (c *Catalog) Name(slug string) string {
	if s, ok := c.Get(slug); ok {
		return s.Name
	}
	return slug
}

// All returns every service ordered by name
func (c *Catalog) All() []models.Service {
	out := make([]models.Service, len(c.services))
	copy(out, c.services)
	return out
}

// Sources returns the services that have a status source
func (c *Catalog) Sources() []models.Service {
	var out []models.Service
	for _, s := range c.services {
		if s.HasSource() {
			out = append(out, s)
		}
	}
	return out
}

// Filter returns services matching the free-text query and, when set, the tag
func (c *Catalog) Filter(q, tag string) []models.Service {
	out := []models.Service{}
	for _, s := range c.services {
		if !s.Matches(q) {
			continue
		}
		if tag != "" && !s.HasTag(tag) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Tags returns the distinct tags in use, sorted
func (c *Catalog) Tags() []string {
	seen := map[string]struct{}{}
	for _, s := range c.services {
		for _, t := range s.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Len() int { return len(c.services) }
