package scraper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/scraper/commonfloor"
	"github.com/CodePeacock/scraper/scraper/magicbricks"
	"github.com/CodePeacock/scraper/scraper/makaan"
	"github.com/CodePeacock/scraper/utils"
)

// Adapter turns one parsed listings page into records. Implementations are
// stateless: a page with no listing containers yields an empty slice.
type Adapter interface {
	Name() string
	Extract(doc *goquery.Document) []models.Listing
}

// Source describes one listings website.
type Source struct {
	ID      string
	URL     func(locality string) string
	Adapter Adapter
}

// Sentinel selectors that expand to every registered source.
var allSelectors = map[string]bool{"all": true, "both": true}

// Registry is an ordered set of sources keyed by id. It is filled once at
// startup and only read afterwards.
type Registry struct {
	sources []Source
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends src. Ids are case-insensitive and must be unique.
func (r *Registry) Register(src Source) error {
	id := strings.ToLower(strings.TrimSpace(src.ID))
	switch {
	case id == "":
		return fmt.Errorf("registry: empty source id: %w", models.ErrConfig)
	case allSelectors[id]:
		return fmt.Errorf("registry: %q is reserved: %w", id, models.ErrConfig)
	case src.URL == nil || src.Adapter == nil:
		return fmt.Errorf("registry: source %q needs a URL and an adapter: %w", id, models.ErrConfig)
	}
	if _, dup := r.index[id]; dup {
		return fmt.Errorf("registry: duplicate source id %q: %w", id, models.ErrConfig)
	}

	src.ID = id
	r.index[id] = len(r.sources)
	r.sources = append(r.sources, src)
	return nil
}

func (r *Registry) Lookup(id string) (Source, bool) {
	i, ok := r.index[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Source{}, false
	}
	return r.sources[i], true
}

// IDs returns every source id in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.sources))
	for i, s := range r.sources {
		ids[i] = s.ID
	}
	return ids
}

// Expand resolves user selectors to source ids in registration order.
// "all" and "both" select every source; duplicates collapse; blank entries
// are ignored. Unknown selectors or an empty selection fail with ErrConfig.
func (r *Registry) Expand(selectors []string) ([]string, error) {
	set := utils.NewStringSet()
	var unknown []string

	for _, sel := range selectors {
		sel = strings.ToLower(strings.TrimSpace(sel))
		switch {
		case sel == "":
			continue
		case allSelectors[sel]:
			for _, id := range r.IDs() {
				set.Add(id)
			}
		case r.has(sel):
			set.Add(sel)
		default:
			unknown = append(unknown, sel)
		}
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown source(s) %s, choose from %s or all: %w",
			strings.Join(unknown, ", "), strings.Join(r.IDs(), ", "), models.ErrConfig)
	}
	if set.Size() == 0 {
		return nil, fmt.Errorf("at least one source must be selected: %w", models.ErrConfig)
	}

	ids := set.Values()
	sort.SliceStable(ids, func(i, j int) bool {
		return r.index[ids[i]] < r.index[ids[j]]
	})
	return ids, nil
}

func (r *Registry) has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// TemplateURL builds a URL function from a template containing "{locality}".
// The locality is slugged first, so "New Delhi" fills in as "new-delhi".
func TemplateURL(tmpl string) func(string) string {
	return func(locality string) string {
		return strings.ReplaceAll(tmpl, "{locality}", utils.Slug(locality))
	}
}

// Default builds the registry of every supported site, in the order their
// records appear in the combined output. templates overrides the built-in
// URL template of a source by id.
func Default(templates map[string]string) (*Registry, error) {
	builtin := []struct {
		id      string
		tmpl    string
		adapter Adapter
	}{
		{magicbricks.ID, magicbricks.URLTemplate, magicbricks.New()},
		{makaan.ID, makaan.URLTemplate, makaan.New()},
		{commonfloor.ID, commonfloor.URLTemplate, commonfloor.New()},
	}

	r := NewRegistry()
	for _, b := range builtin {
		tmpl := b.tmpl
		if override, ok := templates[b.id]; ok {
			tmpl = override
		}
		if err := r.Register(Source{ID: b.id, URL: TemplateURL(tmpl), Adapter: b.adapter}); err != nil {
			return nil, err
		}
	}

	for id := range templates {
		if !r.has(id) {
			return nil, fmt.Errorf("registry: URL override for unknown source %q: %w", id, models.ErrConfig)
		}
	}
	return r, nil
}
