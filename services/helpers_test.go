package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/CodePeacock/scraper/cache"
	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/scraper"
	"github.com/CodePeacock/scraper/scraper/extract"
	"github.com/CodePeacock/scraper/utils"
)

// testAdapter reads <div class="listing"> blocks with .owner, .price and
// .title children.
type testAdapter struct{ name string }

func (a testAdapter) Name() string { return a.name }

func (a testAdapter) Extract(doc *goquery.Document) []models.Listing {
	var out []models.Listing
	doc.Find("div.listing").Each(func(_ int, card *goquery.Selection) {
		l, ok := extract.Triple(extract.Text(card.Find(".owner")), extract.Text(card.Find(".price")), extract.Text(card.Find(".title")))
		if ok {
			out = append(out, l)
		}
	})
	return out
}

type panicAdapter struct{}

func (panicAdapter) Name() string                               { return "panicky" }
func (panicAdapter) Extract(*goquery.Document) []models.Listing { panic("selector blew up") }

func page(listings ...models.Listing) []byte {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, l := range listings {
		fmt.Fprintf(&b, `<div class="listing"><span class="owner">%s</span><span class="price">%s</span><h2 class="title">%s</h2></div>`,
			l.Owner, l.Price, l.PropertyName)
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

type response struct {
	body  []byte
	err   error
	delay time.Duration
}

// fakeFetcher serves canned responses by URL and counts calls.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]response
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: make(map[string]response), calls: make(map[string]int)}
}

func (f *fakeFetcher) set(url string, r response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = r
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	r, ok := f.responses[url]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no route to %s: %w", url, models.ErrTransport)
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%v: %w", ctx.Err(), models.ErrTransport)
		}
	}
	return r.body, r.err
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func testURL(id string) string { return "http://" + id + ".test/testcity" }

func testRegistry(ids ...string) *scraper.Registry {
	reg := scraper.NewRegistry()
	for _, id := range ids {
		if err := reg.Register(scraper.Source{
			ID:      id,
			URL:     scraper.TemplateURL("http://" + id + ".test/{locality}"),
			Adapter: testAdapter{id},
		}); err != nil {
			panic(err)
		}
	}
	return reg
}

// syncBuffer lets several goroutines log into one buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietLogger() *utils.Logger { return utils.NewLoggerTo(&syncBuffer{}) }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCache(clk *fakeClock) *cache.Cache {
	c := cache.New(time.Hour)
	c.SetClock(clk.now)
	return c
}
