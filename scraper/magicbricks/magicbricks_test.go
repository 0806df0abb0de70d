package magicbricks

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

const page = `
<div class="mb-srp__left">
  <div class="mb-srp__card">
    <h2 class="mb-srp__card--title">2 BHK Flat in Andheri</h2>
    <div class="mb-srp__card__price--amount">₹1.2 Cr</div>
    <div class="mb-srp__card__ads"><div class="mb-srp__card__ads--name">Owner: Ravi Kumar</div></div>
  </div>
  <div class="mb-srp__card">
    <h2 class="mb-srp__card--title">  Sunrise
      Apts </h2>
    <div class="mb-srp__card__price--amount">₹50 Lac</div>
    <div class="mb-srp__card__ads"><div class="mb-srp__card__ads--name">Jane</div></div>
  </div>
</div>`

func TestExtract(t *testing.T) {
	got := New().Extract(parse(t, page))
	if len(got) != 2 {
		t.Fatalf("expected 2 listings, got %d: %+v", len(got), got)
	}

	if got[0].Owner != "Ravi Kumar" {
		t.Errorf("owner label not stripped: %q", got[0].Owner)
	}
	if got[0].Price != "₹1.2 Cr" || got[0].PropertyName != "2 BHK Flat in Andheri" {
		t.Errorf("unexpected first listing: %+v", got[0])
	}
	if got[1].PropertyName != "Sunrise Apts" || got[1].Owner != "Jane" {
		t.Errorf("unexpected second listing: %+v", got[1])
	}
}

func TestExtractNoContainers(t *testing.T) {
	got := New().Extract(parse(t, `<html><body><p>No results</p></body></html>`))
	if len(got) != 0 {
		t.Fatalf("expected no listings, got %+v", got)
	}
}

// card wraps inner markup in one result card inside the listing column.
func card(inner string) string {
	return `<div class="mb-srp__left"><div class="mb-srp__card">` + inner + `</div></div>`
}

func TestExtractDropsPartialTriples(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"missing owner", card(`
			<h2 class="mb-srp__card--title">A</h2>
			<div class="mb-srp__card__price--amount">₹1 Cr</div>`)},
		{"missing price", card(`
			<h2 class="mb-srp__card--title">A</h2>
			<div class="mb-srp__card__ads"><div class="mb-srp__card__ads--name">Jane</div></div>`)},
		{"missing title", card(`
			<div class="mb-srp__card__price--amount">₹1 Cr</div>
			<div class="mb-srp__card__ads"><div class="mb-srp__card__ads--name">Jane</div></div>`)},
		{"ad block without name", card(`
			<h2 class="mb-srp__card--title">A</h2>
			<div class="mb-srp__card__price--amount">₹1 Cr</div>
			<div class="mb-srp__card__ads"><span>Contact</span></div>`)},
		{"owner is only the label", card(`
			<h2 class="mb-srp__card--title">A</h2>
			<div class="mb-srp__card__price--amount">₹1 Cr</div>
			<div class="mb-srp__card__ads"><div class="mb-srp__card__ads--name">Owner:</div></div>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Extract(parse(t, tt.html)); len(got) != 0 {
				t.Errorf("expected partial listing to be dropped, got %+v", got)
			}
		})
	}
}

func TestExtractOwnerlessCardDoesNotShiftOwners(t *testing.T) {
	html := `
<div class="mb-srp__left">
  <div class="mb-srp__card">
    <h2 class="mb-srp__card--title">Flat A</h2>
    <div class="mb-srp__card__price--amount">₹50 Lac</div>
  </div>
  <div class="mb-srp__card">
    <h2 class="mb-srp__card--title">Flat B</h2>
    <div class="mb-srp__card__price--amount">₹75 Lac</div>
    <div class="mb-srp__card__ads"><div class="mb-srp__card__ads--name">Owner: Ravi</div></div>
  </div>
</div>`

	got := New().Extract(parse(t, html))
	if len(got) != 1 {
		t.Fatalf("expected only Flat B, got %+v", got)
	}
	if got[0].Owner != "Ravi" || got[0].PropertyName != "Flat B" || got[0].Price != "₹75 Lac" {
		t.Errorf("fields from different cards mixed: %+v", got[0])
	}
}
