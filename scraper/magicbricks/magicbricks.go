package magicbricks

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/scraper/extract"
)

const (
	ID          = "magicbricks"
	URLTemplate = "https://www.magicbricks.com/ready-to-move-flats-in-{locality}-pppfs"

	containerSelector = "div.mb-srp__left"
	cardSelector      = "div.mb-srp__card"
	adSelector        = "div.mb-srp__card__ads"
	ownerSelector     = "div.mb-srp__card__ads--name"
	priceSelector     = "div.mb-srp__card__price--amount"
	titleSelector     = "h2.mb-srp__card--title"

	ownerLabel = "Owner:"
)

// Adapter extracts listings from a magicbricks search results page.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return ID }

// Extract reads every result card in the listing column. Each card yields at
// most one listing, so a card missing a field never borrows from its neighbour.
func (a *Adapter) Extract(doc *goquery.Document) []models.Listing {
	var out []models.Listing
	doc.Find(containerSelector).Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		l, ok := extract.Triple(
			cleanOwner(extract.Text(card.Find(adSelector).Find(ownerSelector).First())),
			extract.Text(card.Find(priceSelector).First()),
			extract.Text(card.Find(titleSelector).First()),
		)
		if ok {
			out = append(out, l)
		}
	})
	return out
}

func cleanOwner(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, ownerLabel))
}
