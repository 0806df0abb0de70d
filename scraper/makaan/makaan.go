package makaan

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/scraper/extract"
	"github.com/CodePeacock/scraper/utils"
)

const (
	ID          = "makaan"
	URLTemplate = "https://www.makaan.com/{locality}-residential-property/buy-property-in-{locality}-city"

	containerSelector = "div.search-result-wrap"
	sellerSelector    = "div.seller-info"
	sellerNameSel     = "a.seller-name"
	priceSelector     = "td.price"
	valueSelector     = "span.val"
	unitSelector      = "span.unit"

	// builderMarker is glued onto builder names in the seller block.
	builderMarker = "BUILDER0"
	currency      = "₹"
)

// Adapter extracts listings from a makaan search results page. makaan
// renders the price value and its unit (L, Cr) in separate spans.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return ID }

// Extract builds one listing per result block from its first seller and
// price cell.
func (a *Adapter) Extract(doc *goquery.Document) []models.Listing {
	var out []models.Listing
	doc.Find(containerSelector).Each(func(_ int, c *goquery.Selection) {
		seller := c.Find(sellerSelector).First()
		owner := ""
		if seller.Length() > 0 {
			owner = utils.NormaliseText(strings.ReplaceAll(seller.Text(), builderMarker, ""))
		}
		l, ok := extract.Triple(
			owner,
			price(c.Find(priceSelector).First()),
			extract.Text(seller.Find(sellerNameSel).First()),
		)
		if ok {
			out = append(out, l)
		}
	})
	return out
}

func price(td *goquery.Selection) string {
	val := extract.Text(td.Find(valueSelector).First())
	if val == "" {
		return ""
	}
	if unit := extract.Text(td.Find(unitSelector).First()); unit != "" {
		val += " " + unit
	}
	return currency + val
}
