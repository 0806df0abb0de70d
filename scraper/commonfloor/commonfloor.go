package commonfloor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/scraper/extract"
)

const (
	ID          = "commonfloor"
	URLTemplate = "https://www.commonfloor.com/{locality}-property/projects"

	containerSelector = "div.snb-content-list"
	ownerSelector     = "h3.proSnbp"
	priceSelector     = "tbody td"
	rupeeIconSelector = "i.icon-inr"
	titleSelector     = "div.snb-projecttile-top a h2"

	currency = "₹"
)

// Adapter extracts listings from a commonfloor projects page. Each
// container is one project tile.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return ID }

func (a *Adapter) Extract(doc *goquery.Document) []models.Listing {
	var out []models.Listing
	doc.Find(containerSelector).Each(func(_ int, c *goquery.Selection) {
		owner := extract.Text(c.Find(ownerSelector).First())
		title := extract.Text(c.Find(titleSelector).First())
		price := price(c.Find(priceSelector).First())
		if l, ok := extract.Triple(owner, price, title); ok {
			out = append(out, l)
		}
	})
	return out
}

// price reads the first price cell. The rupee sign is an icon font glyph,
// so it is re-added as text when the icon is present.
func price(td *goquery.Selection) string {
	text := extract.Text(td)
	if text == "" {
		return ""
	}
	if td.Find(rupeeIconSelector).Length() > 0 && !strings.HasPrefix(text, currency) {
		return currency + text
	}
	return text
}
