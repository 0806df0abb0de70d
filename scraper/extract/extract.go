// Package extract holds the helpers shared by the per-site adapters.
package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/utils"
)

// Text returns the whitespace-collapsed text of s, or "" for an empty selection.
func Text(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	return utils.NormaliseText(s.Text())
}

// Triple builds a listing from one card's fields. ok is false when any field
// is empty.
func Triple(owner, price, title string) (models.Listing, bool) {
	if owner == "" || price == "" || title == "" {
		return models.Listing{}, false
	}
	return models.Listing{Owner: owner, Price: price, PropertyName: title}, true
}
