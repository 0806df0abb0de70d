package storage

import (
	"context"

	"github.com/CodePeacock/scraper/models"
)

// ListingWriter is the interface any output backend must satisfy. Write
// receives the whole run so backends can use its id, locality and output path.
type ListingWriter interface {
	Write(ctx context.Context, run *models.RunReport) error
	Close() error
}
