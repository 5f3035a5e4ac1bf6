package sweeper

import (
	"context"

	"fbsweep/pkg/facebook"
	"fbsweep/pkg/models"
)

// PageDriver defines the interface for interacting with the remote activity
// log surface. Implementations own the browser or HTTP session; the engine
// only sees rendered pages, extracted items, and post-action page state.
type PageDriver interface {
	// Render loads the activity log page for a period. An empty pageToken
	// means the first page; otherwise it is a token previously returned by
	// NextPageToken for the same period.
	Render(ctx context.Context, period models.Period, pageToken string) (*facebook.Page, error)

	// ExtractItems returns the deletable items on a rendered page, in page
	// order.
	ExtractItems(page *facebook.Page) ([]models.Item, error)

	// NextPageToken returns the pagination token for the page after this
	// one, or ok=false when the period is exhausted.
	NextPageToken(page *facebook.Page) (string, bool)

	// InvokeDelete activates the deletion control for an item. The returned
	// result carries the post-action page state for classification; the
	// error is reserved for transport failures.
	InvokeDelete(ctx context.Context, locator models.Locator) (*facebook.ActionResult, error)
}
