package facebook

// Page is a rendered activity log page as seen by the driver
type Page struct {
	// URL is the final URL after any redirects
	URL string
	// Content is the rendered HTML
	Content string
}

// ActionResult is the outcome of invoking a deletion control: the page
// state after the action, fed to verdict classification
type ActionResult struct {
	// URL is the URL after the action completed
	URL string
	// Content is the page HTML after the action
	Content string
	// Err is any transport-level failure during the action
	Err error
}
