package facebook

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"regexp"
	"strings"
	"time"

	"fbsweep/pkg/auth"
	errs "fbsweep/pkg/errors"
	"fbsweep/pkg/logger"
	"fbsweep/pkg/models"
)

// Driver drives the mbasic activity log over plain HTTP. The mbasic surface
// renders server-side HTML with ordinary links and forms, so item
// extraction and deletion work without script execution.
type Driver struct {
	client *Client
	urls   *URLBuilder
	logger logger.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithBaseURL points the driver at a different origin, for tests.
func WithBaseURL(base string) DriverOption {
	return func(d *Driver) {
		d.urls.baseURL = fmt.Sprintf("%s/%s/allactivity",
			strings.TrimRight(base, "/"), d.urls.username)
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(timeout time.Duration) DriverOption {
	return func(d *Driver) { d.client.httpClient.Timeout = timeout }
}

// WithUserAgent overrides the user agent for all requests. An empty value
// keeps the session's agent.
func WithUserAgent(userAgent string) DriverOption {
	return func(d *Driver) {
		if userAgent != "" {
			d.client.SetHeader("User-Agent", userAgent)
		}
	}
}

// NewDriver creates a driver authenticated with the session's cookies.
func NewDriver(session *auth.Session, username string, log logger.Logger, opts ...DriverOption) (*Driver, error) {
	urls, err := NewURLBuilder(username)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger()
	}

	d := &Driver{
		client: NewClient(session, 30*time.Second, log),
		urls:   urls,
		logger: log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Render loads the activity log page for a period. A non-empty pageToken is
// the absolute URL of a "see more" continuation link.
func (d *Driver) Render(ctx context.Context, period models.Period, pageToken string) (*Page, error) {
	pageURL := pageToken
	if pageURL == "" {
		var err error
		pageURL, err = d.urls.PeriodURL(period)
		if err != nil {
			return nil, err
		}
	}
	return d.client.GetPage(ctx, pageURL)
}

// Patterns for locating deletable entries. The markup carries no stable
// classes, so extraction anchors on the delete/remove/unlike action links
// and reads the surrounding text for dates and identifiers.
var (
	actionLinkRe = regexp.MustCompile(`(?is)<a[^>]+href="([^"]*(?:delete|removecontent|unlike|remove)[^"]*)"[^>]*>(.*?)</a>`)

	abbrTitleRe = regexp.MustCompile(`(?is)<abbr[^>]+title="([^"]+)"`)
	dateTextRe  = regexp.MustCompile(`(?i)\b(?:(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,\s*\d{4})?|\d+\s+(?:year|month|week|day|hour)s?\s+ago|Today|Yesterday)\b(?:\s+at\s+\d{1,2}:\d{2}\s*(?:am|pm)?)?`)

	idParamRe = regexp.MustCompile(`[?&](?:story_fbid|fbid|cid|id)=([\w.%-]+)`)

	seeMoreRe = regexp.MustCompile(`(?is)<a[^>]+href="([^"]*allactivity[^"]*)"[^>]*>\s*(?:<[^>]+>\s*)*see\s+more`)

	tagRe = regexp.MustCompile(`<[^>]+>`)
)

// contextWindow is how far back from an action link the extractor searches
// for the entry's date text and identifiers.
const contextWindow = 800

// ExtractItems returns the deletable items on a page, in document order.
func (d *Driver) ExtractItems(page *Page) ([]models.Item, error) {
	matches := actionLinkRe.FindAllStringSubmatchIndex(page.Content, -1)

	var items []models.Item
	seen := make(map[string]bool)
	prevEnd := 0
	for _, m := range matches {
		href := htmlUnescape(page.Content[m[2]:m[3]])
		label := strings.TrimSpace(tagRe.ReplaceAllString(page.Content[m[4]:m[5]], ""))

		if !isActionLabel(label) {
			continue
		}

		absHref, err := resolveURL(page.URL, href)
		if err != nil {
			continue
		}

		// The window never crosses the previous action link, so one
		// entry's date cannot bleed into the next.
		start := m[0] - contextWindow
		if start < 0 {
			start = 0
		}
		if start < prevEnd {
			start = prevEnd
		}
		window := page.Content[start:m[0]]
		prevEnd = m[1]

		item := models.Item{
			ID:       itemID(href),
			Kind:     itemKind(label, window),
			DateText: dateText(window),
			Locator:  models.Locator{Href: absHref},
		}
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}

	d.logger.DebugWithFields("extracted items from page", map[string]interface{}{
		"url":   page.URL,
		"count": len(items),
	})
	return items, nil
}

// NextPageToken finds the "see more" continuation link.
func (d *Driver) NextPageToken(page *Page) (string, bool) {
	m := seeMoreRe.FindStringSubmatch(page.Content)
	if m == nil {
		return "", false
	}
	abs, err := resolveURL(page.URL, htmlUnescape(m[1]))
	if err != nil {
		return "", false
	}
	return abs, true
}

var (
	formRe        = regexp.MustCompile(`(?is)<form[^>]+action="([^"]*)"[^>]*>(.*?)</form>`)
	hiddenInputRe = regexp.MustCompile(`(?is)<input[^>]+type="hidden"[^>]+name="([^"]*)"[^>]+value="([^"]*)"`)
	submitRe      = regexp.MustCompile(`(?is)<input[^>]+type="submit"[^>]+value="([^"]*)"`)
)

// InvokeDelete follows the item's action link. When the result is a
// confirmation page, the confirmation form is submitted with its hidden
// fields. The page state after the final step is the outcome signal.
func (d *Driver) InvokeDelete(ctx context.Context, locator models.Locator) (*ActionResult, error) {
	page, err := d.client.GetPage(ctx, locator.Href)
	if err != nil {
		return nil, err
	}

	action, fields, found := confirmationForm(page.Content)
	if !found {
		return &ActionResult{URL: page.URL, Content: page.Content}, nil
	}

	actionURL, err := resolveURL(page.URL, action)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeParsing, "bad confirmation form action %q", action)
	}
	result, err := d.client.PostForm(ctx, actionURL, fields)
	if err != nil {
		return nil, err
	}
	return &ActionResult{URL: result.URL, Content: result.Content}, nil
}

// confirmationForm finds a form whose submit button confirms a deletion and
// returns its action and hidden fields.
func confirmationForm(content string) (string, url.Values, bool) {
	for _, m := range formRe.FindAllStringSubmatch(content, -1) {
		action, body := m[1], m[2]

		submit := submitRe.FindStringSubmatch(body)
		if submit == nil || !isActionLabel(strings.TrimSpace(submit[1])) {
			continue
		}

		fields := url.Values{}
		for _, input := range hiddenInputRe.FindAllStringSubmatch(body, -1) {
			fields.Set(htmlUnescape(input[1]), htmlUnescape(input[2]))
		}
		return htmlUnescape(action), fields, true
	}
	return "", nil, false
}

func isActionLabel(label string) bool {
	switch strings.ToLower(label) {
	case "delete", "remove", "unlike", "remove reaction", "confirm", "move to trash":
		return true
	}
	return false
}

// itemKind guesses the entry type from the action label and nearby text.
func itemKind(label, window string) string {
	lower := strings.ToLower(label + " " + tagRe.ReplaceAllString(window, " "))
	switch {
	case strings.Contains(lower, "unlike") || strings.Contains(lower, "reaction") ||
		strings.Contains(lower, "liked"):
		return "reaction"
	case strings.Contains(lower, "comment"):
		return "comment"
	default:
		return "post"
	}
}

// dateText pulls the entry's rendered date out of the preceding markup,
// preferring an abbr title since it carries the full date.
func dateText(window string) string {
	if m := abbrTitleRe.FindAllStringSubmatch(window, -1); len(m) > 0 {
		return htmlUnescape(m[len(m)-1][1])
	}
	text := tagRe.ReplaceAllString(window, " ")
	if m := dateTextRe.FindAllString(text, -1); len(m) > 0 {
		return strings.TrimSpace(m[len(m)-1])
	}
	return ""
}

// itemID derives a stable identity for an entry from the identifiers in its
// action link, falling back to a digest of the whole link.
func itemID(href string) string {
	if ids := idParamRe.FindAllStringSubmatch(href, -1); len(ids) > 0 {
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, id[1])
		}
		return strings.Join(parts, ":")
	}
	h := fnv.New64a()
	h.Write([]byte(href))
	return fmt.Sprintf("href:%x", h.Sum64())
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

func htmlUnescape(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#039;", "'",
	)
	return replacer.Replace(s)
}
