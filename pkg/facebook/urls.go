package facebook

import (
	"fmt"
	"strings"

	errs "fbsweep/pkg/errors"
	"fbsweep/pkg/models"
)

// MBASICBase is the lightweight HTML frontend the sweeper drives.
// It renders without JavaScript and keeps deletion forms as plain links.
const MBASICBase = "https://mbasic.facebook.com"

// TrashURL is the recycle bin page. Deleted posts linger here for 30
// days unless it is emptied.
const TrashURL = MBASICBase + "/trash"

// Activity log category filters
const (
	CategoryPosts     = "cluster_11"
	CategoryComments  = "cluster_116"
	CategoryReactions = "cluster_15"
)

// Year bounds accepted by the activity log
const (
	MinYear = 2004
	MaxYear = 2030
)

// DefaultUserAgent is sent when the account configuration does not
// provide one. A mobile agent keeps the mbasic layout stable.
const DefaultUserAgent = "Mozilla/5.0 (Linux; Android 10; SM-G960F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Mobile Safari/537.36"

// URLBuilder builds activity log URLs for one account
type URLBuilder struct {
	username string
	baseURL  string
}

// NewURLBuilder creates a builder for the given username or numeric ID
func NewURLBuilder(username string) (*URLBuilder, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.New(errs.ErrorTypeUnknown, "username cannot be empty")
	}

	return &URLBuilder{
		username: username,
		baseURL:  fmt.Sprintf("%s/%s/allactivity", MBASICBase, username),
	}, nil
}

// ActivityLogURL builds an activity log URL filtered by year, and
// optionally by month (1-12) and category
func (b *URLBuilder) ActivityLogURL(year, month int, category string) (string, error) {
	if year < MinYear || year > MaxYear {
		return "", errs.New(errs.ErrorTypeUnknown, "year must be between %d and %d, got %d", MinYear, MaxYear, year)
	}

	params := []string{fmt.Sprintf("log_filter=year_%d", year)}

	if month != 0 {
		if month < 1 || month > 12 {
			return "", errs.New(errs.ErrorTypeUnknown, "month must be between 1 and 12, got %d", month)
		}
		params = append(params, fmt.Sprintf("month=%d", month))
	}

	if category != "" {
		params = append(params, "log_filter="+category)
	}

	return b.baseURL + "?" + strings.Join(params, "&"), nil
}

// MonthURL builds a URL filtered by year and month
func (b *URLBuilder) MonthURL(year, month int) (string, error) {
	return b.ActivityLogURL(year, month, "")
}

// PeriodURL builds the URL for a traversal period. The trash period
// maps to the recycle bin page.
func (b *URLBuilder) PeriodURL(period models.Period) (string, error) {
	if period.IsZero() {
		return TrashURL, nil
	}
	return b.MonthURL(period.Year, period.Month)
}

// Username returns the account the builder was created for
func (b *URLBuilder) Username() string {
	return b.username
}
