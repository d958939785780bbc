package helpers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/samber/mo"
)

// NotAvailable is the sentinel carried by fields that could not be resolved
const NotAvailable = "N/A"

// CleanText collapses runs of whitespace into single spaces and trims the result.
// Empty or whitespace-only input yields None so callers can tell a missing field
// from a blank one.
func CleanText(text string) mo.Option[string] {
	cleaned := strings.Join(strings.Fields(text), " ")
	if cleaned == "" {
		return mo.None[string]()
	}
	return mo.Some(cleaned)
}

// CleanTextOr is CleanText with a fallback for absent values
func CleanTextOr(text, fallback string) string {
	return CleanText(text).OrElse(fallback)
}

func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index < 0 {
		index += len(parts)
	}
	if index < 0 || index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// ResolveURL resolves href against base the way a browser would.
// An empty href resolves to an empty string.
func ResolveURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// StripQuery drops the query string and fragment from a link
func StripQuery(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		return link[:i]
	}
	return link
}
