// Package lead normalizes heterogeneous business records into the canonical
// Lead shape. Source records arrive from the automation webhook and from
// realtime database rows, each with its own key naming convention.
package lead

import (
	"strconv"

	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
)

// Per-field key priority. First present, non-empty key wins; the lists are
// the union of the webhook payload keys and the database row columns.
var (
	nameKeys    = []string{"name", "businessName", "Business Name", "business_name", "title"}
	addressKeys = []string{"address", "formatted_address", "location", "Address"}
	phoneKeys   = []string{"phone", "phone_number", "Phone"}
	websiteKeys = []string{"website", "site", "url", "Website"}
	emailKeys   = []string{"email", "emails", "Email"}
	ratingKeys  = []string{"rating", "stars", "score", "Rating"}
)

// Normalize maps an arbitrary-keyed record into a Lead. It is total over any
// map-like input including nil: missing or non-scalar fields resolve to the
// empty string and it never panics.
func Normalize(raw map[string]any) model.Lead {
	return model.Lead{
		Name:    firstNonEmpty(raw, nameKeys),
		Address: firstNonEmpty(raw, addressKeys),
		Phone:   firstNonEmpty(raw, phoneKeys),
		Website: firstNonEmpty(raw, websiteKeys),
		Email:   firstNonEmpty(raw, emailKeys),
		Rating:  firstNonEmpty(raw, ratingKeys),
	}
}

// NormalizeAll normalizes a record slice and drops records that resolve to
// no name, matching the dispatch path's display contract.
func NormalizeAll(records []map[string]any) []model.Lead {
	leads := make([]model.Lead, 0, len(records))
	for _, rec := range records {
		if l := Normalize(rec); l.Name != "" {
			leads = append(leads, l)
		}
	}
	return leads
}

func firstNonEmpty(raw map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringify renders scalar JSON values as display strings. Ratings arrive as
// either numbers or strings; numbers render without trailing zeros so a
// missing value round-trips to empty rather than a sentinel.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
