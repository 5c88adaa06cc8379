package c4c

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query holds the OData options for a collection read. $format=json is
// always added by the client.
type Query struct {
	Filter string
	Select string
	Top    int
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("$format", "json")
	if q.Filter != "" {
		v.Set("$filter", q.Filter)
	}
	if q.Select != "" {
		v.Set("$select", q.Select)
	}
	if q.Top > 0 {
		v.Set("$top", strconv.Itoa(q.Top))
	}
	return v
}

// GUIDFilter builds "<field> eq guid'<value>'".
func GUIDFilter(field, value string) string {
	return fmt.Sprintf("%s eq guid'%s'", field, value)
}

// EqFilter builds "<field> eq '<value>'", escaping single quotes.
func EqFilter(field, value string) string {
	return fmt.Sprintf("%s eq '%s'", field, strings.ReplaceAll(value, "'", "''"))
}

// ChangedSince filters on EntityLastChangedOn.
func ChangedSince(t time.Time) string {
	return fmt.Sprintf("EntityLastChangedOn ge datetimeoffset'%s'", t.UTC().Format("2006-01-02T15:04:05Z"))
}

// Or joins filters with " or ".
func Or(filters ...string) string {
	return strings.Join(filters, " or ")
}

// encodeQuery encodes like url.Values.Encode but keeps spaces as %20, which
// the OData parser requires.
func encodeQuery(v url.Values) string {
	return strings.ReplaceAll(v.Encode(), "+", "%20")
}

// withQuery appends OData options to a URI that may already carry a query.
func withQuery(uri string, v url.Values) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + encodeQuery(v)
}
