package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leroysdeath/vgsearch/internal/query"
)

// entityFields lists the fields requested from the catalog for every query.
const entityFields = "id,name,slug,summary,category,total_rating,total_rating_count," +
	"follows,hypes,involved_companies.company.name,involved_companies.developer," +
	"involved_companies.publisher,release_dates.platform,release_dates.date,release_dates.status"

// Serialize renders a RemoteQuery in the catalog's query language:
//
//	search "mario"; fields id,name,...;
//	where category = (0,2,4); limit 100; sort total_rating desc;
func Serialize(rq query.RemoteQuery) string {
	var b strings.Builder

	fmt.Fprintf(&b, "search %q; ", rq.Term)
	fmt.Fprintf(&b, "fields %s; ", entityFields)

	switch {
	case len(rq.IncludeCategories) > 0:
		fmt.Fprintf(&b, "where category = (%s); ", joinInts(rq.IncludeCategories))
	case len(rq.ExcludeCategories) > 0:
		fmt.Fprintf(&b, "where category != (%s); ", joinInts(rq.ExcludeCategories))
	}

	if rq.Limit > 0 {
		fmt.Fprintf(&b, "limit %d; ", rq.Limit)
	}
	if rq.Sort != "" {
		fmt.Fprintf(&b, "sort %s; ", rq.Sort)
	}

	return strings.TrimSpace(b.String())
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
