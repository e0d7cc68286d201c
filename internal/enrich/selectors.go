package enrich

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/job-recommender/internal/jobs"
)

// selectors lists CSS selectors per field, tried in order.
type selectors struct {
	company  []string
	location []string
	salary   []string
}

var platformSelectors = map[jobs.Platform]selectors{
	jobs.PlatformLinkedIn: {
		company:  []string{"a.topcard__org-name-link", "span.topcard__flavor"},
		location: []string{"span.topcard__flavor--bullet"},
	},
	jobs.PlatformIndeed: {
		company:  []string{`div[data-company-name="true"]`},
		location: []string{`div[data-testid="inlineHeader-companyLocation"]`},
		salary:   []string{"#salaryInfoAndJobType span"},
	},
	jobs.PlatformNaukri: {
		company:  []string{`[class*="jd-header-comp-name"] a`, "a.comp-name"},
		location: []string{`[class*="jhc__location"] a`, `[class*="jhc__location"]`},
		salary:   []string{`[class*="jhc__salary"] span`},
	},
	jobs.PlatformInternshala: {
		company:  []string{".company_name a", ".company-name"},
		location: []string{"#location_names a", ".location_link"},
		salary:   []string{".stipend"},
	},
}

// ParseDetails reads the details of a posting page. Platforms without selectors
// yield empty details.
func ParseDetails(platform jobs.Platform, doc *goquery.Document) Details {
	sel, ok := platformSelectors[platform]
	if !ok {
		return Details{}
	}
	return Details{
		Company:  firstText(doc, sel.company),
		Location: firstText(doc, sel.location),
		Salary:   firstText(doc, sel.salary),
	}
}

func firstText(doc *goquery.Document, candidates []string) string {
	for _, candidate := range candidates {
		text := strings.Join(strings.Fields(doc.Find(candidate).First().Text()), " ")
		if text != "" {
			return text
		}
	}
	return ""
}
