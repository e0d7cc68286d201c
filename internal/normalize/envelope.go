// Package normalize turns raw job-search provider payloads into uniform postings.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/job-recommender/internal/jobs"
)

// Provider is the name used in provider errors raised while decoding.
const Provider = "google custom search"

// Envelope is a decoded provider response page.
type Envelope struct {
	Items         []Item
	NextPageToken string
	TotalResults  int
	// Skipped counts items that were not objects and could not be used at all.
	Skipped int
}

// Item is a single search result. Every field is optional.
type Item struct {
	CacheID     string  `json:"cacheId"`
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	DisplayLink string  `json:"displayLink"`
	Snippet     string  `json:"snippet"`
	PageMap     PageMap `json:"pagemap"`
}

// PageMap holds the structured data the provider extracted from the result page.
type PageMap struct {
	MetaTags   []map[string]string `json:"metatags"`
	JobPosting []JobPostingMeta    `json:"jobposting"`
}

// JobPostingMeta is the schema.org JobPosting data of a result page.
type JobPostingMeta struct {
	Title              string `json:"title"`
	HiringOrganization string `json:"hiringorganization"`
	JobLocation        string `json:"joblocation"`
	Skills             string `json:"skills"`
	BaseSalary         string `json:"basesalary"`
	EmploymentType     string `json:"employmenttype"`
}

type rawEnvelope struct {
	Queries struct {
		NextPage []struct {
			StartIndex int `json:"startIndex"`
		} `json:"nextPage"`
	} `json:"queries"`
	SearchInformation struct {
		TotalResults int `json:"totalResults"`
	} `json:"searchInformation"`
}

// Decode parses a provider response body. A payload without items is a valid page with
// zero results. Only a body that is not a JSON object, or whose items are not a list,
// fails with a ProviderResponseError. Mistyped fields inside an item are dropped one by
// one and the rest of the item is kept.
func Decode(body []byte) (*Envelope, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &jobs.ProviderResponseError{Provider: Provider, Message: "response is not a JSON object", Cause: err}
	}

	env := &Envelope{Items: []Item{}}

	var meta rawEnvelope
	// Paging metadata is advisory; a broken block only disables pagination.
	if err := weakDecode(raw, &meta); err == nil {
		env.TotalResults = meta.SearchInformation.TotalResults
		if len(meta.Queries.NextPage) > 0 && meta.Queries.NextPage[0].StartIndex > 0 {
			env.NextPageToken = strconv.Itoa(meta.Queries.NextPage[0].StartIndex)
		}
	}

	rawItems, ok := raw["items"]
	if !ok || rawItems == nil {
		return env, nil
	}

	list, ok := rawItems.([]any)
	if !ok {
		return nil, &jobs.ProviderResponseError{
			Provider: Provider,
			Message:  fmt.Sprintf("items is %T, not a list", rawItems),
		}
	}

	for _, entry := range list {
		fields, ok := entry.(map[string]any)
		if !ok {
			env.Skipped++
			continue
		}
		env.Items = append(env.Items, decodeItem(fields))
	}

	return env, nil
}

// decodeItem decodes field by field so one mistyped field does not lose the others.
func decodeItem(fields map[string]any) Item {
	var item Item
	for key, value := range fields {
		if key == "pagemap" {
			continue
		}
		_ = weakDecode(map[string]any{key: value}, &item)
	}

	pagemap, ok := fields["pagemap"].(map[string]any)
	if !ok {
		return item
	}
	for key, value := range pagemap {
		var pm PageMap
		if err := weakDecode(map[string]any{key: value}, &pm); err != nil {
			continue
		}
		switch key {
		case "metatags":
			item.PageMap.MetaTags = pm.MetaTags
		case "jobposting":
			item.PageMap.JobPosting = pm.JobPosting
		}
	}

	return item
}

func weakDecode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
