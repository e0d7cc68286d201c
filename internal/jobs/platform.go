package jobs

import (
	"net/url"
	"strings"
)

// Platform is the job board a posting was published on.
type Platform string

const (
	PlatformLinkedIn    Platform = "LinkedIn"
	PlatformGoogleJobs  Platform = "GoogleJobs"
	PlatformIndeed      Platform = "Indeed"
	PlatformNaukri      Platform = "Naukri"
	PlatformInternshala Platform = "Internshala"
	PlatformOther       Platform = "Other"
)

// platformOrder lists platforms from the richest structured data to the poorest.
var platformOrder = []Platform{
	PlatformLinkedIn,
	PlatformGoogleJobs,
	PlatformIndeed,
	PlatformNaukri,
	PlatformInternshala,
	PlatformOther,
}

// Priority returns the platform position in the preference order. Lower is better.
// Unknown platforms rank together with Other.
func (p Platform) Priority() int {
	for idx, platform := range platformOrder {
		if platform == p {
			return idx
		}
	}
	return len(platformOrder) - 1
}

// DetectPlatform identifies the job board from a posting URL.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return PlatformOther
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case hostMatches(host, "linkedin.com"):
		return PlatformLinkedIn
	case hostMatches(host, "jobs.google.com"):
		return PlatformGoogleJobs
	case hostMatches(host, "google.com") && isGoogleJobsPath(parsed):
		return PlatformGoogleJobs
	case strings.Contains(host, "indeed."):
		return PlatformIndeed
	case hostMatches(host, "naukri.com"):
		return PlatformNaukri
	case hostMatches(host, "internshala.com"):
		return PlatformInternshala
	default:
		return PlatformOther
	}
}

// SourceHost returns the posting host without a leading "www.".
func SourceHost(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func isGoogleJobsPath(u *url.URL) bool {
	if strings.Contains(u.Path, "/jobs") {
		return true
	}
	return strings.Contains(u.Query().Get("ibp"), "htl;jobs")
}
