package score

import (
	"regexp"
	"strings"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// Domain reliability tables. Weights reflect evidentiary reliability in [0,1]
// and feed EvidenceItem.Weight; unknown domains fall back to the per-kind
// default of their adapter.

var officialDomains = map[string]float64{
	// International organizations
	"who.int":       0.95,
	"un.org":        0.95,
	"unicef.org":    0.95,
	"worldbank.org": 0.90,
	"icrc.org":      0.92,

	// Indian government
	"india.gov.in": 0.95,
	"pib.gov.in":   0.95,
	"ndma.gov.in":  0.95,
	"mohfw.gov.in": 0.95,
	"icmr.gov.in":  0.93,
	"imd.gov.in":   0.93,

	// US government
	"cdc.gov":  0.95,
	"fema.gov": 0.95,
	"nih.gov":  0.95,
	"fda.gov":  0.95,
	"usgs.gov": 0.93,
	"noaa.gov": 0.93,

	// Other government
	"gov.uk":    0.93,
	"europa.eu": 0.92,
}

var newsDomains = map[string]float64{
	// Wire services
	"reuters.com": 0.90,
	"apnews.com":  0.90,
	"afp.com":     0.88,

	// Major international
	"bbc.com":            0.88,
	"bbc.co.uk":          0.88,
	"theguardian.com":    0.85,
	"nytimes.com":        0.85,
	"washingtonpost.com": 0.85,
	"aljazeera.com":      0.82,

	// Indian news
	"thehindu.com":       0.85,
	"indianexpress.com":  0.83,
	"hindustantimes.com": 0.82,
	"ndtv.com":           0.82,
	"scroll.in":          0.80,
	"thewire.in":         0.80,
}

var factCheckDomains = map[string]float64{
	"snopes.com":      0.92,
	"politifact.com":  0.92,
	"factcheck.org":   0.92,
	"fullfact.org":    0.92,
	"boomlive.in":     0.90,
	"altnews.in":      0.90,
	"factchecker.in":  0.90,
	"vishvasnews.com": 0.88,
	"newschecker.in":  0.88,
	"leadstories.com": 0.85,
	"africacheck.org": 0.88,
}

var academicSuffixes = map[string]float64{
	".edu":   0.80,
	".ac.in": 0.80,
	".ac.uk": 0.80,
}

var academicDomains = map[string]float64{
	"nature.com":              0.92,
	"science.org":             0.92,
	"sciencedirect.com":       0.88,
	"pubmed.ncbi.nlm.nih.gov": 0.90,
	"arxiv.org":               0.75, // preprints, not peer-reviewed
}

// kindDefaults are the static adapter weights used when the domain is unknown.
var kindDefaults = map[model.SourceKind]float64{
	model.KindFactCheck:    0.90,
	model.KindEncyclopedia: 0.80,
	model.KindNews:         0.72,
	model.KindWebSearch:    0.55,
}

var domainPattern = regexp.MustCompile(`^https?://`)

func extractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	domain := domainPattern.ReplaceAllString(strings.ToLower(rawURL), "")
	domain = strings.SplitN(domain, "/", 2)[0]
	domain = strings.SplitN(domain, ":", 2)[0]
	return strings.TrimPrefix(domain, "www.")
}

// SourceWeight returns the evidentiary weight for a URL, falling back to the
// adapter kind's default when the domain is not in any table.
func SourceWeight(rawURL string, kind model.SourceKind) float64 {
	domain := extractDomain(rawURL)
	if domain != "" {
		for _, table := range []map[string]float64{officialDomains, factCheckDomains, newsDomains, academicDomains} {
			if w, ok := table[domain]; ok {
				return w
			}
		}
		for suffix, w := range academicSuffixes {
			if strings.HasSuffix(domain, suffix) {
				return w
			}
		}
	}
	if w, ok := kindDefaults[kind]; ok {
		return w
	}
	return 0.5
}

// KindWeight returns the static default weight an adapter declares for its kind.
func KindWeight(kind model.SourceKind) float64 {
	if w, ok := kindDefaults[kind]; ok {
		return w
	}
	return 0.5
}

// Diversity measures the source kind spread of an evidence set in [0,1]:
// the fraction of distinct kinds present out of the four known kinds.
func Diversity(set model.EvidenceSet) float64 {
	if len(set) == 0 {
		return 0
	}
	kinds := make(map[model.SourceKind]bool)
	for _, item := range set {
		kinds[item.Kind] = true
	}
	return float64(len(kinds)) / 4.0
}
