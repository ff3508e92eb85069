package ranking

import (
	"math"
	"time"

	"github.com/laxmanfhaneendra/savebucks-sub002/models"
)

// Boost and penalty factors. Composition is multiplicative so a single
// strong boost (an exact match) dominates a merely-positive base score.
const (
	boostExactMatch = 1.5
	boostTitleStart = 1.25
	boostTitleWord  = 1.1
	boostFeatured   = 1.2
	boostVerified   = 1.15
	boostFresh      = 1.1

	penaltyStale         = 0.85
	penaltyLowEngagement = 0.9

	freshAge = 7 * 24 * time.Hour
	staleAge = 180 * 24 * time.Hour

	lowEngagementViews = 100
	lowEngagementCTR   = 0.01
)

// profile holds per-entity-type scoring coefficients. Feature weights
// sum to 1 so the base score stays in [0,1] before boosts.
type profile struct {
	textWeight       float64
	popularityWeight float64
	recencyWeight    float64
	engagementWeight float64
	maxViews         float64
	maxClicks        float64
	decayPerMonth    float64
}

var (
	dealProfile     = profile{0.4, 0.3, 0.2, 0.1, 10000, 1000, 0.3}
	couponProfile   = profile{0.4, 0.25, 0.25, 0.1, 5000, 800, 0.4}
	userProfile     = profile{0.6, 0.25, 0.05, 0.1, 2000, 200, 0.05}
	companyProfile  = profile{0.5, 0.3, 0.05, 0.15, 20000, 2000, 0.05}
	categoryProfile = profile{0.6, 0.3, 0, 0.1, 50000, 5000, 0}
)

// doc is the ranking view over one item: searchable fields plus the
// numeric features the scorer consumes. It exists only for the duration
// of a Rank call; scores never leave this package.
type doc struct {
	fields      []weightedField
	exactFields []string // fields whose exact equality with the query earns the top boost
	title       string
	popularity  float64 // pre-normalized popularity override (users: karma); <0 means use views/clicks
	views       float64
	clicks      float64
	createdAt   time.Time
	featured    bool
	verified    bool
}

// score computes the relevance score for one document: a weighted sum of
// normalized features multiplied by boost/penalty factors, floored at 0
func score(d doc, query string, p profile) float64 {
	base := p.textWeight*textRelevance(query, d.fields) +
		p.popularityWeight*popularityScore(d, p) +
		p.recencyWeight*recencyScore(d.createdAt, p.decayPerMonth) +
		p.engagementWeight*engagementScore(d)

	factor := boostFactor(d, query)

	final := base * factor
	if final < 0 || math.IsNaN(final) {
		return 0
	}
	return final
}

func popularityScore(d doc, p profile) float64 {
	if d.popularity >= 0 {
		return clamp01(d.popularity)
	}

	views := 0.0
	if p.maxViews > 0 {
		views = clamp01(d.views / p.maxViews)
	}
	clicks := 0.0
	if p.maxClicks > 0 {
		clicks = clamp01(d.clicks / p.maxClicks)
	}
	// Clicks signal intent far more strongly than impressions
	return 0.3*views + 0.7*clicks
}

func recencyScore(createdAt time.Time, decayPerMonth float64) float64 {
	if createdAt.IsZero() {
		return 0
	}
	months := time.Since(createdAt).Hours() / (24 * 30)
	if months < 0 {
		months = 0
	}
	return math.Exp(-decayPerMonth * months)
}

func engagementScore(d doc) float64 {
	if d.views <= 0 {
		return 0
	}
	return clamp01(d.clicks / d.views)
}

func boostFactor(d doc, query string) float64 {
	query = normalizeQuery(query)
	factor := 1.0

	if query != "" {
		exact := false
		for _, f := range d.exactFields {
			if normalizeQuery(f) == query {
				exact = true
				break
			}
		}
		title := normalizeQuery(d.title)
		switch {
		case exact || title == query:
			factor *= boostExactMatch
		case hasPrefixWord(title, query):
			factor *= boostTitleStart
		case containsWord(title, query):
			factor *= boostTitleWord
		}
	}

	if d.featured {
		factor *= boostFeatured
	}
	if d.verified {
		factor *= boostVerified
	}

	if !d.createdAt.IsZero() {
		age := time.Since(d.createdAt)
		if age < freshAge {
			factor *= boostFresh
		} else if age > staleAge {
			factor *= penaltyStale
		}
	}

	if d.views > lowEngagementViews && engagementScore(d) < lowEngagementCTR {
		factor *= penaltyLowEngagement
	}

	return factor
}

func hasPrefixWord(text, prefix string) bool {
	if len(text) < len(prefix) || text[:len(prefix)] != prefix {
		return false
	}
	return len(text) == len(prefix) || !isWordRune(rune(text[len(prefix)]))
}

// doc adapters

func dealDoc(d *models.Deal) doc {
	return doc{
		fields: []weightedField{
			{d.Title, 1.0},
			{d.Description, 0.6},
			{joinTags(d.Tags), 0.8},
			{d.Company, 0.7},
		},
		exactFields: []string{d.CouponCode},
		title:       d.Title,
		popularity:  -1,
		views:       float64(d.Views),
		clicks:      float64(d.Clicks),
		createdAt:   d.CreatedAt,
		featured:    d.Featured,
	}
}

func couponDoc(c *models.Coupon) doc {
	return doc{
		fields: []weightedField{
			{c.Title, 1.0},
			{c.Description, 0.6},
			{c.Code, 0.9},
			{c.Company, 0.7},
		},
		exactFields: []string{c.Code},
		title:       c.Title,
		popularity:  -1,
		views:       float64(c.Views),
		clicks:      float64(c.Clicks),
		createdAt:   c.CreatedAt,
		featured:    c.Featured,
	}
}

func userDoc(u *models.UserProfile, p profile) doc {
	return doc{
		fields: []weightedField{
			{u.Username, 1.0},
			{u.DisplayName, 0.9},
			{u.Bio, 0.4},
		},
		exactFields: []string{u.Username},
		title:       u.DisplayName,
		popularity:  float64(u.Karma) / p.maxViews,
		views:       float64(u.Views),
		clicks:      float64(u.Clicks),
		createdAt:   u.CreatedAt,
	}
}

func companyDoc(c *models.Company) doc {
	return doc{
		fields: []weightedField{
			{c.Name, 1.0},
			{c.Description, 0.5},
			{c.Website, 0.3},
		},
		exactFields: []string{c.Name},
		title:       c.Name,
		popularity:  -1,
		views:       float64(c.Views),
		clicks:      float64(c.Clicks),
		createdAt:   c.CreatedAt,
		verified:    c.Verified,
	}
}

func categoryDoc(c *models.Category) doc {
	return doc{
		fields: []weightedField{
			{c.Name, 1.0},
			{c.Slug, 0.9},
			{c.Description, 0.5},
		},
		exactFields: []string{c.Name, c.Slug},
		title:       c.Name,
		popularity:  -1,
		views:       float64(c.Views),
		clicks:      float64(c.Clicks),
		createdAt:   c.CreatedAt,
	}
}
