package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/laxmanfhaneendra/savebucks-sub002/models"
)

// canonicalSpec is the normalized form of a QuerySpec used for key
// derivation. Every field is defaulted so that an omitted field and an
// explicitly defaulted one serialize identically, and array filters are
// sorted so ordering differences collide to the same key.
type canonicalSpec struct {
	Query       string   `json:"query"`
	Type        string   `json:"type"`
	Categories  []string `json:"categories"`
	Companies   []string `json:"companies"`
	Tags        []string `json:"tags"`
	MinPrice    float64  `json:"min_price"`
	MaxPrice    float64  `json:"max_price"`
	MinDiscount float64  `json:"min_discount"`
	HasCoupon   string   `json:"has_coupon"`
	Sort        string   `json:"sort"`
	Page        int      `json:"page"`
	Limit       int      `json:"limit"`
}

func canonicalize(spec *models.QuerySpec) canonicalSpec {
	c := canonicalSpec{
		Query:      strings.ToLower(strings.TrimSpace(spec.Query)),
		Type:       spec.Type,
		Categories: sortedCopy(spec.Categories),
		Companies:  sortedCopy(spec.Companies),
		Tags:       sortedCopy(spec.Tags),
		HasCoupon:  "any",
		Sort:       spec.Sort,
		Page:       spec.Page,
		Limit:      spec.Limit,
	}
	if c.Type == "" {
		c.Type = "all"
	}
	if c.Sort == "" {
		c.Sort = "relevance"
	}
	if c.Page < 1 {
		c.Page = 1
	}
	if c.Limit < 1 {
		c.Limit = 20
	}
	if spec.MinPrice != nil {
		c.MinPrice = *spec.MinPrice
	}
	if spec.MaxPrice != nil {
		c.MaxPrice = *spec.MaxPrice
	}
	if spec.MinDiscount != nil {
		c.MinDiscount = *spec.MinDiscount
	}
	if spec.HasCoupon != nil {
		if *spec.HasCoupon {
			c.HasCoupon = "true"
		} else {
			c.HasCoupon = "false"
		}
	}
	return c
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Key derives the deterministic cache key for a query specification.
// The readable prefix keeps substring invalidation usable; the hash
// guarantees uniqueness across the remaining filters.
func Key(spec *models.QuerySpec) string {
	c := canonicalize(spec)

	data, err := json.Marshal(c)
	if err != nil {
		// canonicalSpec contains only marshalable fields; unreachable
		data = []byte(c.Query)
	}
	sum := sha256.Sum256(data)

	var b strings.Builder
	b.WriteString("search:")
	b.WriteString(c.Type)
	b.WriteString(":")
	b.WriteString(strings.ReplaceAll(c.Query, " ", "-"))
	for _, company := range c.Companies {
		b.WriteString(":")
		b.WriteString(strings.ToLower(company))
	}
	b.WriteString(":")
	b.WriteString(hex.EncodeToString(sum[:])[:16])
	return b.String()
}
