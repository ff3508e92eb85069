// Package ranking orders heterogeneous search results either by an
// explicit sort mode or by a computed relevance score combining text
// match, popularity, recency and engagement features.
package ranking

import (
	"sort"
	"strings"

	"github.com/laxmanfhaneendra/savebucks-sub002/models"
	"github.com/laxmanfhaneendra/savebucks-sub002/pkg/validation"
)

// Engine ranks raw result sets. It holds no mutable state and is safe
// for concurrent use.
type Engine struct{}

// NewEngine creates a ranking engine
func NewEngine() *Engine {
	return &Engine{}
}

// Rank orders every entity list in raw according to the query spec.
// Input slices are not mutated; empty lists pass through unchanged.
func (e *Engine) Rank(raw models.RawResults, spec *models.QuerySpec) models.RawResults {
	mode := spec.Sort
	if mode == "" {
		mode = "relevance"
	}

	if mode != "relevance" {
		return models.RawResults{
			Deals:      sortDeals(raw.Deals, mode),
			Coupons:    sortCoupons(raw.Coupons, mode),
			Users:      sortUsers(raw.Users, mode),
			Companies:  sortCompanies(raw.Companies, mode),
			Categories: sortCategories(raw.Categories, mode),
		}
	}

	query := spec.Query
	return models.RawResults{
		Deals: rankByScore(raw.Deals, func(d *models.Deal) float64 {
			return score(dealDoc(d), query, dealProfile)
		}),
		Coupons: rankByScore(raw.Coupons, func(c *models.Coupon) float64 {
			return score(couponDoc(c), query, couponProfile)
		}),
		Users: rankByScore(raw.Users, func(u *models.UserProfile) float64 {
			return score(userDoc(u, userProfile), query, userProfile)
		}),
		Companies: rankByScore(raw.Companies, func(c *models.Company) float64 {
			return score(companyDoc(c), query, companyProfile)
		}),
		Categories: rankByScore(raw.Categories, func(c *models.Category) float64 {
			return score(categoryDoc(c), query, categoryProfile)
		}),
	}
}

// rankByScore computes an ephemeral score per item and stable-sorts
// descending; ties keep their original relative order. Scores are
// discarded before returning.
func rankByScore[T any](items []T, scoreFn func(*T) float64) []T {
	if len(items) == 0 {
		return items
	}

	out := make([]T, len(items))
	copy(out, items)

	scores := make([]float64, len(out))
	for i := range out {
		scores[i] = scoreFn(&out[i])
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	ranked := make([]T, len(out))
	for pos, i := range idx {
		ranked[pos] = out[i]
	}
	return ranked
}

func sortStable[T any](items []T, less func(a, b *T) bool) []T {
	if len(items) == 0 {
		return items
	}
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return less(&out[i], &out[j])
	})
	return out
}

func sortDeals(deals []models.Deal, mode string) []models.Deal {
	switch mode {
	case "newest":
		return sortStable(deals, func(a, b *models.Deal) bool { return a.CreatedAt.After(b.CreatedAt) })
	case "oldest":
		return sortStable(deals, func(a, b *models.Deal) bool { return a.CreatedAt.Before(b.CreatedAt) })
	case "popular":
		return sortStable(deals, func(a, b *models.Deal) bool { return a.Views > b.Views })
	case "price_low":
		return sortStable(deals, func(a, b *models.Deal) bool { return a.Price < b.Price })
	case "price_high":
		return sortStable(deals, func(a, b *models.Deal) bool { return a.Price > b.Price })
	case "discount":
		return sortStable(deals, func(a, b *models.Deal) bool { return a.DiscountPercent() > b.DiscountPercent() })
	}
	return deals
}

func sortCoupons(coupons []models.Coupon, mode string) []models.Coupon {
	switch mode {
	case "newest":
		return sortStable(coupons, func(a, b *models.Coupon) bool { return a.CreatedAt.After(b.CreatedAt) })
	case "oldest":
		return sortStable(coupons, func(a, b *models.Coupon) bool { return a.CreatedAt.Before(b.CreatedAt) })
	case "popular":
		return sortStable(coupons, func(a, b *models.Coupon) bool { return a.Views > b.Views })
	case "discount":
		return sortStable(coupons, func(a, b *models.Coupon) bool { return a.DiscountValue > b.DiscountValue })
	}
	// price modes do not apply to coupons; original order preserved
	return coupons
}

func sortUsers(users []models.UserProfile, mode string) []models.UserProfile {
	switch mode {
	case "newest":
		return sortStable(users, func(a, b *models.UserProfile) bool { return a.CreatedAt.After(b.CreatedAt) })
	case "oldest":
		return sortStable(users, func(a, b *models.UserProfile) bool { return a.CreatedAt.Before(b.CreatedAt) })
	case "popular":
		// karma, not views, is the popularity signal for users
		return sortStable(users, func(a, b *models.UserProfile) bool { return a.Karma > b.Karma })
	}
	return users
}

func sortCompanies(companies []models.Company, mode string) []models.Company {
	switch mode {
	case "newest":
		return sortStable(companies, func(a, b *models.Company) bool { return a.CreatedAt.After(b.CreatedAt) })
	case "oldest":
		return sortStable(companies, func(a, b *models.Company) bool { return a.CreatedAt.Before(b.CreatedAt) })
	case "popular":
		return sortStable(companies, func(a, b *models.Company) bool { return a.Views > b.Views })
	}
	return companies
}

func sortCategories(categories []models.Category, mode string) []models.Category {
	switch mode {
	case "newest":
		return sortStable(categories, func(a, b *models.Category) bool { return a.CreatedAt.After(b.CreatedAt) })
	case "oldest":
		return sortStable(categories, func(a, b *models.Category) bool { return a.CreatedAt.Before(b.CreatedAt) })
	case "popular":
		return sortStable(categories, func(a, b *models.Category) bool { return a.Views > b.Views })
	}
	return categories
}

func normalizeQuery(q string) string {
	return validation.NormalizeQuery(q)
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}
