// Package repository implements candidate retrieval for the search engine
// on top of the marketplace database
package repository

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/laxmanfhaneendra/savebucks-sub002/errors"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
)

// candidateLimit bounds per-type candidate sets handed to the ranking
// engine; ranking cost is linear in this, so keep it modest.
const candidateLimit = 200

// SearchRepository fetches raw candidate result sets matching a query
// specification. It implements search.Fetcher.
type SearchRepository struct {
	db *gorm.DB
}

// NewSearchRepository creates a repository over the given database handle
func NewSearchRepository(db *gorm.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Fetch retrieves unranked candidates for every entity type the query
// targets. Text matching here is a coarse LIKE prefilter; fine-grained
// relevance is the ranking engine's job.
func (r *SearchRepository) Fetch(ctx context.Context, spec *models.QuerySpec) (models.RawResults, error) {
	var raw models.RawResults

	slog.Debug("fetching search candidates", "query", spec.Query, "type", spec.Type)

	if wants(spec, "deal") {
		if err := r.fetchDeals(ctx, spec, &raw.Deals); err != nil {
			return models.RawResults{}, errors.NewDatabaseError("fetch deal candidates", err)
		}
	}
	if wants(spec, "coupon") {
		if err := r.fetchCoupons(ctx, spec, &raw.Coupons); err != nil {
			return models.RawResults{}, errors.NewDatabaseError("fetch coupon candidates", err)
		}
	}
	if wants(spec, "user") {
		if err := r.fetchUsers(ctx, spec, &raw.Users); err != nil {
			return models.RawResults{}, errors.NewDatabaseError("fetch user candidates", err)
		}
	}
	if wants(spec, "company") {
		if err := r.fetchCompanies(ctx, spec, &raw.Companies); err != nil {
			return models.RawResults{}, errors.NewDatabaseError("fetch company candidates", err)
		}
	}
	if wants(spec, "category") {
		if err := r.fetchCategories(ctx, spec, &raw.Categories); err != nil {
			return models.RawResults{}, errors.NewDatabaseError("fetch category candidates", err)
		}
	}

	return raw, nil
}

func wants(spec *models.QuerySpec, entityType string) bool {
	return spec.Type == "" || spec.Type == "all" || spec.Type == entityType
}

func likePattern(query string) string {
	return "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
}

func (r *SearchRepository) fetchDeals(ctx context.Context, spec *models.QuerySpec, out *[]models.Deal) error {
	q := r.db.WithContext(ctx).Model(&models.Deal{}).Limit(candidateLimit)

	if spec.Query != "" {
		pattern := likePattern(spec.Query)
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(company) LIKE ? OR LOWER(tags) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if len(spec.Categories) > 0 {
		q = q.Where("category IN ?", spec.Categories)
	}
	if len(spec.Companies) > 0 {
		q = q.Where("company IN ?", spec.Companies)
	}
	for _, tag := range spec.Tags {
		q = q.Where("LOWER(tags) LIKE ?", likePattern(tag))
	}
	if spec.MinPrice != nil {
		q = q.Where("price >= ?", *spec.MinPrice)
	}
	if spec.MaxPrice != nil {
		q = q.Where("price <= ?", *spec.MaxPrice)
	}
	if spec.MinDiscount != nil {
		q = q.Where("original_price > 0 AND (original_price - price) / original_price * 100 >= ?", *spec.MinDiscount)
	}
	if spec.HasCoupon != nil {
		q = q.Where("has_coupon = ?", *spec.HasCoupon)
	}

	return q.Find(out).Error
}

func (r *SearchRepository) fetchCoupons(ctx context.Context, spec *models.QuerySpec, out *[]models.Coupon) error {
	q := r.db.WithContext(ctx).Model(&models.Coupon{}).Limit(candidateLimit)

	if spec.Query != "" {
		pattern := likePattern(spec.Query)
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(code) LIKE ? OR LOWER(company) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if len(spec.Categories) > 0 {
		q = q.Where("category IN ?", spec.Categories)
	}
	if len(spec.Companies) > 0 {
		q = q.Where("company IN ?", spec.Companies)
	}

	return q.Find(out).Error
}

func (r *SearchRepository) fetchUsers(ctx context.Context, spec *models.QuerySpec, out *[]models.UserProfile) error {
	q := r.db.WithContext(ctx).Model(&models.UserProfile{}).Limit(candidateLimit)

	if spec.Query != "" {
		pattern := likePattern(spec.Query)
		q = q.Where(
			"LOWER(username) LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(bio) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	return q.Find(out).Error
}

func (r *SearchRepository) fetchCompanies(ctx context.Context, spec *models.QuerySpec, out *[]models.Company) error {
	q := r.db.WithContext(ctx).Model(&models.Company{}).Limit(candidateLimit)

	if spec.Query != "" {
		pattern := likePattern(spec.Query)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if len(spec.Companies) > 0 {
		q = q.Where("name IN ?", spec.Companies)
	}

	return q.Find(out).Error
}

func (r *SearchRepository) fetchCategories(ctx context.Context, spec *models.QuerySpec, out *[]models.Category) error {
	q := r.db.WithContext(ctx).Model(&models.Category{}).Limit(candidateLimit)

	if spec.Query != "" {
		pattern := likePattern(spec.Query)
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(slug) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if len(spec.Categories) > 0 {
		q = q.Where("slug IN ? OR name IN ?", spec.Categories, spec.Categories)
	}

	return q.Find(out).Error
}
