package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmcastellano/storefront-backend/pkg/enums"
	pkgerrors "github.com/jmcastellano/storefront-backend/pkg/errors"
	"github.com/jmcastellano/storefront-backend/pkg/pagination"
)

// reservedParams are query keys with fixed meaning. Anything else is treated
// as a dynamic specification facet.
var reservedParams = map[string]struct{}{
	"search":        {},
	"page":          {},
	"limit":         {},
	"minPrice":      {},
	"maxPrice":      {},
	"sortBy":        {},
	"sortOrder":     {},
	"categories":    {},
	"subCategories": {},
	"brands":        {},
	"collections":   {},
	"stockStatus":   {},
	"categoryId":    {},
	"category":      {},
}

// SpecificationFilter selects products having at least one of Values for the
// specification identified by Key.
type SpecificationFilter struct {
	Key    string
	Values []string
}

// SearchParams is the normalized, validated filter specification for one
// catalog search. Construct it with ParseSearchParams.
type SearchParams struct {
	Search          string
	CategoryRefs    []string // category ids or slugs
	SubCategoryRefs []string
	BrandIDs        []uuid.UUID
	CollectionIDs   []uuid.UUID
	MinPriceCents   *int64
	MaxPriceCents   *int64
	StockStatuses   []enums.StockStatus
	Specifications  []SpecificationFilter
	SortBy          enums.SortField
	SortOrder       enums.SortOrder
	Page            int
	Limit           int

	// IncludeInactive widens the search to inactive products. It is never
	// parsed from the query string; admin callers set it explicitly.
	IncludeInactive bool
}

// ParseSearchParams normalizes a flat query-string mapping into SearchParams.
// Unknown keys become specification facets; malformed values fail with a
// validation error naming the offending field.
func ParseSearchParams(values url.Values) (SearchParams, error) {
	params := SearchParams{
		SortBy:    enums.SortFieldCreatedAt,
		SortOrder: enums.SortOrderDesc,
		Page:      1,
		Limit:     pagination.DefaultLimit,
	}

	params.Search = strings.TrimSpace(values.Get("search"))

	page, err := parsePositiveInt(values, "page", 1)
	if err != nil {
		return SearchParams{}, err
	}
	params.Page = page

	limit, err := parsePositiveInt(values, "limit", pagination.DefaultLimit)
	if err != nil {
		return SearchParams{}, err
	}
	params.Limit = pagination.NormalizeLimit(limit)

	minCents, err := parsePriceCents(values, "minPrice")
	if err != nil {
		return SearchParams{}, err
	}
	maxCents, err := parsePriceCents(values, "maxPrice")
	if err != nil {
		return SearchParams{}, err
	}
	if minCents != nil && maxCents != nil && *minCents > *maxCents {
		return SearchParams{}, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice").
			WithDetails(map[string]any{"field": "minPrice"})
	}
	params.MinPriceCents = minCents
	params.MaxPriceCents = maxCents

	if raw := strings.TrimSpace(values.Get("sortBy")); raw != "" {
		field, err := enums.ParseSortField(raw)
		if err != nil {
			return SearchParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort field").
				WithDetails(map[string]any{"field": "sortBy"})
		}
		params.SortBy = field
	}
	if raw := strings.TrimSpace(values.Get("sortOrder")); raw != "" {
		order, err := enums.ParseSortOrder(raw)
		if err != nil {
			return SearchParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort order").
				WithDetails(map[string]any{"field": "sortOrder"})
		}
		params.SortOrder = order
	}

	for _, raw := range splitMulti(values["stockStatus"]) {
		status, err := enums.ParseStockStatus(raw)
		if err != nil {
			return SearchParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock status").
				WithDetails(map[string]any{"field": "stockStatus"})
		}
		params.StockStatuses = append(params.StockStatuses, status)
	}

	params.BrandIDs, err = parseUUIDParam(values, "brands")
	if err != nil {
		return SearchParams{}, err
	}
	params.CollectionIDs, err = parseUUIDParam(values, "collections")
	if err != nil {
		return SearchParams{}, err
	}

	categoryRefs := splitMulti(values["categories"])
	categoryRefs = append(categoryRefs, splitMulti(values["categoryId"])...)
	categoryRefs = append(categoryRefs, splitMulti(values["category"])...)
	params.CategoryRefs = dedupe(categoryRefs)
	params.SubCategoryRefs = dedupe(splitMulti(values["subCategories"]))

	params.Specifications = parseSpecifications(values)

	return params, nil
}

func parseSpecifications(values url.Values) []SpecificationFilter {
	keys := make([]string, 0)
	for key := range values {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		keys = append(keys, key)
	}
	// url.Values iteration order is unstable; sorted keys keep the
	// normalized sequence (and the derived cache key) deterministic.
	sort.Strings(keys)

	specs := make([]SpecificationFilter, 0, len(keys))
	for _, key := range keys {
		vals := splitMulti(values[key])
		if len(vals) == 0 {
			continue
		}
		specs = append(specs, SpecificationFilter{Key: key, Values: vals})
	}
	if len(specs) == 0 {
		return nil
	}
	return specs
}

func parsePositiveInt(values url.Values, key string, defaultVal int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	if parsed <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be positive").
			WithDetails(map[string]any{"field": key})
	}
	return parsed, nil
}

func parsePriceCents(values url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative").
			WithDetails(map[string]any{"field": key})
	}
	cents := price.Shift(2).IntPart()
	return &cents, nil
}

func parseUUIDParam(values url.Values, key string) ([]uuid.UUID, error) {
	raws := splitMulti(values[key])
	if len(raws) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raws))
	for _, raw := range raws {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").
				WithDetails(map[string]any{"field": key})
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// splitMulti flattens repeated params and comma-separated lists, discarding
// empty entries.
func splitMulti(raws []string) []string {
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CacheKey renders the full normalized parameter tuple as a deterministic
// string, suitable for keying client-side result caches.
func (p SearchParams) CacheKey() string {
	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(strings.ToLower(p.Search))
	writeList(&b, "cat", p.CategoryRefs)
	writeList(&b, "sub", p.SubCategoryRefs)
	writeList(&b, "brand", uuidStrings(p.BrandIDs))
	writeList(&b, "coll", uuidStrings(p.CollectionIDs))
	b.WriteString("|price=")
	if p.MinPriceCents != nil {
		b.WriteString(strconv.FormatInt(*p.MinPriceCents, 10))
	}
	b.WriteString(":")
	if p.MaxPriceCents != nil {
		b.WriteString(strconv.FormatInt(*p.MaxPriceCents, 10))
	}
	statuses := make([]string, 0, len(p.StockStatuses))
	for _, s := range p.StockStatuses {
		statuses = append(statuses, s.String())
	}
	writeList(&b, "stock", statuses)
	for _, spec := range p.Specifications {
		writeList(&b, "spec."+spec.Key, spec.Values)
	}
	b.WriteString("|sort=")
	b.WriteString(p.SortBy.String())
	b.WriteString(":")
	b.WriteString(p.SortOrder.String())
	b.WriteString("|page=")
	b.WriteString(strconv.Itoa(p.Page))
	b.WriteString("|limit=")
	b.WriteString(strconv.Itoa(p.Limit))
	if p.IncludeInactive {
		b.WriteString("|inactive")
	}
	return b.String()
}

func writeList(b *strings.Builder, name string, values []string) {
	if len(values) == 0 {
		return
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	b.WriteString("|")
	b.WriteString(name)
	b.WriteString("=")
	b.WriteString(strings.Join(sorted, ","))
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
