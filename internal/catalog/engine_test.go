package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcastellano/storefront-backend/pkg/enums"
	pkgerrors "github.com/jmcastellano/storefront-backend/pkg/errors"
)

func searchSlugs(result *SearchResult) []string {
	slugs := make([]string, 0, len(result.Products))
	for _, p := range result.Products {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

func mustSearch(t *testing.T, repo *Repository, params SearchParams) *SearchResult {
	t.Helper()
	products, total, err := repo.SearchProducts(context.Background(), Compile(params), params)
	require.NoError(t, err)
	return &SearchResult{Products: products, TotalCount: total, Page: params.Page, Limit: params.Limit}
}

func baseParams() SearchParams {
	return SearchParams{
		SortBy:    enums.SortFieldCreatedAt,
		SortOrder: enums.SortOrderDesc,
		Page:      1,
		Limit:     24,
	}
}

func TestSearchExcludesInactiveProducts(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	result := mustSearch(t, repo, baseParams())
	assert.Equal(t, int64(12), result.TotalCount)
	assert.NotContains(t, searchSlugs(result), "retired-radio")

	params := baseParams()
	params.IncludeInactive = true
	result = mustSearch(t, repo, params)
	assert.Equal(t, int64(13), result.TotalCount)
	assert.Contains(t, searchSlugs(result), "retired-radio")
}

func TestSearchTextMatchesNameAndDescriptionCaseInsensitive(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.Search = "HeadPhones"
	result := mustSearch(t, repo, params)
	assert.ElementsMatch(t, []string{"studio-headphones", "noise-cancelling-headphones"}, searchSlugs(result))

	// "LED" appears only in the camp lantern's description.
	params = baseParams()
	params.Search = "led"
	result = mustSearch(t, repo, params)
	assert.Contains(t, searchSlugs(result), "camp-lantern")
}

func TestSearchFiltersCombineWithAND(t *testing.T) {
	db := setupCatalogTestDB(t)
	f := seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.CategoryRefs = []string{"audio"}
	params.BrandIDs = []uuid.UUID{f.brandBolt.ID}
	result := mustSearch(t, repo, params)
	assert.ElementsMatch(t, []string{"budget-earbuds", "noise-cancelling-headphones"}, searchSlugs(result))
	assert.Equal(t, int64(2), result.TotalCount)
}

func TestSearchCategoryAcceptsIDOrSlug(t *testing.T) {
	db := setupCatalogTestDB(t)
	f := seedCatalog(t, db)
	repo := NewRepository(db)

	bySlug := baseParams()
	bySlug.CategoryRefs = []string{"outdoors"}
	byID := baseParams()
	byID.CategoryRefs = []string{f.catOutdoors.ID.String()}

	slugResult := mustSearch(t, repo, bySlug)
	idResult := mustSearch(t, repo, byID)
	assert.Equal(t, searchSlugs(slugResult), searchSlugs(idResult))
	assert.Equal(t, int64(4), slugResult.TotalCount)
}

func TestSearchSpecificationValuesORWithinKeyANDAcrossKeys(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	// Values of the same key widen the match.
	params := baseParams()
	params.Specifications = []SpecificationFilter{{Key: "color", Values: []string{"red", "black"}}}
	result := mustSearch(t, repo, params)
	assert.ElementsMatch(t,
		[]string{"trail-speaker", "budget-earbuds", "camp-lantern", "studio-headphones", "solar-charger"},
		searchSlugs(result))

	// A second key narrows it.
	params.Specifications = append(params.Specifications,
		SpecificationFilter{Key: "material", Values: []string{"aluminum"}})
	result = mustSearch(t, repo, params)
	assert.ElementsMatch(t, []string{"trail-speaker"}, searchSlugs(result))
}

func TestSearchCollectionFilter(t *testing.T) {
	db := setupCatalogTestDB(t)
	f := seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.CollectionIDs = []uuid.UUID{f.collSummer.ID}
	result := mustSearch(t, repo, params)
	assert.ElementsMatch(t,
		[]string{"trail-speaker", "budget-earbuds", "camp-lantern", "solar-charger"},
		searchSlugs(result))
}

func TestSearchPriceBoundsAreInclusive(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	min, max := int64(4599), int64(7999)
	params := baseParams()
	params.MinPriceCents = &min
	params.MaxPriceCents = &max
	result := mustSearch(t, repo, params)
	assert.ElementsMatch(t, []string{"trail-speaker", "camp-lantern", "solar-charger"}, searchSlugs(result))
}

func TestSearchZeroPriceBoundsMatchFreeProducts(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	zero := int64(0)
	params := baseParams()
	params.MinPriceCents = &zero
	params.MaxPriceCents = &zero
	result := mustSearch(t, repo, params)
	assert.Equal(t, []string{"free-sticker"}, searchSlugs(result))
	assert.Equal(t, int64(1), result.TotalCount)
}

func TestSearchNoMatchesReturnsEmptyPage(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.StockStatuses = []enums.StockStatus{enums.StockStatusDiscontinued}
	result := mustSearch(t, repo, params)
	assert.Empty(t, result.Products)
	assert.Equal(t, int64(0), result.TotalCount)
}

func TestSearchPagePastEndReturnsEmptyWithRealTotal(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.Page = 50
	params.Limit = 10
	result := mustSearch(t, repo, params)
	assert.Empty(t, result.Products)
	assert.Equal(t, int64(12), result.TotalCount)
}

func TestSearchPaginationNeverDuplicatesOrSkips(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	seen := map[uuid.UUID]struct{}{}
	ordered := make([]uuid.UUID, 0, 12)
	for page := 1; page <= 3; page++ {
		params := baseParams()
		params.Page = page
		params.Limit = 5
		result := mustSearch(t, repo, params)
		for _, p := range result.Products {
			_, dup := seen[p.ID]
			require.Falsef(t, dup, "product %s returned twice", p.Slug)
			seen[p.ID] = struct{}{}
			ordered = append(ordered, p.ID)
		}
	}
	assert.Len(t, ordered, 12)

	// The concatenated pages must equal one big page in the same order.
	params := baseParams()
	params.Limit = 100
	full := mustSearch(t, repo, params)
	fullIDs := make([]uuid.UUID, 0, len(full.Products))
	for _, p := range full.Products {
		fullIDs = append(fullIDs, p.ID)
	}
	assert.Equal(t, fullIDs, ordered)
}

func TestSearchTieBreakIsDeterministic(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	// The three alpha widgets share a created_at newer than everything else,
	// so with createdAt DESC they lead the list ordered by id ASC.
	result := mustSearch(t, repo, baseParams())
	require.GreaterOrEqual(t, len(result.Products), 3)
	assert.Equal(t, "alpha-widget-a", result.Products[0].Slug)
	assert.Equal(t, "alpha-widget-b", result.Products[1].Slug)
	assert.Equal(t, "alpha-widget-c", result.Products[2].Slug)
}

func TestSearchSortByPriceAscending(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.SortBy = enums.SortFieldPrice
	params.SortOrder = enums.SortOrderAsc
	result := mustSearch(t, repo, params)
	require.NotEmpty(t, result.Products)
	assert.Equal(t, "free-sticker", result.Products[0].Slug)
	for i := 1; i < len(result.Products); i++ {
		assert.LessOrEqual(t, result.Products[i-1].PriceCents, result.Products[i].PriceCents)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.CategoryRefs = []string{"audio"}
	params.Limit = 3

	first := mustSearch(t, repo, params)
	second := mustSearch(t, repo, params)
	assert.Equal(t, first, second)
}

func TestSearchSummaryCarriesDenormalizedLabels(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	params := baseParams()
	params.Search = "Trail Speaker"
	result := mustSearch(t, repo, params)
	require.Len(t, result.Products, 1)

	p := result.Products[0]
	assert.Equal(t, "Acme Audio", p.BrandName)
	assert.Equal(t, "acme", p.BrandSlug)
	assert.Equal(t, "Audio", p.CategoryName)
	assert.Equal(t, "audio", p.CategorySlug)
	assert.Equal(t, "79.99", p.Price)
	assert.Equal(t, int64(7999), p.PriceCents)
	assert.Equal(t, "IN_STOCK", p.StockStatus)
}

func TestFacetCountsExcludeOwnDimension(t *testing.T) {
	db := setupCatalogTestDB(t)
	f := seedCatalog(t, db)
	repo := NewRepository(db)
	svc := NewService(repo, nil, nil, testLogger()).(*service)

	params := baseParams()
	params.BrandIDs = []uuid.UUID{f.brandAcme.ID}
	clauses := Compile(params)

	groups, err := svc.aggregateFacets(context.Background(), clauses,
		[]FacetDimension{DimensionBrand, DimensionCategory})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Brand facet ignores the brand filter: all three brands stay visible.
	brandCounts := map[string]int64{}
	for _, v := range groups[0].Values {
		brandCounts[v.Label] = v.Count
	}
	assert.Equal(t, map[string]int64{"Acme Audio": 5, "Bolt Gear": 4, "Crag Supply": 3}, brandCounts)

	// Category facet still honors the brand filter.
	categoryCounts := map[string]int64{}
	for _, v := range groups[1].Values {
		categoryCounts[v.Label] = v.Count
	}
	assert.Equal(t, map[string]int64{"Audio": 2, "Electronics": 3}, categoryCounts)
}

func TestFacetSpecificationDimension(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)
	svc := NewService(repo, nil, nil, testLogger()).(*service)

	// Filtering on color must not narrow the color facet itself.
	params := baseParams()
	params.Specifications = []SpecificationFilter{{Key: "color", Values: []string{"red"}}}

	groups, err := svc.aggregateFacets(context.Background(), Compile(params),
		[]FacetDimension{SpecDimension("color")})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	counts := map[string]int64{}
	for _, v := range groups[0].Values {
		counts[v.Value] = v.Count
	}
	assert.Equal(t, map[string]int64{"red": 3, "black": 2, "blue": 1}, counts)
}

func TestFacetStockStatusAndCollections(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)
	svc := NewService(repo, nil, nil, testLogger()).(*service)

	groups, err := svc.aggregateFacets(context.Background(), Compile(baseParams()),
		[]FacetDimension{DimensionStockStatus, DimensionCollection})
	require.NoError(t, err)

	statusCounts := map[string]int64{}
	for _, v := range groups[0].Values {
		statusCounts[v.Value] = v.Count
	}
	assert.Equal(t, map[string]int64{
		"IN_STOCK":     9,
		"LOW_STOCK":    1,
		"OUT_OF_STOCK": 1,
		"BACKORDER":    1,
	}, statusCounts)

	collectionCounts := map[string]int64{}
	for _, v := range groups[1].Values {
		collectionCounts[v.Label] = v.Count
	}
	assert.Equal(t, map[string]int64{"Summer Sale": 4, "Staff Picks": 2}, collectionCounts)
}

func TestProductBySlug(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)
	svc := NewService(repo, nil, nil, testLogger())

	detail, err := svc.ProductBySlug(context.Background(), "camp-lantern")
	require.NoError(t, err)
	assert.Equal(t, "Camp Lantern", detail.Name)
	assert.Equal(t, "45.99", detail.Price)
	require.NotNil(t, detail.Description)
	require.Len(t, detail.Specifications, 1)
	assert.Equal(t, "color", detail.Specifications[0].Key)
	assert.Equal(t, "Color", detail.Specifications[0].Label)
	assert.Equal(t, "red", detail.Specifications[0].Value)

	// Inactive products are invisible on the detail endpoint too.
	_, err = svc.ProductBySlug(context.Background(), "retired-radio")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.ProductBySlug(context.Background(), "no-such-product")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
