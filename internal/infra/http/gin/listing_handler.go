package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	listingsapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
)

type ListingHandler struct {
	Queries queries.Bus
}

func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := listingsapp.SearchCatalogQuery{
		City:    c.Query("city"),
		Country: c.Query("country"),
	}
	q.PriceMinCents = parseInt64Query(c, "price_min_cents")
	q.PriceMaxCents = parseInt64Query(c, "price_max_cents")
	q.Limit = int(parseInt64Query(c, "limit"))
	q.Offset = int(parseInt64Query(c, "offset"))

	result, err := queries.Ask[listingsapp.SearchCatalogQuery, dto.CatalogPage](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Overview(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[listingsapp.GetOverviewQuery, dto.ListingView](c.Request.Context(), h.Queries, listingsapp.GetOverviewQuery{
		ListingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseInt64Query(c *gin.Context, key string) int64 {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var _ ListingHTTP = ListingHandler{}
