package router

import (
	"context"
	"net/http"

	"github.com/DjordjeVuckovic/news-spool/internal/dto"
	"github.com/DjordjeVuckovic/news-spool/internal/search"
	"github.com/labstack/echo/v4"
)

type Searcher interface {
	Search(ctx context.Context, req search.Request) (*dto.SearchResponse, error)
	Latest(ctx context.Context) (*dto.SearchResponse, error)
}

type SearchRouter struct {
	e       *echo.Echo
	service Searcher
}

func NewSearchRouter(e *echo.Echo, service Searcher) *SearchRouter {
	return &SearchRouter{
		e:       e,
		service: service,
	}
}

func (r *SearchRouter) Bind() {
	r.e.GET("/search/", r.searchHandler)
	r.e.GET("/latest/", r.latestHandler)
}

// searchHandler godoc
// @Summary Hybrid article search
// @Description Blends a title match with a kNN search over article embeddings. Filters restrict both.
// @Tags search
// @Produce json
// @Param query query string true "Free text query" minlength(1)
// @Param date query string false "Publish date window" Enums(today, 24h, week, month, 3months)
// @Param authors query string false "Exact author name"
// @Param sources query []string false "Source domains, repeated or comma separated" collectionFormat(multi)
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /search/ [get]
func (r *SearchRouter) searchHandler(c echo.Context) error {
	req := search.Request{
		Query:   c.QueryParam("query"),
		Date:    c.QueryParam("date"),
		Authors: c.QueryParam("authors"),
		Sources: c.QueryParams()["sources"],
	}

	res, err := r.service.Search(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

// latestHandler godoc
// @Summary Latest articles
// @Description The 20 most recently published articles.
// @Tags search
// @Produce json
// @Success 200 {object} dto.SearchResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /latest/ [get]
func (r *SearchRouter) latestHandler(c echo.Context) error {
	res, err := r.service.Latest(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}
