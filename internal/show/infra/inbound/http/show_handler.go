package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	"github.com/davicafu/hexaspec/internal/show/application"
	"github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/filesystem"
	"github.com/davicafu/hexaspec/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ShowHandler encapsula los endpoints HTTP del catálogo.
type ShowHandler struct {
	service   *application.ShowService
	analytics domain.ShowAnalyticsRepository
	pageLimit int
	maxLimit  int
	log       *zap.Logger
}

// NewShowHandler crea el handler. analytics puede ser nil.
func NewShowHandler(service *application.ShowService, analytics domain.ShowAnalyticsRepository, pageLimit, maxLimit int, log *zap.Logger) *ShowHandler {
	return &ShowHandler{
		service:   service,
		analytics: analytics,
		pageLimit: pageLimit,
		maxLimit:  maxLimit,
		log:       log,
	}
}

type priceRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type createShowRequest struct {
	Name               string       `json:"name" binding:"required"`
	Synopsis           string       `json:"synopsis"`
	Genre              string       `json:"genre"`
	AvailableOnNetflix bool         `json:"available_on_netflix"`
	ReleaseDate        *string      `json:"release_date"`
	Stars              []int        `json:"stars"`
	Price              priceRequest `json:"price"`
}

func (r createShowRequest) toShow() *domain.TvShow {
	s := &domain.TvShow{
		Name:               r.Name,
		Synopsis:           r.Synopsis,
		AvailableOnNetflix: r.AvailableOnNetflix,
		ReleaseDate:        r.ReleaseDate,
		Price:              domain.Price{Amount: r.Price.Amount, Currency: r.Price.Currency},
	}
	if r.Genre != "" {
		s.Genre = &domain.Genre{Name: r.Genre}
	}
	for _, stars := range r.Stars {
		s.StarRatings = append(s.StarRatings, domain.StarRating{Stars: stars})
	}
	return s
}

// ---------------- Handlers ----------------

// CreateShow endpoint POST /shows
func (h *ShowHandler) CreateShow(c *gin.Context) {
	var req createShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	show, err := h.service.CreateShow(c.Request.Context(), req.toShow())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, show)
}

// GetShow endpoint GET /shows/:id
func (h *ShowHandler) GetShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	show, err := h.service.GetShow(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, show)
}

// DeleteShow endpoint DELETE /shows/:id
func (h *ShowHandler) DeleteShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteShow(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListShows endpoint GET /shows?name=&netflix=&keyword=&release_date=&genre=&min_stars=&max_price=&limit=&offset=&sort=
func (h *ShowHandler) ListShows(c *gin.Context) {
	q, err := parseShowQuery(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	h.page(c, domain.ShowQueries{q})
}

// SearchShows endpoint POST /shows/search; el cuerpo es una lista de
// filtros que se combinan con OR.
func (h *ShowHandler) SearchShows(c *gin.Context) {
	var queries domain.ShowQueries
	if err := c.ShouldBindJSON(&queries); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	h.page(c, queries)
}

func (h *ShowHandler) page(c *gin.Context, queries domain.ShowQueries) {
	page, err := h.parsePage(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	shows, err := h.service.SearchShows(ctx, queries, page, sharedQuery.ParseSort(c.Query("sort")))
	if err != nil {
		h.fail(c, err)
		return
	}
	total, err := h.service.CountShows(ctx, queries)
	if err != nil {
		h.fail(c, err)
		return
	}
	if shows == nil {
		shows = []*domain.TvShow{}
	}
	utils.SendPage(c, shows, utils.PageMeta{Limit: page.Limit, Offset: page.Offset, Count: len(shows), Total: total})
}

// CountShows endpoint GET /shows/count
func (h *ShowHandler) CountShows(c *gin.Context) {
	q, err := parseShowQuery(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	n, err := h.service.CountShows(c.Request.Context(), domain.ShowQueries{q})
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"count": n})
}

// ExportShows endpoint GET /shows/export; devuelve un xlsx con las series filtradas.
func (h *ShowHandler) ExportShows(c *gin.Context) {
	q, err := parseShowQuery(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	shows, err := h.service.SearchShows(c.Request.Context(), domain.ShowQueries{q}, sharedQuery.OffsetPagination{}, sharedQuery.ParseSort(c.Query("sort")))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shows.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := filesystem.WriteWorkbook(c.Writer, shows); err != nil {
		h.log.Error("Failed to write workbook", zap.Error(err))
	}
}

// CountLogged endpoint GET /shows/analytics/count?event_type=show.created&...
func (h *ShowHandler) CountLogged(c *gin.Context) {
	if h.analytics == nil {
		utils.SendError(c, http.StatusNotImplemented, "not_implemented", "analytics disabled")
		return
	}
	q, err := parseShowQuery(c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	eventType := c.DefaultQuery("event_type", domain.ShowCreated)

	n, err := h.analytics.CountMatching(c.Request.Context(), q.ToSpecification(), eventType)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"event_type": eventType, "count": n})
}

// ---------------- Helpers ----------------

// fail traduce errores de dominio y de resolución de atributos a HTTP.
func (h *ShowHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrShowNotFound):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidShow),
		errors.Is(err, spec.ErrUnknownAttribute),
		errors.Is(err, spec.ErrNotTraversable),
		errors.Is(err, spec.ErrUnsupported):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrShowAlreadyExists), errors.Is(err, domain.ErrShowNotUnique):
		utils.SendConflict(c, err.Error())
	default:
		h.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.SendInternalServerError(c, "internal error")
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid show id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ShowHandler) parsePage(c *gin.Context) (sharedQuery.OffsetPagination, error) {
	var page sharedQuery.OffsetPagination
	var err error
	if v := c.Query("limit"); v != "" {
		if page.Limit, err = strconv.Atoi(v); err != nil {
			return page, errors.New("invalid limit")
		}
	}
	if v := c.Query("offset"); v != "" {
		if page.Offset, err = strconv.Atoi(v); err != nil {
			return page, errors.New("invalid offset")
		}
	}
	return page.Clamp(h.pageLimit, h.maxLimit), nil
}

// parseShowQuery lee los filtros de la query string; keyword y
// release_date pueden repetirse.
func parseShowQuery(c *gin.Context) (domain.ShowQuery, error) {
	var q domain.ShowQuery

	if v, ok := c.GetQuery("name"); ok {
		q.Name = &v
	}
	if v, ok := c.GetQuery("genre"); ok {
		q.Genre = &v
	}
	if v := c.Query("netflix"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, errors.New("invalid netflix flag")
		}
		q.AvailableOnNetflix = &b
	}
	if v := c.Query("min_stars"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, errors.New("invalid min_stars")
		}
		q.MinStars = &n
	}
	if v := c.Query("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, errors.New("invalid max_price")
		}
		q.MaxPrice = &f
	}
	q.Keywords = c.QueryArray("keyword")
	q.ReleaseDates = c.QueryArray("release_date")
	return q, nil
}
