package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/IliaW/bots-checker/internal/agent"
	"github.com/IliaW/bots-checker/internal/checker"
	"github.com/IliaW/bots-checker/internal/model"
	"github.com/IliaW/bots-checker/internal/telemetry"
	"github.com/gin-gonic/gin"
)

type SiteChecker interface {
	CheckSite(ctx context.Context, url string) ([]model.CheckResult, error)
}

type CheckApiHandler struct {
	checker  SiteChecker
	registry *agent.Registry
	metrics  *telemetry.ApiMetrics
}

func NewCheckApiHandler(checker SiteChecker, registry *agent.Registry, metrics *telemetry.ApiMetrics) *CheckApiHandler {
	return &CheckApiHandler{
		checker:  checker,
		registry: registry,
		metrics:  metrics,
	}
}

// GetCheck godoc
// @Summary Check if AI crawlers can access a site
// @Description Fetch the page with the user agent of every registered AI crawler and combine robots.txt, meta robots and HTTP status into a verdict per crawler
// @Tags Check
// @Produce json
// @Param url query string true "URL to check (http or https)"
// @Success 200 {object} model.CheckSiteResponse "Verdict per crawler in registration order"
// @Failure 400 {object} model.ErrorResponse "Missing or invalid url"
// @Router /check [get]
func (h *CheckApiHandler) GetCheck(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "'url' query parameter is required"})
		h.metrics.ErrorResponseCounter(1)
		return
	}

	results, err := h.checker.CheckSite(c.Request.Context(), url)
	if err != nil {
		if errors.Is(err, checker.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			h.metrics.ErrorResponseCounter(1)
			return
		}
		slog.Error("failed to check site.", slog.String("url", url), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		h.metrics.ErrorResponseCounter(1)
		return
	}

	c.JSON(http.StatusOK, model.CheckSiteResponse{
		Url:     url,
		Results: results,
	})
	h.metrics.SuccessResponseCounter(1)
}

// GetAgents godoc
// @Summary List checked AI crawlers
// @Description List the registered AI crawlers in the order they are checked
// @Tags Check
// @Produce json
// @Success 200 {array} model.AgentSpec "Registered crawlers"
// @Router /agents [get]
func (h *CheckApiHandler) GetAgents(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.All())
}
