package accounts

import (
	"errors"

	"account-audit/core/logger"
	"account-audit/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for account audits.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the account routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/accounts")
	group.Get("/audit", h.HandleAudit)
	group.Post("/audit/refresh", h.HandleRefresh)
	group.Get("/reports", h.HandleListReports)
	group.Get("/reports/*", h.HandleGetReport)
	group.Get("/:id", h.HandleLookup)
}

// HandleAudit runs a full audit.
// @Summary Audit Accounts
// @Description Reconciles the archiver against every node store. Only mismatches are listed unless verbose is set.
// @Tags accounts
// @Produce json
// @Param verbose query boolean false "Include matches and orphans"
// @Param publish query boolean false "Publish the report to storage"
// @Success 200 {object} models.AuditReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /accounts/audit [get]
func (h *Handler) HandleAudit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	verbose := utils.ToBool(c.Query("verbose"))

	report, err := h.service.Audit(c.Context(), verbose)
	if err != nil {
		l.Error("Audit failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Audit completed",
		zap.Int("comparisons", report.Summary.TotalComparisons),
		zap.Int("mismatches", report.Summary.Mismatches))

	if utils.ToBool(c.Query("publish")) {
		key, err := h.service.Publish(c.Context(), report)
		if err != nil {
			l.Error("Report publishing failed", zap.Error(err))
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set("X-Report-Key", key)
	}

	return c.JSON(report)
}

// HandleRefresh drops the cached snapshot.
// @Summary Refresh Account Snapshot
// @Tags accounts
// @Success 204
// @Router /accounts/audit/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	h.service.Invalidate()
	logger.WithRayID(h.service.logger, c).Info("Account snapshot invalidated")
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleLookup reconciles a single account.
// @Summary Lookup Account
// @Description Compares one account across the archiver and every node.
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} models.AuditReport
// @Failure 404 {object} map[string]string "Account not found in any store"
// @Router /accounts/{id} [get]
func (h *Handler) HandleLookup(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	id := c.Params("id")

	report, err := h.service.Lookup(c.Context(), id)
	if err != nil {
		l.Error("Lookup failed", zap.String("account_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(report.Comparisons) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found", "id": id})
	}
	return c.JSON(report)
}

// HandleListReports lists published reports.
// @Summary List Reports
// @Tags accounts
// @Produce json
// @Success 200 {array} storage.Object
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /accounts/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	objects, err := h.service.Reports(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Listing reports failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(objects)
}

// HandleGetReport returns one published report.
// @Summary Get Report
// @Tags accounts
// @Produce json
// @Param key path string true "Object key"
// @Success 200 {object} models.AuditReport
// @Failure 404 {object} map[string]string "Key outside the report prefix"
// @Router /accounts/reports/{key} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	report, err := h.service.FetchReport(c.Context(), c.Params("*"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Fetching report failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

func statusFor(err error) int {
	if errors.Is(err, ErrStorageDisabled) {
		return fiber.StatusServiceUnavailable
	}
	if errors.Is(err, ErrReportNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}
