package integrity

import (
	"errors"

	"account-audit/core/logger"
	"account-audit/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/stores", h.HandleStoresCheck)
	group.Get("/storage", h.HandleStorageCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs the store schema and report storage checks.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if stores, err := h.service.CheckStores(ctx); err != nil {
		report["stores"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["stores"] = stores
	}

	if bucket, err := h.service.CheckStorage(ctx, false); err != nil {
		report["storage"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = bucket
	}

	return c.JSON(report)
}

// HandleStoresCheck checks the schema of every store.
// @Summary Check Store Schemas
// @Description Checks that the archiver and every node store carry the expected account table and columns.
// @Tags integrity
// @Produce json
// @Success 200 {object} StoresReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/stores [get]
func (h *Handler) HandleStoresCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting store schema check")

	report, err := h.service.CheckStores(c.Context())
	if err != nil {
		l.Error("Store schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the report bucket.
// @Summary Check Report Storage
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket and prefix when missing"
// @Success 200 {object} checks.BucketReport
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	report, err := h.service.CheckStorage(c.Context(), fix)
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrStorageDisabled) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
