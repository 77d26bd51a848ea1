package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/theater-seating/internal/queue"
	"github.com/iliyamo/theater-seating/internal/ticket"
)

// Import handles POST /v1/imports: a multipart "file" holding a CSV or
// XLSX ticket export. Orders are seated earliest purchase first and the
// whole batch is committed or rejected as one.
func (h *ChartHandler) Import(maxBytes int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart field \"file\" required"})
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "ticket file too large"})
		}
		src, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read upload"})
		}
		defer src.Close()

		orders, err := ticket.Read(fh.Filename, src)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		importID := uuid.New()
		h.mu.Lock()
		res, err := h.ctrl.ImportTickets(c.Request().Context(), orders)
		h.mu.Unlock()
		if err != nil {
			h.log.Info("import rejected", zap.String("import_id", importID.String()),
				zap.String("file", fh.Filename), zap.Error(err))
			return writeError(c, err)
		}

		h.publish(c.Request().Context(), queue.NewImportCompleted(importID, h.chartID, res))
		return c.JSON(http.StatusCreated, echo.Map{
			"import_id": importID.String(),
			"orders":    len(orders),
			"groups":    res.Groups,
			"seats":     res.Seats(),
		})
	}
}
