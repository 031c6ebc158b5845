package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/services"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Complaints"

var exportHeader = []interface{}{
	"Complaint ID", "User ID", "Train No", "PNR No", "Coach No", "Seat No",
	"Category", "Department", "Auto Desc", "Status", "Archived",
	"Resolution", "Resolved Month", "Created At",
}

// AnalyticsHandler handles staff analytics and export endpoints
type AnalyticsHandler struct {
	analyticsSvc *services.AnalyticsService
	complaintSvc *services.ComplaintService
	logger       *zap.SugaredLogger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(as *services.AnalyticsService, cs *services.ComplaintService, logger *zap.SugaredLogger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: as, complaintSvc: cs, logger: logger}
}

// Status handles GET /analytics/status
func (h *AnalyticsHandler) Status(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analyticsSvc.StatusCounts(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to count complaints by status", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// Categories handles GET /analytics/categories
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	dist, err := h.analyticsSvc.Categories(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to fetch category distribution", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}
	if dist == nil {
		dist = []models.CategoryDistribution{}
	}
	respondJSON(w, http.StatusOK, dist)
}

// MonthlyResolutions handles GET /analytics/monthly-resolutions
func (h *AnalyticsHandler) MonthlyResolutions(w http.ResponseWriter, r *http.Request) {
	months, err := h.analyticsSvc.MonthlyResolutions(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to fetch monthly resolutions", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}
	if months == nil {
		months = []models.MonthlyResolution{}
	}
	respondJSON(w, http.StatusOK, months)
}

// Export handles GET /complaintslogs/export.xlsx
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaintSvc.List(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to list complaints for export", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
		return
	}

	f, err := buildWorkbook(complaints)
	if err != nil {
		h.logger.Errorw("Failed to build export workbook", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to export complaints")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("complaints-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := f.WriteTo(w); err != nil {
		h.logger.Warnw("Failed to stream export", "error", err)
	}

	h.logger.Infow("Complaint log exported", "rows", len(complaints))
}

// buildWorkbook writes one header row and one row per complaint.
func buildWorkbook(complaints []models.Complaint) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}

	for i, c := range complaints {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{
			c.ID,
			c.UserID,
			models.StrVal(c.TrainNo),
			models.StrVal(c.PNRNo),
			models.StrVal(c.CoachNo),
			models.StrVal(c.SeatNo),
			models.StrVal(c.Category),
			models.StrVal(c.Department),
			models.StrVal(c.ComplaintDescription),
			string(c.Status),
			c.IsArchived,
			models.StrVal(c.ResolutionText),
			models.StrVal(c.ResolvedMonth),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
