package http

import (
	"net/http"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/report"
	"github.com/cmlabs-hris/intern-attendance/internal/handler/http/response"
)

type ReportHandler interface {
	ExportAttendance(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportAttendance implements ReportHandler.
func (h *reportHandlerImpl) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := report.AttendanceExportRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if userID := q.Get("user_id"); userID != "" {
		req.UserID = &userID
	}

	export, err := h.reportService.ExportAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Attachment(w, "text/csv; charset=utf-8", export.Filename, export.Content)
}

// Calendar implements ReportHandler. user_id may repeat; "all" or no value
// covers every user.
func (h *reportHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := report.CalendarRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	for _, id := range q["user_id"] {
		if id == "all" {
			req.UserIDs = nil
			break
		}
		if id != "" {
			req.UserIDs = append(req.UserIDs, id)
		}
	}

	calendar, err := h.reportService.Calendar(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, calendar)
}
