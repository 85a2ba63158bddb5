package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/intern-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Office(w http.ResponseWriter, r *http.Request)
	CheckGeofence(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Day(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)

	// Admin
	List(w http.ResponseWriter, r *http.Request)
	UserStatistics(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// decodeCoordinates decodes a body carrying latitude/longitude. A value of the
// wrong JSON type in either field counts as missing coordinates.
func decodeCoordinates(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && (typeErr.Field == "latitude" || typeErr.Field == "longitude") {
		response.HandleError(w, attendance.ErrCoordinatesRequired)
		return false
	}
	slog.Error(op+" decode error", "error", err)
	response.BadRequest(w, "Invalid request format", nil)
	return false
}

// Office implements AttendanceHandler.
func (h *attendanceHandlerImpl) Office(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.Office())
}

// CheckGeofence implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckGeofence(w http.ResponseWriter, r *http.Request) {
	var req attendance.GeofenceRequest
	if !decodeCoordinates(w, r, &req, "CheckGeofence") {
		return
	}

	result, err := h.attendanceService.CheckGeofence(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req attendance.OpenSessionRequest
	if !decodeCoordinates(w, r, &req, "CheckIn") {
		return
	}
	req.UserID = claims.UserID

	result, err := h.attendanceService.OpenSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Check-in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req attendance.CloseSessionRequest
	if r.ContentLength != 0 && !decodeCoordinates(w, r, &req, "CheckOut") {
		return
	}
	req.UserID = claims.UserID

	result, err := h.attendanceService.CloseSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.RequiresConfirmation {
		response.SuccessWithMessage(w, "Session is shorter than the minimum; resend with force to check out", result)
		return
	}
	response.SuccessWithMessage(w, "Check-out successful", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Today(r.Context(), claims.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Day implements AttendanceHandler.
func (h *attendanceHandlerImpl) Day(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.DayTotals(r.Context(), claims.UserID, chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Statistics implements AttendanceHandler.
func (h *attendanceHandlerImpl) Statistics(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.statistics(w, r, claims.UserID)
}

// UserStatistics implements AttendanceHandler.
func (h *attendanceHandlerImpl) UserStatistics(w http.ResponseWriter, r *http.Request) {
	h.statistics(w, r, chi.URLParam(r, "id"))
}

func (h *attendanceHandlerImpl) statistics(w http.ResponseWriter, r *http.Request, userID string) {
	q := r.URL.Query()
	req := attendance.PeriodRequest{
		UserID:    userID,
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}

	result, err := h.attendanceService.PeriodStatistics(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	result, err := h.attendanceService.History(r.Context(), attendance.PeriodRequest{
		UserID:    claims.UserID,
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := attendance.ListSessionsRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if userID := q.Get("user_id"); userID != "" {
		req.UserID = &userID
	}

	result, err := h.attendanceService.ListSessions(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
