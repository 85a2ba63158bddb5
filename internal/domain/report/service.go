package report

import "context"

// ReportService renders attendance data for download and review.
type ReportService interface {
	// ExportAttendance renders sessions in the range as CSV. Defaults to the
	// last 30 days.
	ExportAttendance(ctx context.Context, req AttendanceExportRequest) (AttendanceExport, error)

	// Calendar merges sessions and leave per user per date. Defaults to the
	// 90 days ending today; an empty UserIDs covers everyone with data.
	Calendar(ctx context.Context, req CalendarRequest) (Calendar, error)
}
