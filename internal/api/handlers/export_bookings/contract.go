package export_bookings

import (
	"context"
	"io"

	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
)

type ReportService interface {
	ExportBookings(ctx context.Context, req *models.GetTrackBookingsRequest, out io.Writer) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
