package reports

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

const (
	bookingsSheet = "Bookings"
	summarySheet  = "Summary"
)

// ContentType XLSX-документа
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var bookingColumns = []string{
	"ID", "Track", "Date", "Time", "Duration (min)", "Status",
	"Client", "Specialist", "Coupon", "Rescheduled from",
	"Cancelled by", "Cancellation reason", "Created at",
}

// Service выгрузки для администраторов
type Service struct {
	bookings BookingLister
	logger   Logger
}

func NewService(bookings BookingLister, logger Logger) *Service {
	return &Service{bookings: bookings, logger: logger}
}

// ExportBookings пишет в out книгу из двух листов: бронирования и сводка по направлениям и статусам.
// Ошибки доступа и фильтра возвращаются сервисом бронирований как есть.
func (s *Service) ExportBookings(ctx context.Context, req *models.GetTrackBookingsRequest, out io.Writer) error {
	bookings, err := s.bookings.ListForAdmin(ctx, req)
	if err != nil {
		return err
	}

	w := newSheetWriter()
	defer func() {
		if err := w.close(); err != nil {
			s.logger.Warn("ExportBookings: close workbook: %v", err)
		}
	}()

	if err := writeBookings(w, bookings); err != nil {
		s.logger.Error("ExportBookings: write bookings sheet: %v", err)
		return fmt.Errorf("ExportBookings - bookings sheet: %w", err)
	}
	if err := writeSummary(w, bookings); err != nil {
		s.logger.Error("ExportBookings: write summary sheet: %v", err)
		return fmt.Errorf("ExportBookings - summary sheet: %w", err)
	}

	if err := w.save(out); err != nil {
		return fmt.Errorf("ExportBookings - save: %w", err)
	}

	s.logger.Info("ExportBookings: exported %d bookings for user=%s", len(bookings), req.ActorID)
	return nil
}

func writeBookings(w *sheetWriter, bookings []*domain.Booking) error {
	if err := w.addSheet(bookingsSheet); err != nil {
		return err
	}
	if err := w.writeHeader(bookingColumns); err != nil {
		return err
	}

	for _, b := range bookings {
		var cancelledBy string
		if b.CancelledBy != nil {
			cancelledBy = string(*b.CancelledBy)
		}

		row := []interface{}{
			b.ID,
			b.Track.String(),
			b.ScheduledDate.Format(domain.DateFormat),
			b.ScheduledTime.String(),
			b.DurationMinutes,
			string(b.Status),
			b.ClientID,
			ptr.Value(b.SpecialistID),
			ptr.Value(b.CouponCode),
			ptr.Value(b.RescheduledFrom),
			cancelledBy,
			ptr.Value(b.CancellationReason),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

var summaryStatuses = []domain.BookingStatus{domain.StatusScheduled, domain.StatusCompleted, domain.StatusCancelled}

func writeSummary(w *sheetWriter, bookings []*domain.Booking) error {
	counts := make(map[domain.Track]map[domain.BookingStatus]int)
	for _, b := range bookings {
		if counts[b.Track] == nil {
			counts[b.Track] = make(map[domain.BookingStatus]int)
		}
		counts[b.Track][b.Status]++
	}

	tracks := make([]domain.Track, 0, len(counts))
	for t := range counts {
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i] < tracks[j] })

	if err := w.addSheet(summarySheet); err != nil {
		return err
	}

	header := []string{"Track"}
	for _, st := range summaryStatuses {
		header = append(header, string(st))
	}
	header = append(header, "total")
	if err := w.writeHeader(header); err != nil {
		return err
	}

	for _, t := range tracks {
		row := []interface{}{t.String()}
		total := 0
		for _, st := range summaryStatuses {
			row = append(row, counts[t][st])
			total += counts[t][st]
		}
		row = append(row, total)
		if err := w.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}
