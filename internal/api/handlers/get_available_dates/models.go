package get_available_dates

import (
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	getAvailableDates "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_dates"
)

// AvailableDatesResponse HTTP response model
type AvailableDatesResponse struct {
	Track string          `json:"track"`
	From  string          `json:"from"`
	To    string          `json:"to"`
	Dates []AvailableDate `json:"dates"`
}

// AvailableDate дата, на которую есть хотя бы одно место
type AvailableDate struct {
	Date           string `json:"date"`
	SlotsAvailable int    `json:"slotsAvailable"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableDates.Response) *AvailableDatesResponse {
	dates := make([]AvailableDate, len(resp.Dates))
	for i, d := range resp.Dates {
		dates[i] = AvailableDate{
			Date:           d.Date.Format(domain.DateFormat),
			SlotsAvailable: d.SlotsAvailable,
		}
	}

	return &AvailableDatesResponse{
		Track: resp.Track.String(),
		From:  resp.From.Format(domain.DateFormat),
		To:    resp.To.Format(domain.DateFormat),
		Dates: dates,
	}
}
