package meetingservice

import "time"

// CreateRoomRequest запрос на создание комнаты под бронирование.
// Комната неактивна до OpensAt.
type CreateRoomRequest struct {
	BookingID       string    `json:"booking_id"`
	Track           string    `json:"track"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	OpensAt         time.Time `json:"opens_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Room комната видеовстречи
type Room struct {
	ID      string    `json:"id"`
	JoinURL string    `json:"join_url,omitempty"`
	OpensAt time.Time `json:"opens_at"`
}
