package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// PathTrack направление из пути {track}
func PathTrack(r *http.Request) (domain.Track, error) {
	return domain.ParseTrack(mux.Vars(r)["track"])
}

// QueryDate дата YYYY-MM-DD из query; пустой параметр - nil
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// QueryString необязательный строковый параметр
func QueryString(r *http.Request, name string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}
