package domain

import (
	"errors"
	"strings"
)

var ErrUnknownTrack = errors.New("domain: unknown track")

// Track направление консультаций, у каждого свой шаблон расписания и политика записи
type Track string

const (
	TrackPrePurchase  Track = "pre-purchase"
	TrackPostPurchase Track = "post-purchase"
)

// AllTracks список всех направлений
var AllTracks = []Track{TrackPrePurchase, TrackPostPurchase}

// ParseTrack принимает как "pre-purchase", так и "pre_purchase"
func ParseTrack(s string) (Track, error) {
	t := Track(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !t.IsValid() {
		return "", ErrUnknownTrack
	}
	return t, nil
}

func (t Track) IsValid() bool {
	return t == TrackPrePurchase || t == TrackPostPurchase
}

func (t Track) String() string {
	return string(t)
}

// DefaultLeadTimeMinutes минимальное время до консультации для записи клиентом
func (t Track) DefaultLeadTimeMinutes() int {
	if t == TrackPrePurchase {
		return DefaultPrePurchaseLeadTimeMinutes
	}
	return DefaultPostPurchaseLeadTimeMinutes
}
