package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

func TestAdvisoryKey(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	short, err := advisoryKey(&domain.Booking{Track: domain.TrackPostPurchase, ScheduledDate: day, ScheduledTime: "10:00"})
	require.NoError(t, err)
	long, err := advisoryKey(&domain.Booking{Track: domain.TrackPostPurchase, ScheduledDate: day, ScheduledTime: "10:00:00"})
	require.NoError(t, err)

	assert.Equal(t, "slot:post-purchase:2025-03-10:10:00", short)
	assert.Equal(t, short, long)

	_, err = advisoryKey(&domain.Booking{Track: domain.TrackPostPurchase, ScheduledDate: day, ScheduledTime: "10:00:zz"})
	assert.Error(t, err)
}
