package domain

// Default configuration values
const (
	DefaultConsultationDurationMinutes = 60
	DefaultBufferMinutes               = 0
	DefaultPrePurchaseLeadTimeMinutes  = 3 * 24 * 60
	DefaultPostPurchaseLeadTimeMinutes = 7 * 24 * 60
	DefaultCancellationLeadHours       = 24
	DefaultMaxDateRangeDays            = 90
)

// RoomEarlyAccessMinutes комната видеовстречи открывается за 5 минут до начала
const RoomEarlyAccessMinutes = 5

// Business validation constants
const (
	MinConsultationDurationMinutes = 5
	MaxConsultationDurationMinutes = 480 // 8 hours
	MinBufferMinutes               = 0
	MaxBufferMinutes               = 240
	MinSlotCapacity                = 1
	MaxSlotCapacity                = 100
	MinLeadTimeMinutes             = 0
	MaxLeadTimeMinutes             = 60 * 24 * 60 // 60 days
	MinCancellationLeadHours       = 0
	MaxCancellationLeadHours       = 720 // 30 days
	MaxSlotsPerTemplate            = 7 * 48
	MaxDescriptionLength           = 1000
	MaxCancellationReasonLength    = 500
	MaxCouponCodeLength            = 64
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
