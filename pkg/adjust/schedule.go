package adjust

import (
	"os"
	"time"
)

// ProfileEnvVar overrides the time-of-day schedule when set
const ProfileEnvVar = "TRUSTWALL_PROFILE"

const (
	// ProfilePeak selects the peak-hours rate pair regardless of time
	ProfilePeak = "peak"
	// ProfileOffPeak selects the off-peak rate pair regardless of time
	ProfileOffPeak = "off-peak"
)

const (
	peakInKbps     uint32 = 504
	peakOutKbps    uint32 = 120
	offPeakInKbps  uint32 = 2048
	offPeakOutKbps uint32 = 512

	// off-peak window in local hours, inclusive start, exclusive end
	offPeakStartHour = 1
	offPeakEndHour   = 7
)

// Schedule recommends a bandwidth pair for the current moment
type Schedule interface {
	// Recommend returns the desired inbound and outbound bandwidth in Kbit/s
	Recommend() (inKbps, outKbps uint32)
}

// NewProfileSchedule returns a Schedule driven by the profile environment
// variable, falling back to a local time-of-day window when unset
func NewProfileSchedule() *ProfileScheduleImpl {
	return &ProfileScheduleImpl{
		profile: os.Getenv(ProfileEnvVar),
		now:     time.Now,
	}
}

// ProfileScheduleImpl implements Schedule. An explicit profile pins the
// rate pair; otherwise the off-peak pair applies during the nightly window
// and the peak pair during the rest of the day.
type ProfileScheduleImpl struct {
	profile string
	now     func() time.Time
}

// Recommend implements Schedule interface
func (s *ProfileScheduleImpl) Recommend() (uint32, uint32) {
	switch s.profile {
	case ProfilePeak:
		return peakInKbps, peakOutKbps
	case ProfileOffPeak:
		return offPeakInKbps, offPeakOutKbps
	}
	h := s.now().Hour()
	if h >= offPeakStartHour && h < offPeakEndHour {
		return offPeakInKbps, offPeakOutKbps
	}
	return peakInKbps, peakOutKbps
}
