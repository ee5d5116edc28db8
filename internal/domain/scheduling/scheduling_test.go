package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/domain/shared"
)

func mustRange(t *testing.T, start, end string) TimeRange {
	t.Helper()
	r, err := NewTimeRange(start, end)
	require.NoError(t, err)
	return r
}

func approved(t *testing.T, id, branchID string, date time.Time, start, end string) *Appointment {
	t.Helper()
	a, err := NewAppointment(branchID, id, "CUST-1-1", date, mustRange(t, start, end))
	require.NoError(t, err)
	require.NoError(t, a.ChangeStatus(AppointmentApproved, ""))
	a.ClearDomainEvents()
	return a
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(570), c)
	assert.Equal(t, "09:30", c.String())

	_, err = ParseClockTime("9.30am")
	assert.Error(t, err)

	_, err = NewTimeRange("10:00", "09:00")
	assert.Error(t, err)
}

func TestTimeRange_Overlaps(t *testing.T) {
	r := mustRange(t, "10:00", "12:00")
	assert.True(t, r.Overlaps(mustRange(t, "11:00", "13:00")))
	assert.True(t, r.Overlaps(mustRange(t, "09:00", "10:30")))
	assert.False(t, r.Overlaps(mustRange(t, "12:00", "13:00")))
	assert.False(t, r.Overlaps(mustRange(t, "08:00", "10:00")))
}

func TestAppointment_ChangeStatus(t *testing.T) {
	a, err := NewAppointment("SMVAL-B-NCR", "APPT-1", "CUST-1-1", time.Now(), mustRange(t, "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, AppointmentPending, a.Status)

	require.NoError(t, a.ChangeStatus(AppointmentApproved, ""))
	require.NoError(t, a.ChangeStatus(AppointmentCancelled, "customer request"))
	assert.Equal(t, "customer request", a.CancelReason)

	err = a.ChangeStatus(AppointmentApproved, "")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestNewUnavailability(t *testing.T) {
	_, err := NewUnavailability("SMVAL-B-NCR", "UNAV-001", time.Now(), PartialDay, nil, "")
	assert.Error(t, err)

	slot := mustRange(t, "09:00", "10:00")
	u, err := NewUnavailability("SMVAL-B-NCR", "UNAV-001", time.Now(), FullDay, &slot, "")
	require.NoError(t, err)
	assert.Nil(t, u.Slot)
	assert.Equal(t, "UNAV-007", FormatUnavailabilityID(7))
}

func TestUnavailability_CancelAffected(t *testing.T) {
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	branch := "SMVAL-B-NCR"

	t.Run("full day cancels approved appointments of that date", func(t *testing.T) {
		appts := []*Appointment{
			approved(t, "APPT-1", branch, day, "09:00", "10:00"),
			approved(t, "APPT-2", branch, day, "15:00", "16:00"),
			approved(t, "APPT-3", branch, day.AddDate(0, 0, 1), "09:00", "10:00"),
			approved(t, "APPT-4", "VAL-B-NCR", day, "09:00", "10:00"),
		}
		pending, err := NewAppointment(branch, "APPT-5", "CUST-1-2", day, mustRange(t, "09:00", "10:00"))
		require.NoError(t, err)
		appts = append(appts, pending)

		u, err := NewUnavailability(branch, "UNAV-001", day, FullDay, nil, "holiday")
		require.NoError(t, err)

		cancelled := u.CancelAffected(appts)
		require.Len(t, cancelled, 2)
		assert.Equal(t, "Cancelled due to unavailability (Full Day)", cancelled[0].CancelReason)
		assert.Equal(t, AppointmentPending, pending.Status)
	})

	t.Run("partial day cancels only overlapping slots", func(t *testing.T) {
		appts := []*Appointment{
			approved(t, "APPT-1", branch, day, "09:00", "10:00"),
			approved(t, "APPT-2", branch, day, "13:30", "14:30"),
			approved(t, "APPT-3", branch, day, "14:00", "15:00"),
		}
		slot := mustRange(t, "13:00", "14:00")
		u, err := NewUnavailability(branch, "UNAV-002", day, PartialDay, &slot, "")
		require.NoError(t, err)

		cancelled := u.CancelAffected(appts)
		require.Len(t, cancelled, 1)
		assert.Equal(t, "APPT-2", cancelled[0].AppointmentID)
		assert.Equal(t, "Cancelled due to unavailability (Partial Day)", cancelled[0].CancelReason)
	})
}

func TestUnavailability_Blocks(t *testing.T) {
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	slot := mustRange(t, "13:00", "14:00")
	u, err := NewUnavailability("SMVAL-B-NCR", "UNAV-003", day, PartialDay, &slot, "")
	require.NoError(t, err)

	assert.True(t, u.Blocks(day.Add(10*time.Hour), mustRange(t, "13:30", "13:45")))
	assert.False(t, u.Blocks(day, mustRange(t, "14:00", "15:00")))
	assert.False(t, u.Blocks(day.AddDate(0, 0, 1), mustRange(t, "13:30", "13:45")))
}

func TestCalendarDates_IgnoreZone(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	branch := "SMVAL-B-NCR"
	// How the counter enters Oct 10 and how a DATE column reads it back
	entered := time.Date(2026, 10, 10, 0, 0, 0, 0, manila)
	stored := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(entered, stored))
	assert.True(t, SameDay(stored, entered))
	assert.False(t, SameDay(stored, entered.AddDate(0, 0, 1)))
	assert.Equal(t, stored, Day(entered))

	t.Run("stored appointment is cancelled by a local unavailability", func(t *testing.T) {
		appt := approved(t, "APPT-1", branch, stored, "09:00", "10:00")
		u, err := NewUnavailability(branch, "UNAV-001", entered, FullDay, nil, "")
		require.NoError(t, err)

		assert.True(t, appt.AffectedBy(u))
		assert.Len(t, u.CancelAffected([]*Appointment{appt}), 1)
	})

	t.Run("stored unavailability blocks a local booking", func(t *testing.T) {
		u, err := NewUnavailability(branch, "UNAV-002", stored, FullDay, nil, "")
		require.NoError(t, err)
		assert.True(t, u.Blocks(entered, mustRange(t, "09:00", "10:00")))
	})
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-10-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("10/10/2026")
	assert.Error(t, err)
}
