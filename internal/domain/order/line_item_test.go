package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/shared"
)

func newTestLineItem(t *testing.T) *LineItem {
	t.Helper()
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	li, err := NewLineItem("SMVAL-B-NCR", "2026-10-00001-001-SMVAL", "2026-10-00001-SMVAL", "CUST-1-1",
		catalog.PriorityNormal, []catalog.ServiceLine{{ServiceID: "SERVICE-1", Quantity: 1}}, "White sneakers", at.AddDate(0, 0, 5), at)
	require.NoError(t, err)
	li.ClearDomainEvents()
	return li
}

func TestNewLineItem(t *testing.T) {
	li := newTestLineItem(t)
	assert.Equal(t, StatusQueued, li.CurrentStatus)
	assert.Equal(t, "Branch", li.CurrentLocation)
	assert.NotNil(t, li.Dates.SrmDate)
	assert.Nil(t, li.Dates.RdDate)

	_, err := NewLineItem("SMVAL-B-NCR", "x", "y", "z", catalog.PriorityNormal, nil, "", time.Now(), time.Now())
	assert.Error(t, err)
}

func TestLineItem_TransitionTo(t *testing.T) {
	li := newTestLineItem(t)
	at := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, li.TransitionTo(StatusReadyForDelivery, false, at))
	require.NoError(t, li.TransitionTo(StatusToWarehouse, false, at))
	assert.Equal(t, "Hub", li.CurrentLocation)
	assert.Equal(t, at, *li.Dates.IbdDate)
	assert.Equal(t, 3, li.GetVersion())
	require.Len(t, li.GetDomainEvents(), 2)

	evt, ok := li.GetDomainEvents()[1].(*LineItemStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, StatusReadyForDelivery, evt.FromStatus)
	assert.Equal(t, StatusToWarehouse, evt.ToStatus)

	err := li.TransitionTo(StatusReadyForPickup, true, at)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Contains(t, err.Error(), li.LineItemID)
}

func TestLineItem_PickupNeedsPayment(t *testing.T) {
	li := newTestLineItem(t)
	li.CurrentStatus = StatusReadyForPickup

	err := li.TransitionTo(StatusPickedUp, false, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, StatusReadyForPickup, li.CurrentStatus)

	require.NoError(t, li.TransitionTo(StatusPickedUp, true, time.Now()))
	assert.True(t, li.IsReleased())
	assert.NotNil(t, li.Dates.RpuDate)
}

func TestLineItem_CorrectDates(t *testing.T) {
	li := newTestLineItem(t)
	orig := *li.Dates.SrmDate
	wh := time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC)

	li.CorrectDates(StatusDates{WhDate: &wh}, time.Now())
	assert.Equal(t, wh, *li.Dates.WhDate)
	assert.Equal(t, orig, *li.Dates.SrmDate)
}

func TestLineItem_SetImage(t *testing.T) {
	li := newTestLineItem(t)
	require.NoError(t, li.SetImage(ImageBefore, "line-items/a/before.jpg"))
	assert.Equal(t, "line-items/a/before.jpg", li.BeforeImg)
	assert.Error(t, li.SetImage(ImageKind("side"), "k"))
}
