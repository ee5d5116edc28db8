package order

import "time"

// StatusDates records when a line item entered each status
type StatusDates struct {
	SrmDate *time.Time `json:"srm_date"`
	RdDate  *time.Time `json:"rd_date"`
	IbdDate *time.Time `json:"ibd_date"`
	WhDate  *time.Time `json:"wh_date"`
	RbDate  *time.Time `json:"rb_date"`
	IsDate  *time.Time `json:"is_date"`
	RpuDate *time.Time `json:"rpu_date"`
}

func (d *StatusDates) field(s Status) **time.Time {
	switch s {
	case StatusQueued:
		return &d.SrmDate
	case StatusReadyForDelivery:
		return &d.RdDate
	case StatusToWarehouse:
		return &d.IbdDate
	case StatusInProcess:
		return &d.WhDate
	case StatusReturningToBranch:
		return &d.RbDate
	case StatusReadyForPickup:
		return &d.IsDate
	case StatusPickedUp:
		return &d.RpuDate
	}
	return nil
}

// Stamp records at as the time status s was entered
func (d *StatusDates) Stamp(s Status, at time.Time) {
	if f := d.field(s); f != nil {
		t := at
		*f = &t
	}
}

// Get returns when status s was entered, if recorded
func (d StatusDates) Get(s Status) *time.Time {
	if f := d.field(s); f != nil {
		return *f
	}
	return nil
}

// Merge copies every non-nil date from other
func (d *StatusDates) Merge(other StatusDates) {
	for _, s := range workflow {
		if t := other.Get(s); t != nil {
			d.Stamp(s, *t)
		}
	}
}

// IsEmpty reports whether no date is set
func (d StatusDates) IsEmpty() bool {
	for _, s := range workflow {
		if d.Get(s) != nil {
			return false
		}
	}
	return true
}
