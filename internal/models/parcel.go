package models

import "time"

// Статусы посылки (закрытый набор, переходы не ограничены).
const (
	StatusPendingToDeliver = "Pending to Deliver"
	StatusDelivered        = "Delivered"
	StatusPaymentReceived  = "Payment Received"
	StatusReturned         = "Returned"
	StatusRescheduled      = "Rescheduled"
	StatusReturnComplete   = "Return Complete"
)

// AllStatuses lists every valid parcel status. Order matters for the UI.
var AllStatuses = []string{
	StatusPendingToDeliver,
	StatusDelivered,
	StatusPaymentReceived,
	StatusReturned,
	StatusRescheduled,
	StatusReturnComplete,
}

func ValidStatus(s string) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Parcel struct {
	ID              uint64               `json:"id"`
	TrackingNumber  string               `json:"trackingNumber"`
	CustomerName    string               `json:"customerName"`
	CustomerAddress string               `json:"customerAddress"`
	CustomerMobile  string               `json:"customerMobile"`
	ParcelValue     string               `json:"parcelValue"`
	Status          string               `json:"status"`
	CreationDate    time.Time            `json:"creationDate"`
	StatusHistory   []StatusHistoryEntry `json:"statusHistory"`
}

type ParcelCreateInput struct {
	TrackingNumber  string `json:"trackingNumber"`
	CustomerName    string `json:"customerName"`
	CustomerAddress string `json:"customerAddress"`
	CustomerMobile  string `json:"customerMobile"`
	ParcelValue     string `json:"parcelValue"`
}

// ParcelUpdateInput covers the editable fields only; id, status, creationDate
// and statusHistory never change through an edit.
type ParcelUpdateInput struct {
	TrackingNumber  string `json:"trackingNumber"`
	CustomerName    string `json:"customerName"`
	CustomerAddress string `json:"customerAddress"`
	CustomerMobile  string `json:"customerMobile"`
	ParcelValue     string `json:"parcelValue"`
}

// Clone returns a deep copy so callers cannot mutate store state.
func (p *Parcel) Clone() *Parcel {
	cp := *p
	cp.StatusHistory = make([]StatusHistoryEntry, len(p.StatusHistory))
	copy(cp.StatusHistory, p.StatusHistory)
	return &cp
}
