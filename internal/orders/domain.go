package orders

import "time"

// Order statuses the backend reports for stock movements.
const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
)

// Order is one stock movement with its component populated.
type Order struct {
	ID              string    `json:"_id"`
	OperationType   string    `json:"operationType"`
	ComponentID     string    `json:"componentId"`
	ComponentName   string    `json:"componentName"`
	PartNumber      string    `json:"partNumber"`
	Quantity        int       `json:"quantity"`
	QuantityBefore  int       `json:"quantityBefore"`
	QuantityAfter   int       `json:"quantityAfter"`
	Supplier        string    `json:"supplier"`
	ReasonOrProject string    `json:"reasonOrProject"`
	ApprovedBy      string    `json:"approvedBy"`
	Status          string    `json:"status"`
	User            string    `json:"user"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BadgeClass returns the display badge for this order's status.
func (o Order) BadgeClass() string {
	return BadgeClass(o.Status)
}

// BadgeClass maps an order status to its display badge.
func BadgeClass(status string) string {
	switch status {
	case StatusCompleted, StatusApproved:
		return "badge-success"
	case StatusPending:
		return "badge-warning"
	case StatusRejected:
		return "badge-danger"
	default:
		return "badge-muted"
	}
}
