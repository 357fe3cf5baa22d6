package inventory

import "time"

// Component statuses recognised by the backend.
const (
	StatusActive       = "Active"
	StatusDiscontinued = "Discontinued"
	StatusObsolete     = "Obsolete"
)

// Statuses lists the selectable component statuses in display order.
var Statuses = []string{StatusActive, StatusDiscontinued, StatusObsolete}

// Component is the backend-owned inventory record. The derived flags
// (IsCriticallyLow, IsOldStock) are computed server-side and never locally.
type Component struct {
	ID                   string    `json:"_id"`
	ComponentName        string    `json:"componentName"`
	Manufacturer         string    `json:"manufacturer"`
	PartNumber           string    `json:"partNumber"`
	Description          string    `json:"description"`
	Quantity             int       `json:"quantity"`
	Location             string    `json:"location"`
	UnitPrice            float64   `json:"unitPrice"`
	DatasheetLink        string    `json:"datasheetLink"`
	Category             string    `json:"category"`
	CriticalLowThreshold int       `json:"criticalLowThreshold"`
	Tags                 []string  `json:"tags"`
	Status               string    `json:"status"`
	IsCriticallyLow      bool      `json:"isCriticallyLow"`
	IsOldStock           bool      `json:"isOldStock"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Transaction is a stock movement record as returned with component detail.
type Transaction struct {
	ID              string    `json:"_id"`
	OperationType   string    `json:"operationType"`
	Quantity        int       `json:"quantity"`
	QuantityBefore  int       `json:"quantityBefore"`
	QuantityAfter   int       `json:"quantityAfter"`
	ReasonOrProject string    `json:"reasonOrProject"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ComponentDetail bundles a component with its recent movements.
type ComponentDetail struct {
	Component          Component     `json:"component"`
	RecentTransactions []Transaction `json:"recentTransactions"`
}
