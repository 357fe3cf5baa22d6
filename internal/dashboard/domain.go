package dashboard

import "time"

// Overview is the headline card block of the dashboard.
type Overview struct {
	TotalComponents   int     `json:"totalComponents"`
	TotalQuantity     int     `json:"totalQuantity"`
	TotalValue        float64 `json:"totalValue"`
	LowStockCount     int     `json:"lowStockCount"`
	OldStockCount     int     `json:"oldStockCount"`
	TodayInwardCount  int     `json:"todayInwardCount"`
	TodayOutwardCount int     `json:"todayOutwardCount"`
}

// MonthlyStat is one month of inward/outward movement volume.
type MonthlyStat struct {
	Month        string `json:"month"`
	Year         int    `json:"year"`
	InwardCount  int    `json:"inwardCount"`
	OutwardCount int    `json:"outwardCount"`
	InwardQty    int    `json:"inwardQuantity"`
	OutwardQty   int    `json:"outwardQuantity"`
}

// DailyTrend is one day of outward usage.
type DailyTrend struct {
	Date         string `json:"date"`
	OutwardCount int    `json:"outwardCount"`
	OutwardQty   int    `json:"outwardQuantity"`
}

// TopComponent is a most-moved component entry.
type TopComponent struct {
	ComponentID   string `json:"componentId"`
	ComponentName string `json:"componentName"`
	PartNumber    string `json:"partNumber"`
	TotalQuantity int    `json:"totalQuantity"`
	TxCount       int    `json:"transactionCount"`
}

// NotificationStats summarises open alerts.
type NotificationStats struct {
	Total     int `json:"total"`
	Unread    int `json:"unread"`
	Critical  int `json:"critical"`
	LowStock  int `json:"lowStock"`
	OldStock  int `json:"oldStock"`
	SystemMsg int `json:"system"`
}

// UserActivity is an admin-only per-user action summary.
type UserActivity struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	TxCount   int       `json:"transactionCount"`
	LastLogin time.Time `json:"lastLogin"`
}

// SystemStats is the admin-only system block.
type SystemStats struct {
	TotalUsers        int `json:"totalUsers"`
	ActiveUsers       int `json:"activeUsers"`
	TotalTransactions int `json:"totalTransactions"`
	TotalCategories   int `json:"totalCategories"`
}

// Snapshot bundles every dashboard fetch into one cacheable unit.
type Snapshot struct {
	Overview      Overview          `json:"overview"`
	MonthlyStats  []MonthlyStat     `json:"monthlyStats"`
	DailyTrends   []DailyTrend      `json:"dailyTrends"`
	TopComponents []TopComponent    `json:"topComponents"`
	Notifications NotificationStats `json:"notifications"`
	UserActivity  []UserActivity    `json:"userActivity,omitempty"`
	SystemStats   *SystemStats      `json:"systemStats,omitempty"`
	FetchedAt     time.Time         `json:"fetchedAt"`
}

// Assessment is the bucketed AI stock report shown on the dashboard.
type Assessment struct {
	Level     string    `json:"level"`
	Situation string    `json:"situation"`
	Report    string    `json:"report"`
	CreatedAt time.Time `json:"createdAt"`
}
