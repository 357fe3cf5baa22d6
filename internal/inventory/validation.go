package inventory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ApprovalThreshold is the outward quantity at and above which an approver
// must be named. Mirrored from the backend contract; the backend remains
// authoritative.
const ApprovalThreshold = 100

var datasheetPattern = regexp.MustCompile(`^https?://.+`)

// InwardForm carries raw inward stock form input.
type InwardForm struct {
	Quantity      string
	Supplier      string
	PurchasePrice string
	InvoiceNumber string
	Notes         string
}

// InwardRequest is the validated payload for the inward endpoint.
type InwardRequest struct {
	Quantity      int     `json:"quantity"`
	Supplier      string  `json:"supplier"`
	PurchasePrice float64 `json:"purchasePrice,omitempty"`
	InvoiceNumber string  `json:"invoiceNumber,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// Validate checks the inward form in order: quantity positivity, supplier
// presence, then price non-negativity when a price was given.
func (f InwardForm) Validate() (InwardRequest, map[string]string) {
	errs := make(map[string]string)

	qty, err := strconv.Atoi(strings.TrimSpace(f.Quantity))
	if err != nil || qty <= 0 {
		errs["quantity"] = "Quantity must be a positive number."
		return InwardRequest{}, errs
	}

	supplier := strings.TrimSpace(f.Supplier)
	if supplier == "" {
		errs["supplier"] = "Supplier is required."
		return InwardRequest{}, errs
	}

	req := InwardRequest{
		Quantity:      qty,
		Supplier:      supplier,
		InvoiceNumber: strings.TrimSpace(f.InvoiceNumber),
		Notes:         strings.TrimSpace(f.Notes),
	}
	if price := strings.TrimSpace(f.PurchasePrice); price != "" {
		parsed, err := strconv.ParseFloat(price, 64)
		if err != nil || parsed < 0 {
			errs["purchasePrice"] = "Purchase price cannot be negative."
			return InwardRequest{}, errs
		}
		req.PurchasePrice = parsed
	}
	return req, errs
}

// OutwardForm carries raw outward stock form input.
type OutwardForm struct {
	Quantity        string
	ReasonOrProject string
	Notes           string
	ApprovedBy      string
}

// OutwardRequest is the validated payload for the outward endpoint.
// ApprovedBy is included only when the approval threshold is met.
type OutwardRequest struct {
	Quantity        int    `json:"quantity"`
	ReasonOrProject string `json:"reasonOrProject"`
	Notes           string `json:"notes,omitempty"`
	ApprovedBy      string `json:"approvedBy,omitempty"`
}

// Validate checks the outward form in order: quantity positivity, reason
// presence, sufficiency against current stock, then the approval threshold.
func (f OutwardForm) Validate(currentStock int) (OutwardRequest, map[string]string) {
	errs := make(map[string]string)

	qty, err := strconv.Atoi(strings.TrimSpace(f.Quantity))
	if err != nil || qty <= 0 {
		errs["quantity"] = "Quantity must be a positive number."
		return OutwardRequest{}, errs
	}

	reason := strings.TrimSpace(f.ReasonOrProject)
	if reason == "" {
		errs["reasonOrProject"] = "Reason or Project is required for outward transactions."
		return OutwardRequest{}, errs
	}

	if qty > currentStock {
		errs["quantity"] = fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", currentStock, qty)
		return OutwardRequest{}, errs
	}

	approver := strings.TrimSpace(f.ApprovedBy)
	if qty >= ApprovalThreshold && approver == "" {
		errs["approvedBy"] = "Approval is required for quantities of 100 or more."
		return OutwardRequest{}, errs
	}

	req := OutwardRequest{
		Quantity:        qty,
		ReasonOrProject: reason,
		Notes:           strings.TrimSpace(f.Notes),
	}
	if qty >= ApprovalThreshold {
		req.ApprovedBy = approver
	}
	return req, errs
}

// StockPreview is the live projection shown beside a transaction form.
type StockPreview struct {
	NewTotal       int
	PercentChange  float64
	RemainingRatio float64
	Band           string
}

// PreviewInward projects the stock level after an inward of qty.
func PreviewInward(current, qty int) StockPreview {
	p := StockPreview{NewTotal: current + qty}
	if current > 0 {
		p.PercentChange = float64(qty) / float64(current) * 100
	}
	return p
}

// PreviewOutward projects the stock level after an outward of qty and
// classifies the remainder: healthy above 50% of the original quantity,
// warning above 20%, critical at or below 20%.
func PreviewOutward(current, qty int) StockPreview {
	remaining := current - qty
	p := StockPreview{NewTotal: remaining}
	if current > 0 {
		p.RemainingRatio = float64(remaining) / float64(current)
	}
	switch {
	case p.RemainingRatio > 0.5:
		p.Band = "healthy"
	case p.RemainingRatio > 0.2:
		p.Band = "warning"
	default:
		p.Band = "critical"
	}
	return p
}

// ComponentForm carries raw add/edit component form input.
type ComponentForm struct {
	ComponentName        string
	Manufacturer         string
	PartNumber           string
	Description          string
	Category             string
	Quantity             string
	UnitPrice            string
	Location             string
	CriticalLowThreshold string
	Tags                 string
	DatasheetLink        string
	Status               string
}

// ComponentRequest is the validated create/update payload. Quantity is a
// pointer so updates can omit it entirely: quantity changes only through
// inward/outward transactions.
type ComponentRequest struct {
	ComponentName        string   `json:"componentName"`
	Manufacturer         string   `json:"manufacturer"`
	PartNumber           string   `json:"partNumber"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	Quantity             *int     `json:"quantity,omitempty"`
	UnitPrice            float64  `json:"unitPrice"`
	Location             string   `json:"location"`
	CriticalLowThreshold int      `json:"criticalLowThreshold"`
	Tags                 []string `json:"tags"`
	DatasheetLink        string   `json:"datasheetLink,omitempty"`
	Status               string   `json:"status"`
}

// Validate checks all component fields. When forUpdate is true the quantity
// field is ignored and omitted from the payload.
func (f ComponentForm) Validate(forUpdate bool) (ComponentRequest, map[string]string) {
	errs := make(map[string]string)

	req := ComponentRequest{
		ComponentName: strings.TrimSpace(f.ComponentName),
		Manufacturer:  strings.TrimSpace(f.Manufacturer),
		PartNumber:    strings.TrimSpace(f.PartNumber),
		Description:   strings.TrimSpace(f.Description),
		Category:      strings.TrimSpace(f.Category),
		Location:      strings.TrimSpace(f.Location),
		Status:        f.Status,
		Tags:          SplitTags(f.Tags),
	}
	if req.ComponentName == "" {
		errs["componentName"] = "Component name is required."
	}
	if req.Manufacturer == "" {
		errs["manufacturer"] = "Manufacturer is required."
	}
	if req.PartNumber == "" {
		errs["partNumber"] = "Part number is required."
	}
	if req.Description == "" {
		errs["description"] = "Description is required."
	}
	if req.Category == "" || req.Category == AllSentinel {
		errs["category"] = "Category is required."
	}
	if req.Location == "" {
		errs["location"] = "Location is required."
	}
	if req.Status == "" {
		req.Status = StatusActive
	}

	if !forUpdate {
		qty, err := strconv.Atoi(strings.TrimSpace(f.Quantity))
		if err != nil || qty < 0 {
			errs["quantity"] = "Quantity cannot be negative."
		} else {
			req.Quantity = &qty
		}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.UnitPrice), 64)
	if err != nil || price < 0 {
		errs["unitPrice"] = "Unit price cannot be negative."
	} else {
		req.UnitPrice = price
	}

	threshold, err := strconv.Atoi(strings.TrimSpace(f.CriticalLowThreshold))
	if err != nil || threshold < 0 {
		errs["criticalLowThreshold"] = "Critical low threshold cannot be negative."
	} else {
		req.CriticalLowThreshold = threshold
	}

	if link := strings.TrimSpace(f.DatasheetLink); link != "" {
		if !datasheetPattern.MatchString(link) {
			errs["datasheetLink"] = "Datasheet link must be a valid URL."
		} else {
			req.DatasheetLink = link
		}
	}

	return req, errs
}

// SplitTags turns a comma-separated string into a trimmed, de-duplicated
// tag list.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
