package inventory

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// csvHeader mirrors the exported component fields, one column per field of
// the first record.
var csvHeader = []string{
	"Component Name",
	"Manufacturer",
	"Part Number",
	"Description",
	"Category",
	"Quantity",
	"Unit Price",
	"Location",
	"Critical Low Threshold",
	"Status",
	"Tags",
	"Datasheet Link",
}

// WriteComponentsCSV serialises components as RFC 4180 CSV: one header row
// followed by one row per record. encoding/csv quotes fields containing
// delimiters, quotes, or newlines and doubles embedded quotes.
func WriteComponentsCSV(w io.Writer, components []Component) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range components {
		record := []string{
			c.ComponentName,
			c.Manufacturer,
			c.PartNumber,
			c.Description,
			c.Category,
			strconv.Itoa(c.Quantity),
			strconv.FormatFloat(c.UnitPrice, 'f', 2, 64),
			c.Location,
			strconv.Itoa(c.CriticalLowThreshold),
			c.Status,
			strings.Join(c.Tags, "; "),
			c.DatasheetLink,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
