package inventory

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteComponentsCSVQuoting(t *testing.T) {
	components := []Component{
		{
			ComponentName:        "Resistor, 10k",
			Manufacturer:         `Acme "Precision"`,
			PartNumber:           "R-10K",
			Description:          "line one\nline two",
			Category:             "Resistors",
			Quantity:             120,
			UnitPrice:            0.05,
			Location:             "Bin 3",
			CriticalLowThreshold: 25,
			Status:               StatusActive,
			Tags:                 []string{"smd", "0805"},
			DatasheetLink:        "https://example.com/r10k.pdf",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComponentsCSV(&buf, components))
	out := buf.String()

	// Fields with delimiters are quoted and embedded quotes doubled.
	require.Contains(t, out, `"Resistor, 10k"`)
	require.Contains(t, out, `"Acme ""Precision"""`)

	// The output must round-trip through a conforming reader.
	reader := csv.NewReader(strings.NewReader(out))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, csvHeader, rows[0])
	require.Equal(t, "Resistor, 10k", rows[1][0])
	require.Equal(t, `Acme "Precision"`, rows[1][1])
	require.Equal(t, "line one\nline two", rows[1][3])
	require.Equal(t, "120", rows[1][5])
	require.Equal(t, "0.05", rows[1][6])
	require.Equal(t, "smd; 0805", rows[1][10])
}

func TestWriteComponentsCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComponentsCSV(&buf, nil))
	require.Equal(t, 1, strings.Count(strings.TrimRight(buf.String(), "\n"), "\n")+1)
	require.True(t, strings.HasPrefix(buf.String(), "Component Name,"))
}
