package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var csvHeader = []string{"date", "product", "warehouse", "category", "brand", "type", "amount", "reason"}

// Export writes entries to w in the given format.
func Export(w io.Writer, format string, entries []models.ReportEntry) error {
	switch format {
	case FormatCSV:
		return ExportCSV(w, entries)
	case FormatJSON:
		return ExportJSON(w, entries)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func ExportCSV(w io.Writer, entries []models.ReportEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{
			e.Date.Format(time.RFC3339),
			e.Product,
			e.Warehouse,
			e.Category,
			e.Brand,
			string(e.Type),
			strconv.Itoa(e.Amount),
			string(e.Reason),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportJSON(w io.Writer, entries []models.ReportEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
