package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

const (
	importModeSkip   = "skip"
	importModeUpdate = "update"
	maxImportBytes   = 10 << 20
)

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportProductsResult struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Errors  []ImportRowError `json:"errors"`
}

type importRow struct {
	line    int
	details models.ProductDetails
	stock   int
}

// parseImportCSV reads rows keyed by a header line. Only name is a
// required column.
func parseImportCSV(r io.Reader) ([]importRow, []ImportRowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, errors.New("invalid CSV header")
	}
	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, nil, errors.New("CSV header has no name column")
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var (
		rows    []importRow
		rowErrs []ImportRowError
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("CSV read error: %w", err)
		}

		stock := 0
		if raw := field(record, "stock"); raw != "" {
			if stock, err = strconv.Atoi(raw); err != nil {
				rowErrs = append(rowErrs, ImportRowError{Row: line, Message: "stock must be an integer"})
				continue
			}
		}
		rows = append(rows, importRow{
			line: line,
			details: models.ProductDetails{
				Name:      field(record, "name"),
				Category:  field(record, "category"),
				Brand:     field(record, "brand"),
				Warehouse: field(record, "warehouse"),
				Barcode:   field(record, "barcode"),
			},
			stock: stock,
		})
	}
	return rows, rowErrs, nil
}

// ImportProducts godoc
// @Summary Import products via CSV
// @Description Columns: name, category, brand, warehouse, barcode, stock. In update mode a row whose barcode already exists sets that product's stock.
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {object} response.ErrorResponse
// @Router /products/import [post]
func (s *Server) ImportProducts(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(queryString(r, "mode"))
	if mode != importModeUpdate {
		mode = importModeSkip
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		response.Error(w, appErrors.FieldValidationError("file", "a CSV file is required"))
		return
	}
	defer file.Close()

	rows, rowErrs, err := parseImportCSV(file)
	if err != nil {
		response.Error(w, appErrors.ValidationError("invalid CSV file").WithDetail(err.Error()))
		return
	}

	result := ImportProductsResult{Errors: rowErrs}
	ctx := remoteContext(r)
	for _, row := range rows {
		line := row.line

		if row.details.Barcode != "" {
			if existing, err := s.ledger.GetByBarcode(row.details.Barcode); err == nil {
				if mode == importModeSkip {
					result.Errors = append(result.Errors, ImportRowError{Row: line, Message: fmt.Sprintf("barcode %q already exists", row.details.Barcode)})
					continue
				}
				if _, err := s.catalog.UpdateStock(ctx, existing.ID, row.stock); err != nil {
					result.Errors = append(result.Errors, ImportRowError{Row: line, Message: err.Error()})
					continue
				}
				result.Updated++
				continue
			}
		}

		if _, err := s.catalog.CreateProduct(ctx, row.details, row.stock); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: line, Message: err.Error()})
			continue
		}
		result.Created++
	}

	if result.Errors == nil {
		result.Errors = []ImportRowError{}
	}
	logFrom(r).Info().Int("created", result.Created).Int("updated", result.Updated).Int("errors", len(result.Errors)).Msg("products imported")
	_ = response.WriteJSON(w, http.StatusOK, result)
}
