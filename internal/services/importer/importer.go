// Package importer parses delimited tabular input into candidate parcel
// records. De-duplication against the live store happens later, in
// Store.BulkCreate — never here.
package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/models"
)

// RequiredHeaders are matched by exact name; column order does not matter
// and extra columns are ignored.
var RequiredHeaders = []string{
	"trackingNumber",
	"customerName",
	"customerAddress",
	"customerMobile",
	"parcelValue",
}

// Parse reads the whole input and either returns every candidate record or
// a single row-indexed ParseError — no partial result on failure. Rows whose
// required fields are all empty are skipped silently.
func Parse(r io.Reader) ([]models.ParcelCreateInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are tolerated, missing cells read as ""

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &apperr.ParseError{Msg: "file must contain a header row and at least one data row"}
	}
	if err != nil {
		return nil, &apperr.ParseError{Row: 1, Msg: err.Error()}
	}

	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := colIdx[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.ParseError{Row: 1, Msg: "missing required columns: " + strings.Join(missing, ", ")}
	}

	var out []models.ParcelCreateInput
	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &apperr.ParseError{Row: row, Msg: err.Error()}
		}

		cell := func(name string) string {
			i := colIdx[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		in := models.ParcelCreateInput{
			TrackingNumber:  cell("trackingNumber"),
			CustomerName:    cell("customerName"),
			CustomerAddress: cell("customerAddress"),
			CustomerMobile:  cell("customerMobile"),
			ParcelValue:     cell("parcelValue"),
		}

		if in.TrackingNumber == "" && in.CustomerName == "" && in.CustomerAddress == "" &&
			in.CustomerMobile == "" && in.ParcelValue == "" {
			continue
		}

		if in.TrackingNumber == "" || in.CustomerName == "" {
			return nil, &apperr.ParseError{Row: row, Msg: "missing essential data (trackingNumber or customerName)"}
		}
		if _, err := strconv.ParseFloat(in.ParcelValue, 64); err != nil {
			return nil, &apperr.ParseError{Row: row, Msg: "'parcelValue' must be a valid number"}
		}

		out = append(out, in)
	}

	if row == 1 {
		return nil, &apperr.ParseError{Msg: "file must contain a header row and at least one data row"}
	}
	return out, nil
}
