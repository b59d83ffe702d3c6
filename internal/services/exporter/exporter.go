// Package exporter renders parcel lists as CSV for download.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/BearBump/ParcelDesk/internal/models"
	"github.com/pkg/errors"
)

var headers = []string{
	"TrackingNumber",
	"CustomerName",
	"CustomerAddress",
	"CustomerMobile",
	"ParcelValue (LKR)",
	"Status",
	"CreationDate",
}

// WriteCSV writes a header row plus one row per parcel. Monetary values are
// fixed to two decimals, dates day/month/year; quoting is handled by
// encoding/csv.
func WriteCSV(w io.Writer, parcels []*models.Parcel) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	for _, p := range parcels {
		v, err := strconv.ParseFloat(p.ParcelValue, 64)
		if err != nil {
			v = 0
		}
		rec := []string{
			p.TrackingNumber,
			p.CustomerName,
			p.CustomerAddress,
			p.CustomerMobile,
			fmt.Sprintf("%.2f", v),
			p.Status,
			p.CreationDate.Format("02/01/2006"),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
