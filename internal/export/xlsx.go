// Package export writes lead lists to files and terminals.
package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"midnightscout/internal/leads"
	"midnightscout/internal/logging"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet leads are written to.
const SheetName = "Leads"

// Headers are the column titles of the leads sheet, in order.
var Headers = []interface{}{
	"Name", "Address", "Rating", "Reviews", "Website",
	"Latitude", "Longitude", "Issues", "Sales Pitch", "Industry",
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// FileName builds a default export path such as
// dir/leads-dentist-austin-20260102-150405.xlsx.
func FileName(dir, industry, city string, now time.Time) string {
	parts := []string{"leads"}
	for _, p := range []string{slug(industry), slug(city)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, now.Format("20060102-150405"))
	return filepath.Join(dir, strings.Join(parts, "-")+".xlsx")
}

func row(b leads.Business) []interface{} {
	var reviews interface{} = ""
	if b.ReviewCount != nil {
		reviews = *b.ReviewCount
	}
	return []interface{}{
		b.Name, b.Address, b.Rating, reviews, b.Website,
		b.Lat, b.Lng, strings.Join(b.Issues, "; "), b.SalesPitch, b.Industry,
	}
}

// WriteXLSX writes bs to a new workbook at path, one row per lead after a
// header row.
func WriteXLSX(path string, bs []leads.Business) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", Headers); err != nil {
		return err
	}
	for i, b := range bs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(b)); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		logging.ExportError("save %s: %v", path, err)
		return err
	}
	logging.Export("wrote %d leads to %s", len(bs), path)
	return nil
}
