// Package export writes court listings to spreadsheet files.
package export

import (
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/pickleballplayers/court-harvester/internal/model"
)

// DefaultSheetName is used when XLSXOptions.SheetName is empty.
const DefaultSheetName = "Courts"

// Header is the first row of every export.
var Header = []string{
	"ID", "Name", "City", "Latitude", "Longitude", "Indoor/Outdoor",
	"Confidence", "Active", "Verified", "Claimed", "Description", "Created", "Updated",
}

// XLSXOptions configures the XLSX writer.
type XLSXOptions struct {
	SheetName string // default "Courts"
	NoHeader  bool
}

// BuildXLSX lays courts out one per row on a single sheet.
func BuildXLSX(courts []model.Court, opts XLSXOptions) (*xlsx.File, error) {
	name := opts.SheetName
	if name == "" {
		name = DefaultSheetName
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: add sheet %q", name)
	}

	if !opts.NoHeader {
		row := sheet.AddRow()
		for _, h := range Header {
			row.AddCell().SetString(h)
		}
	}

	for _, c := range courts {
		row := sheet.AddRow()
		row.AddCell().SetString(c.ID)
		row.AddCell().SetString(c.Name)
		row.AddCell().SetString(c.City)
		row.AddCell().SetFloat(c.Latitude)
		row.AddCell().SetFloat(c.Longitude)
		row.AddCell().SetString(string(c.IndoorOutdoor))
		row.AddCell().SetInt(c.ConfidenceScore)
		row.AddCell().SetString(strconv.FormatBool(c.IsActive))
		row.AddCell().SetString(strconv.FormatBool(c.VerifiedBadge))
		row.AddCell().SetString(strconv.FormatBool(c.IsClaimed))
		row.AddCell().SetString(c.Description)
		row.AddCell().SetString(formatTime(c.CreatedAt))
		row.AddCell().SetString(formatTime(c.UpdatedAt))
	}
	return f, nil
}

// WriteXLSXFile saves courts to path.
func WriteXLSXFile(path string, courts []model.Court, opts XLSXOptions) error {
	f, err := BuildXLSX(courts, opts)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

// WriteXLSX streams courts as an XLSX document to w.
func WriteXLSX(w io.Writer, courts []model.Court, opts XLSXOptions) error {
	f, err := BuildXLSX(courts, opts)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "xlsx: write")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
