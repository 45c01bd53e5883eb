package disk

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"
)

// CatalogEntry describes a well-known floppy format.
type CatalogEntry struct {
	Slug            string `csv:"slug"`
	Name            string `csv:"name"`
	FormFactor      string `csv:"form_factor"`
	Cylinders       uint16 `csv:"cylinders"`
	Heads           uint8  `csv:"heads"`
	SectorsPerTrack uint8  `csv:"sectors_per_track"`
	// DriveType is the code the firmware reports for drives of this format in
	// the geometry query.
	DriveType uint8  `csv:"drive_type"`
	Notes     string `csv:"notes"`
}

// Geometry converts the entry into the firmware's inclusive-maximum form.
func (e CatalogEntry) Geometry() Geometry {
	return Geometry{
		DriveType:   e.DriveType,
		MaxHead:     e.Heads - 1,
		MaxCylinder: e.Cylinders - 1,
		MaxSector:   e.SectorsPerTrack,
	}
}

// TotalSizeBytes gives the size of an image of this format.
func (e CatalogEntry) TotalSizeBytes() int64 {
	return int64(e.Cylinders) * int64(e.Heads) * int64(e.SectorsPerTrack) * SectorSize
}

// https://en.wikipedia.org/wiki/List_of_floppy_disk_formats
//
//go:embed disk-geometries.csv
var diskGeometriesRawCSV string
var catalog []CatalogEntry
var catalogBySlug map[string]CatalogEntry

// DefaultGeometrySlug names the format used when building new boot images.
const DefaultGeometrySlug = "fd1440"

// Catalog returns every predefined format, in file order.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, len(catalog))
	copy(entries, catalog)
	return entries
}

func GetPredefinedGeometry(slug string) (CatalogEntry, error) {
	entry, ok := catalogBySlug[slug]
	if ok {
		return entry, nil
	}

	err := fmt.Errorf("no predefined disk geometry exists with slug %q", slug)
	return CatalogEntry{}, err
}

// GeometryForSize finds the predefined format whose images are exactly
// `sizeBytes` long.
func GeometryForSize(sizeBytes int64) (CatalogEntry, error) {
	for _, entry := range catalog {
		if entry.TotalSizeBytes() == sizeBytes {
			return entry, nil
		}
	}
	return CatalogEntry{}, fmt.Errorf("no predefined disk geometry is %d bytes", sizeBytes)
}

func init() {
	err := gocsv.UnmarshalString(diskGeometriesRawCSV, &catalog)
	if err != nil {
		panic(fmt.Errorf("failed to decode disk geometry catalog: %w", err))
	}

	catalogBySlug = make(map[string]CatalogEntry, len(catalog))
	for i, row := range catalog {
		_, exists := catalogBySlug[row.Slug]
		if exists {
			message := fmt.Errorf(
				"duplicate definition for disk %q found on row %d", row.Slug, i+1)
			panic(message)
		}
		catalogBySlug[row.Slug] = row
	}
}
