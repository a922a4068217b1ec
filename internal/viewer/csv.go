package viewer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

const (
	criticalYes = "Sì"
	criticalNo  = "No"
)

var csvHeader = []string{"name", "winery", "supplier", "vintage", "quantity", "price", "type", "critical"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// WriteCSV writes one line per snapshot row after the header.
func WriteCSV(w io.Writer, snapshot *types.Snapshot) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if snapshot != nil {
		for _, row := range snapshot.Rows {
			if err := writer.Write(csvRecord(row)); err != nil {
				return fmt.Errorf("write csv row %d: %w", row.ID, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvRecord(row types.SnapshotRow) []string {
	vintage := ""
	if row.Vintage != nil {
		vintage = strconv.Itoa(*row.Vintage)
	}
	critical := criticalNo
	if row.Critical {
		critical = criticalYes
	}
	return []string{
		row.Name,
		row.Winery,
		row.Supplier,
		vintage,
		strconv.Itoa(row.Qty),
		strconv.FormatFloat(row.Price, 'f', 2, 64),
		row.Type,
		critical,
	}
}

// CSVFilename derives the download name from the business name.
func CSVFilename(businessName string) string {
	name := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(businessName), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "inventario.csv"
	}
	return "inventario_" + name + ".csv"
}
