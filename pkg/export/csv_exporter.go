package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Row is one labelled figure inside a report section.
type Row struct {
	Item  string
	Value string
}

// Section groups related figures under a heading, e.g. one distribution
// table or the member roster.
type Section struct {
	Name string
	Rows []Row
}

// Dataset is a titled, sectioned report ready for rendering.
type Dataset struct {
	Title    string
	Sections []Section
}

// CSVExporter renders a dataset into CSV bytes, one record per section row.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV with a fixed section,item,value layout.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Sections) == 0 {
		return nil, fmt.Errorf("csv requires at least one section")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"section", "item", "value"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, section := range data.Sections {
		for _, row := range section.Rows {
			if err := writer.Write([]string{section.Name, row.Item, row.Value}); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
