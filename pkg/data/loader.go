package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header is the column order used by ReadProperties and WriteProperties.
var Header = []string{"id", ColLandUse, ColParcelArea, ColBedrooms, ColWater}

func isNA(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "NA" || s == "NaN"
}

// ReadProperties parses a CSV with the Header columns. Empty, "NA" and "NaN"
// cells are loaded as missing.
func ReadProperties(r io.Reader) ([]Property, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.ReuseRecord = true
	reader.FieldsPerRecord = len(Header)

	head, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	for i, h := range head {
		if strings.TrimSpace(h) != Header[i] {
			return nil, fmt.Errorf("csv: column %d is %q, want %q", i, h, Header[i])
		}
	}

	var props []Property
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		p, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		props = append(props, p)
	}
	return props, nil
}

func parseRecord(rec []string) (Property, error) {
	p := Property{ID: strings.TrimSpace(rec[0])}
	if p.ID == "" {
		return p, errors.New("empty id")
	}
	if isNA(rec[1]) {
		p.Missing |= FieldLandUse
	} else {
		lu, err := ParseLandUse(rec[1])
		if err != nil {
			return p, err
		}
		p.LandUse = lu
	}
	if isNA(rec[2]) {
		p.Missing |= FieldParcelArea
	} else {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return p, fmt.Errorf("%s: %w", ColParcelArea, err)
		}
		p.ParcelArea = v
	}
	if isNA(rec[3]) {
		p.Missing |= FieldBedrooms
	} else {
		v, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			return p, fmt.Errorf("%s: %w", ColBedrooms, err)
		}
		p.Bedrooms = v
	}
	if isNA(rec[4]) {
		p.Missing |= FieldWater
	} else {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			return p, fmt.Errorf("%s: %w", ColWater, err)
		}
		p.WaterConsumption = v
	}
	return p, nil
}

// WriteProperties writes props with a header row; missing cells become "NA".
func WriteProperties(w io.Writer, props []Property) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, p := range props {
		row := []string{p.ID, "NA", "NA", "NA", "NA"}
		if !p.IsMissing(FieldLandUse) {
			row[1] = p.LandUse.String()
		}
		if !p.IsMissing(FieldParcelArea) {
			row[2] = strconv.FormatFloat(p.ParcelArea, 'f', -1, 64)
		}
		if !p.IsMissing(FieldBedrooms) {
			row[3] = strconv.Itoa(p.Bedrooms)
		}
		if !p.IsMissing(FieldWater) {
			row[4] = strconv.FormatFloat(p.WaterConsumption, 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
