package pedigree

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var header = []string{"id", "sire", "dam", "generation", "sex"}

// ReadFile loads a pedigree from a .csv or .xlsx/.xlsm file.
func ReadFile(path string) (*Pedigree, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, "")
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// ReadCSV parses records of the form id,sire,dam[,generation[,sex]]. A
// leading header row is skipped. Unknown parents are written as an empty
// field, 0, NA or a dot. Without a generation column generations are
// derived from the parents.
func ReadCSV(r io.Reader) (*Pedigree, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read pedigree csv: %w", err)
	}
	return fromRecords(records)
}

// ReadXLSX parses the named sheet (the first sheet when empty) of a
// spreadsheet with the same columns as ReadCSV.
func ReadXLSX(path, sheet string) (*Pedigree, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: spreadsheet has no sheets", ErrFormat)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) (*Pedigree, error) {
	p := New()
	withGeneration := false

	for line, rec := range records {
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if line == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "id") {
			continue
		}
		for len(rec) < 3 {
			rec = append(rec, "")
		}

		ind := Individual{
			ID:   strings.TrimSpace(rec[0]),
			Sire: parentField(rec[1]),
			Dam:  parentField(rec[2]),
		}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			g, err := strconv.Atoi(strings.TrimSpace(rec[3]))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: generation %q", ErrFormat, line+1, rec[3])
			}
			ind.Generation = g
			withGeneration = true
		}
		if len(rec) > 4 {
			ind.Sex = ParseSex(rec[4])
		}

		if err := p.Add(ind); err != nil {
			if errors.Is(err, ErrEmptyID) {
				return nil, fmt.Errorf("%w: line %d", err, line+1)
			}
			return nil, err
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !withGeneration {
		if err := p.AssignGenerations(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func parentField(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "0", "NA", ".":
		return ""
	}
	return s
}

func toRecord(ind Individual) []string {
	return []string{ind.ID, ind.Sire, ind.Dam, strconv.Itoa(ind.Generation), ind.Sex.String()}
}

// WriteCSV writes the pedigree in insertion order with a header row.
func WriteCSV(w io.Writer, p *Pedigree) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, ind := range p.individuals {
		if err := cw.Write(toRecord(ind)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX saves the pedigree to a spreadsheet with one sheet.
func WriteXLSX(path string, p *Pedigree) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	rows := [][]string{header}
	for _, ind := range p.individuals {
		rows = append(rows, toRecord(ind))
	}

	for r, rec := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(rec))
		for i, v := range rec {
			vals[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	return f.SaveAs(path)
}
