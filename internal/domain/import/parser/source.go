package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

// RowSource yields the header once and then data rows in file order.
// Next returns io.EOF after the last row.
type RowSource interface {
	Header() []string
	Next() (RawRow, error)
	Close() error
}

// IsSupportedFile reports whether filename has an extension OpenSource can read.
func IsSupportedFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// OpenSource picks a reader from the file extension.
func OpenSource(filename string, r io.Reader) (RowSource, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return NewCSVSource(r)
	case ".xlsx":
		return NewXLSXSource(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, filepath.Ext(filename))
	}
}

// CSVSource streams rows from a delimited text file.
type CSVSource struct {
	reader *csv.Reader
	header []string
	line   int
}

// NewCSVSource reads the header line, detects its delimiter and prepares the
// stream for data rows.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	delimiter, err := sniffer.DetectDelimiter(first)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	record, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, sniffer.ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header := make([]string, len(record))
	for i, h := range record {
		header[i] = sniffer.CleanHeader(h, i == 0)
	}

	return &CSVSource{reader: reader, header: header, line: 1}, nil
}

func (s *CSVSource) Header() []string { return s.header }

func (s *CSVSource) Next() (RawRow, error) {
	record, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return RawRow{}, io.EOF
		}
		return RawRow{}, fmt.Errorf("failed to read row %d: %w", s.line+1, err)
	}
	line, _ := s.reader.FieldPos(0)
	s.line = line
	return NewRawRow(line, s.header, record), nil
}

func (s *CSVSource) Close() error { return nil }

// XLSXSource reads rows from the best matching worksheet of a workbook.
type XLSXSource struct {
	file   *excelize.File
	rows   *excelize.Rows
	header []string
	line   int
}

// NewXLSXSource opens a workbook and positions on its first non-empty row,
// which is taken as the header.
func NewXLSXSource(r io.Reader) (*XLSXSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}

	sheet := findDataSheet(f)
	if sheet == "" {
		f.Close()
		return nil, sniffer.ErrEmptyFile
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	s := &XLSXSource{file: f, rows: rows}
	for s.rows.Next() {
		s.line++
		cols, err := s.rows.Columns()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		if isBlank(cols) {
			continue
		}
		s.header = make([]string, len(cols))
		for i, h := range cols {
			s.header[i] = sniffer.CleanHeader(h, i == 0)
		}
		return s, nil
	}

	s.Close()
	return nil, sniffer.ErrEmptyFile
}

func (s *XLSXSource) Header() []string { return s.header }

func (s *XLSXSource) Next() (RawRow, error) {
	for s.rows.Next() {
		s.line++
		cols, err := s.rows.Columns()
		if err != nil {
			return RawRow{}, fmt.Errorf("failed to read row %d: %w", s.line, err)
		}
		if isBlank(cols) {
			continue
		}
		return NewRawRow(s.line, s.header, cols), nil
	}
	if err := s.rows.Error(); err != nil {
		return RawRow{}, fmt.Errorf("failed to read rows: %w", err)
	}
	return RawRow{}, io.EOF
}

func (s *XLSXSource) Close() error {
	if s.rows != nil {
		s.rows.Close()
	}
	return s.file.Close()
}

// findDataSheet prefers a sheet named for the data it holds, then the first one.
func findDataSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}

	preferred := []string{"transactions", "accounts", "statement", "data", "sheet1"}
	for _, name := range preferred {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, name) {
				return sheet
			}
		}
	}
	return sheets[0]
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
