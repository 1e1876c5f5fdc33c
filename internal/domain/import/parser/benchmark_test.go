package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/FACorreiaa/finance-tracker/internal/domain/import/fixtures"
	"github.com/FACorreiaa/finance-tracker/internal/domain/import/sniffer"
)

// BenchmarkTransactionPipeline measures read, sniff and map over DCU exports.
func BenchmarkTransactionPipeline(b *testing.B) {
	logger := discardLogger()
	for _, size := range []int{100, 1000, 10000} {
		data := fixtures.CSV(fixtures.DCUTransactionHeader, fixtures.New(42).DCUTransactions(size))

		b.Run(fmt.Sprintf("DCU_%d_rows", size), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				src, err := NewCSVSource(bytes.NewReader(data))
				if err != nil {
					b.Fatal(err)
				}
				m := NewTransactionMapper(sniffer.Sniff(sniffer.KindTransactions, src.Header()), logger)
				count := 0
				for {
					r, err := src.Next()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						b.Fatal(err)
					}
					if _, ok := m.Map(r); ok {
						count++
					}
				}
				if count != size {
					b.Fatalf("mapped %d rows, want %d", count, size)
				}
			}
		})
	}
}

var fixturesNow = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

func BenchmarkAccountPipeline(b *testing.B) {
	logger := discardLogger()
	data := fixtures.CSV(fixtures.StandardAccountHeader, fixtures.New(42).StandardAccounts(5000))

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		src, err := NewCSVSource(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		format := sniffer.Sniff(sniffer.KindAccounts, src.Header())
		m := NewAccountMapper(format, "bench.csv", logger)
		var records []AccountRecord
		for {
			r, err := src.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				b.Fatal(err)
			}
			if rec, ok := m.Map(r); ok {
				records = append(records, rec)
			}
		}
		_ = FinalizeAccounts(format, records, fixturesNow)
	}
}
