// Command seed_lint validates a calendrical seed dump before it is imported.
// It checks the column layout, timestamp formats and duplicate solar dates so
// a bad dump is caught offline instead of mid-import.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const expectedColumns = 11

func main() {
	strict := flag.Bool("strict", false, "exit non-zero on any malformed row")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: seed_lint [-strict] <seed.csv>")
	}
	path := flag.Arg(0)

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = expectedColumns

	header, err := reader.Read()
	if err != nil {
		log.Fatalf("read header: %v", err)
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "solar_date") {
		log.Fatalf("unexpected header, first column is %q", header[0])
	}

	seen := make(map[string]int)
	line, valid, bad := 1, 0, 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			bad++
			fmt.Fprintf(os.Stderr, "line %d: %v\n", line, err)
			continue
		}
		if problem := lintRow(row, seen, line); problem != "" {
			bad++
			fmt.Fprintf(os.Stderr, "line %d: %s\n", line, problem)
			continue
		}
		valid++
	}

	fmt.Printf("%s: %d valid, %d malformed\n", path, valid, bad)
	if *strict && bad > 0 {
		os.Exit(1)
	}
}

func lintRow(row []string, seen map[string]int, line int) string {
	solar := strings.TrimSpace(row[0])
	if solar == "" {
		return "missing solar_date"
	}
	if _, err := time.Parse("2006-01-02", solar); err != nil {
		return fmt.Sprintf("bad solar_date %q", solar)
	}
	if prev, ok := seen[solar]; ok {
		return fmt.Sprintf("duplicate solar_date %s (first at line %d)", solar, prev)
	}
	seen[solar] = line

	if raw := strings.TrimSpace(row[3]); raw != "" {
		if _, err := time.Parse(time.RFC3339, raw); err != nil {
			return fmt.Sprintf("bad season_start_time %q", raw)
		}
	}
	if raw := strings.TrimSpace(row[4]); raw != "" {
		if _, err := strconv.Atoi(raw); err != nil {
			return fmt.Sprintf("bad leap_month %q", raw)
		}
	}

	for i, name := range [...]string{"year_sky", "year_ground", "month_sky", "month_ground", "day_sky", "day_ground"} {
		if strings.TrimSpace(row[5+i]) == "" {
			return "missing " + name
		}
	}
	return ""
}
