package coder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ResultFile is the CSV name inside the output directory.
const ResultFile = "result.csv"

// Header returns the union of row keys in first-seen order.
func Header(rows []Fields) []string {
	var header []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, f := range row {
			if _, ok := seen[f.Key]; ok {
				continue
			}
			seen[f.Key] = struct{}{}
			header = append(header, f.Key)
		}
	}
	return header
}

// WriteCSV writes a header line and one line per row. Every value is
// quoted with embedded quotes doubled; a key missing from a row is "".
// Nothing is written for zero rows.
func WriteCSV(w io.Writer, rows []Fields) error {
	if len(rows) == 0 {
		return nil
	}
	header := Header(rows)

	bw := bufio.NewWriter(w)
	quoted := make([]string, len(header))
	for i, key := range header {
		quoted[i] = quote(key)
	}
	if _, err := bw.WriteString(strings.Join(quoted, ",") + "\n"); err != nil {
		return err
	}

	for _, row := range rows {
		for i, key := range header {
			v, _ := row.Get(key)
			quoted[i] = quote(v)
		}
		if _, err := bw.WriteString(strings.Join(quoted, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCSVFile writes rows to dir/result.csv and returns the path.
func WriteCSVFile(dir string, rows []Fields) (string, error) {
	path := filepath.Join(dir, ResultFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
