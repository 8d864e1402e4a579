package qc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/BioSina/MAPle/errors"
)

// DataFile is the report file inside a FastQC archive.
const DataFile = "fastqc_data.txt"

// Metric is the part of a FastQC report the gates look at.
type Metric struct {
	MinLength int
	MaxLength int
	Reads     int
}

// ParseReport reads a fastqc_data.txt stream.
func ParseReport(r io.Reader) (Metric, error) {
	return parseReport(r, DataFile)
}

func parseReport(r io.Reader, name string) (Metric, error) {
	var m Metric
	var haveReads bool
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Total Sequences"):
			n, err := strconv.Atoi(lastField(line))
			if err != nil {
				return Metric{}, errors.ReportInvalid(name, fmt.Sprintf("bad read count %q", lastField(line)))
			}
			m.Reads = n
			haveReads = true
		case strings.HasPrefix(line, "Sequence length"):
			lo, hi, err := parseRange(lastField(line))
			if err != nil {
				return Metric{}, errors.ReportInvalid(name, fmt.Sprintf("bad sequence length %q", lastField(line)))
			}
			m.MinLength, m.MaxLength = lo, hi
		}
	}
	if err := scanner.Err(); err != nil {
		return Metric{}, errors.ReportInvalid(name, err.Error()).WithCause(err)
	}
	if !haveReads {
		return Metric{}, errors.ReportInvalid(name, "no Total Sequences line")
	}
	return m, nil
}

func lastField(line string) string {
	fields := strings.Split(line, "\t")
	return strings.TrimSpace(fields[len(fields)-1])
}

// parseRange accepts "151" or "35-151".
func parseRange(s string) (int, int, error) {
	lo, hi, found := strings.Cut(s, "-")
	minLen, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return minLen, minLen, nil
	}
	maxLen, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, err
	}
	return minLen, maxLen, nil
}

// ReadArchive parses the report inside a FastQC zip archive and extracts
// it next to the archive, under <archive dir>/<base>_fastqc/.
func ReadArchive(path string) (Metric, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return Metric{}, errors.ReportInvalid(path, "cannot open archive").WithCause(err)
	}
	defer rc.Close()

	for _, f := range rc.File {
		if f.Name != DataFile && !strings.HasSuffix(f.Name, "/"+DataFile) {
			continue
		}
		body, err := f.Open()
		if err != nil {
			return Metric{}, errors.ReportInvalid(path, "cannot read "+f.Name).WithCause(err)
		}
		defer body.Close()

		// The extracted copy is a convenience; parse from the archive stream.
		var extracted io.Writer = io.Discard
		if out, err := extractTarget(filepath.Dir(path), f.Name); err == nil {
			defer out.Close()
			extracted = out
		}
		return parseReport(io.TeeReader(body, extracted), path)
	}
	return Metric{}, errors.ReportInvalid(path, "archive has no "+DataFile)
}

func extractTarget(dir, name string) (*os.File, error) {
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("qc: unsafe archive entry %q", name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}
	return os.Create(target)
}
