package qc

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
)

// ReportDir is the directory, relative to a stage directory, FastQC writes to.
const ReportDir = "fastqc"

const archiveSuffix = "_fastqc.zip"

// Locate returns the report archive in <dir>/fastqc whose name starts with
// prefix. An exact <prefix>_fastqc.zip wins; otherwise the last match in
// name order is used.
func Locate(dir, prefix string) (string, error) {
	reports := filepath.Join(dir, ReportDir)
	entries, err := os.ReadDir(reports)
	if err != nil {
		return "", errors.ReportInvalid(filepath.Join(reports, prefix+"*"+archiveSuffix), "report directory cannot be read").WithCause(err)
	}

	var matches []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}
		if name == prefix+archiveSuffix {
			return filepath.Join(reports, name), nil
		}
		matches = append(matches, name)
	}
	if len(matches) == 0 {
		return "", errors.ReportInvalid(filepath.Join(reports, prefix+"*"+archiveSuffix), "no report found")
	}
	sort.Strings(matches)
	return filepath.Join(reports, matches[len(matches)-1]), nil
}

// Evaluate reads the reports for prefix below dir. Both mates' archives
// (<prefix><pair id without its last char>) must parse; the second mate's
// metric is returned as representative of the sample.
func Evaluate(dir, prefix string, naming config.Naming) (Metric, error) {
	var metric Metric
	for _, mate := range config.Mates {
		path, err := Locate(dir, prefix+naming.ShortID(mate))
		if err != nil {
			return Metric{}, err
		}
		m, err := ReadArchive(path)
		if err != nil {
			return Metric{}, err
		}
		metric = m
	}
	return metric, nil
}
