package sample

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
)

// ExcludeMarker prefixes read files that are never processed.
const ExcludeMarker = "_"

// Sample is one paired-end library. R1 and R2 are absolute paths; either
// may be empty when its mate is missing on disk.
type Sample struct {
	Name string
	R1   string
	R2   string
}

// Mate returns the path of mate m.
func (s Sample) Mate(m config.Mate) string {
	if m == config.Mate2 {
		return s.R2
	}
	return s.R1
}

// Complete reports whether both mates are present.
func (s Sample) Complete() bool {
	return s.R1 != "" && s.R2 != ""
}

// IsReadFile reports whether name is a compressed FASTQ file that should be
// processed.
func IsReadFile(name string) bool {
	if strings.HasPrefix(name, ExcludeMarker) {
		return false
	}
	return strings.HasSuffix(name, "fastq.gz") || strings.HasSuffix(name, "fq.gz")
}

// Discover enumerates the samples in dir. Entries are visited in name
// order, so the result does not depend on how the filesystem lists them.
// Samples are returned once each, in first-seen order.
func Discover(dir string, naming config.Naming) ([]Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.DirectoryMissing(dir).WithCause(err)
		}
		return nil, errors.Internal(err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Internal(err)
	}

	var samples []Sample
	index := make(map[string]int)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsReadFile(name) {
			continue
		}
		id, mate, ok := naming.Split(name)
		if !ok {
			return nil, errors.InvalidPairNaming(name, naming.PairID1, naming.PairID2)
		}

		i, seen := index[id]
		if !seen {
			i = len(samples)
			index[id] = i
			samples = append(samples, Sample{Name: id})
		}
		path := filepath.Join(abs, name)
		switch mate {
		case config.Mate1:
			if samples[i].R1 == "" {
				samples[i].R1 = path
			}
		case config.Mate2:
			if samples[i].R2 == "" {
				samples[i].R2 = path
			}
		}
	}
	return samples, nil
}

// Names returns the sample identifiers in order.
func Names(samples []Sample) []string {
	names := make([]string, len(samples))
	for i, s := range samples {
		names[i] = s.Name
	}
	return names
}
