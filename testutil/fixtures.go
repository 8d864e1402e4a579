package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Report describes the numbers written into a fastqc_data.txt fixture.
type Report struct {
	Reads     int
	MinLength int
	MaxLength int
}

// FastQCData renders r in the FastQC text format.
func FastQCData(r Report) string {
	length := fmt.Sprintf("%d-%d", r.MinLength, r.MaxLength)
	if r.MinLength == r.MaxLength {
		length = fmt.Sprintf("%d", r.MinLength)
	}
	var b strings.Builder
	b.WriteString("##FastQC\t0.11.9\n")
	b.WriteString(">>Basic Statistics\tpass\n")
	b.WriteString("#Measure\tValue\n")
	b.WriteString("Filename\tfixture.fastq.gz\n")
	b.WriteString("File type\tConventional base calls\n")
	b.WriteString("Encoding\tSanger / Illumina 1.9\n")
	fmt.Fprintf(&b, "Total Sequences\t%d\n", r.Reads)
	b.WriteString("Sequences flagged as poor quality\t0\n")
	fmt.Fprintf(&b, "Sequence length\t%s\n", length)
	b.WriteString("%GC\t52\n")
	b.WriteString(">>END_MODULE\n")
	return b.String()
}

// WriteArchive writes a FastQC-style zip at <dir>/<base>_fastqc.zip holding
// <base>_fastqc/fastqc_data.txt with the given content, and returns its path.
func WriteArchive(t testing.TB, dir, base, data string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(base + "_fastqc/fastqc_data.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	w, err = zw.Create(base + "_fastqc/summary.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("PASS\tBasic Statistics\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, base+"_fastqc.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// FASTQ returns n four-line records.
func FASTQ(n int) []byte {
	var b bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "@read%d\nACGTACGTAC\n+\nIIIIIIIIII\n", i)
	}
	return b.Bytes()
}

// WriteGzipFASTQ writes n gzipped FASTQ records to path.
func WriteGzipFASTQ(t testing.TB, path string, n int) {
	t.Helper()
	WriteGzip(t, path, FASTQ(n))
}

// WriteGzip writes data gzip-compressed to path.
func WriteGzip(t testing.TB, path string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}
