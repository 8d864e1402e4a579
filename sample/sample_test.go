package sample

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("@r1\nACGT\n+\nIIII\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestIsReadFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"S1.1.fastq.gz", true},
		{"S1.1.fq.gz", true},
		{"S1.1.fastq", false},
		{"_S1.1.fastq.gz", false},
		{"notes.txt", false},
	}
	for _, tc := range tests {
		if got := IsReadFile(tc.name); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDiscoverOneSamplePerPair(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"B.2.fastq.gz", "A.1.fastq.gz", "B.1.fastq.gz", "A.2.fastq.gz",
		"C.1.fq.gz", "C.2.fq.gz", "_X.1.fastq.gz", "readme.txt",
	)

	samples, err := Discover(dir, config.NewNaming(".1.", ".2."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Names(samples); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("expected [A B C], got %v", got)
	}
	for _, s := range samples {
		if !s.Complete() {
			t.Errorf("%s: expected both mates, got %+v", s.Name, s)
		}
		if filepath.Base(s.Mate(config.Mate1)) != s.Name+".1."+suffix(s.Name) {
			t.Errorf("%s: unexpected first mate %s", s.Name, s.R1)
		}
		if !filepath.IsAbs(s.R2) {
			t.Errorf("%s: expected absolute path, got %s", s.Name, s.R2)
		}
	}
}

func suffix(name string) string {
	if name == "C" {
		return "fq.gz"
	}
	return "fastq.gz"
}

func TestDiscoverIndependentOfCreationOrder(t *testing.T) {
	files := []string{"S3.1.fastq.gz", "S1.2.fastq.gz", "S2.1.fastq.gz", "S1.1.fastq.gz", "S3.2.fastq.gz", "S2.2.fastq.gz"}
	naming := config.NewNaming(".1.", ".2.")

	var results [][]string
	for _, order := range [][]string{files, reversed(files)} {
		dir := t.TempDir()
		writeFiles(t, dir, order...)
		samples, err := Discover(dir, naming)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		names := Names(samples)
		seen := map[string]bool{}
		for _, n := range names {
			if seen[n] {
				t.Fatalf("duplicate sample %s in %v", n, names)
			}
			seen[n] = true
		}
		results = append(results, names)
	}
	if !reflect.DeepEqual(results[0], results[1]) {
		t.Errorf("discovery depends on creation order: %v vs %v", results[0], results[1])
	}
	sorted := append([]string(nil), results[0]...)
	sort.Strings(sorted)
	if !reflect.DeepEqual(sorted, []string{"S1", "S2", "S3"}) {
		t.Errorf("unexpected samples %v", results[0])
	}
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func TestDiscoverFirstMatchWins(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "run_R1_lane_R2_.fastq.gz")

	samples, err := Discover(dir, config.NewNaming("_R1_", "_R2_"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 1 || samples[0].Name != "run" || samples[0].R1 == "" || samples[0].R2 != "" {
		t.Fatalf("expected first-mate match on 'run', got %+v", samples)
	}
}

func TestDiscoverRejectsUnknownNaming(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "S1.1.fastq.gz", "S1_R2.fastq.gz")

	_, err := Discover(dir, config.NewNaming(".1.", ".2."))
	if errors.CodeOf(err) != errors.ErrCodeInvalidPairNaming {
		t.Fatalf("expected INVALID_PAIR_NAMING, got %v", err)
	}
	if !errors.IsFatal(err) {
		t.Fatal("unrecognized naming aborts the run")
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), config.NewNaming(".1.", ".2."))
	if errors.CodeOf(err) != errors.ErrCodeDirectoryMissing {
		t.Fatalf("expected DIRECTORY_MISSING, got %v", err)
	}
}

func TestStageCopyAndMove(t *testing.T) {
	tests := []struct {
		name       string
		keepRaw    bool
		sourceLeft bool
	}{
		{"copy keeps input", true, true},
		{"move empties input", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in, raw := t.TempDir(), filepath.Join(t.TempDir(), "00_RAW")
			writeFiles(t, in, "S1.1.fastq.gz", "S1.2.fastq.gz", "_skip.1.fastq.gz")

			staged, err := Stage(context.Background(), in, raw, tc.keepRaw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(staged) != 2 {
				t.Fatalf("expected 2 staged files, got %v", staged)
			}
			for _, name := range []string{"S1.1.fastq.gz", "S1.2.fastq.gz"} {
				if _, err := os.Stat(filepath.Join(raw, name)); err != nil {
					t.Errorf("%s not staged: %v", name, err)
				}
				_, err := os.Stat(filepath.Join(in, name))
				if (err == nil) != tc.sourceLeft {
					t.Errorf("%s: expected source present=%v", name, tc.sourceLeft)
				}
			}
			if _, err := os.Stat(filepath.Join(raw, "_skip.1.fastq.gz")); err == nil {
				t.Error("excluded files must not be staged")
			}
		})
	}
}

func TestStageSkipsIdenticalFiles(t *testing.T) {
	in, raw := t.TempDir(), t.TempDir()
	writeFiles(t, in, "S1.1.fastq.gz")
	writeFiles(t, raw, "S1.1.fastq.gz")

	staged, err := Stage(context.Background(), in, raw, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(staged) != 0 {
		t.Fatalf("expected nothing staged, got %v", staged)
	}
}

func TestStageCanceled(t *testing.T) {
	in, raw := t.TempDir(), t.TempDir()
	writeFiles(t, in, "S1.1.fastq.gz")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Stage(ctx, in, raw, true)
	if errors.CodeOf(err) != errors.ErrCodeCanceled {
		t.Fatalf("expected CANCELED, got %v", err)
	}
}

func TestSetupIsIdempotentAfterMove(t *testing.T) {
	in := t.TempDir()
	raw := filepath.Join(t.TempDir(), "00_RAW")
	writeFiles(t, in, "S1.1.fastq.gz", "S1.2.fastq.gz", "S2.1.fastq.gz", "S2.2.fastq.gz")
	naming := config.NewNaming(".1.", ".2.")

	first, err := Setup(context.Background(), in, raw, naming, false)
	if err != nil {
		t.Fatalf("first setup: %v", err)
	}
	second, err := Setup(context.Background(), in, raw, naming, false)
	if err != nil {
		t.Fatalf("second setup: %v", err)
	}

	if !reflect.DeepEqual(Names(first), []string{"S1", "S2"}) {
		t.Fatalf("unexpected first run samples %v", Names(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-run discovered %+v, expected %+v", second, first)
	}
	for _, s := range second {
		if filepath.Dir(s.R1) != raw && !sameDir(t, filepath.Dir(s.R1), raw) {
			t.Errorf("%s: expected paths inside %s, got %s", s.Name, raw, s.R1)
		}
	}
}

func sameDir(t *testing.T, a, b string) bool {
	t.Helper()
	ai, err1 := os.Stat(a)
	bi, err2 := os.Stat(b)
	return err1 == nil && err2 == nil && os.SameFile(ai, bi)
}

func TestSetupLimitsToInputSamples(t *testing.T) {
	in, raw := t.TempDir(), t.TempDir()
	writeFiles(t, raw, "OLD.1.fastq.gz", "OLD.2.fastq.gz")
	writeFiles(t, in, "NEW.1.fastq.gz")

	samples, err := Setup(context.Background(), in, raw, config.NewNaming(".1.", ".2."), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 1 || samples[0].Name != "NEW" {
		t.Fatalf("expected only NEW, got %+v", samples)
	}
	if samples[0].Complete() {
		t.Error("NEW lacks its second mate")
	}
}

func TestSetupIgnoresLeftoversInRaw(t *testing.T) {
	in, raw := t.TempDir(), t.TempDir()
	writeFiles(t, raw, "OLD_R1.fastq.gz", "OLD_R2.fastq.gz")
	writeFiles(t, in, "S1.1.fastq.gz", "S1.2.fastq.gz")

	samples, err := Setup(context.Background(), in, raw, config.NewNaming(".1.", ".2."), true)
	if err != nil {
		t.Fatalf("files from another naming scheme in the raw directory: %v", err)
	}
	if !reflect.DeepEqual(Names(samples), []string{"S1"}) {
		t.Fatalf("expected only S1, got %v", Names(samples))
	}
	if !samples[0].Complete() || !sameDir(t, filepath.Dir(samples[0].R2), raw) {
		t.Errorf("expected both mates inside %s, got %+v", raw, samples[0])
	}
}

func TestStageFailureIsFatal(t *testing.T) {
	in, raw := t.TempDir(), t.TempDir()
	writeFiles(t, in, "S1.1.fastq.gz")
	if err := os.Mkdir(filepath.Join(raw, "S1.1.fastq.gz"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := Stage(context.Background(), in, raw, true)
	if errors.CodeOf(err) != errors.ErrCodeSetupFailed {
		t.Fatalf("expected SETUP_FAILED, got %v", err)
	}
	if !errors.IsFatal(err) {
		t.Fatal("a read file that cannot be staged aborts the run")
	}
}

func TestSetupMissingInput(t *testing.T) {
	_, err := Setup(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), config.NewNaming(".1.", ".2."), true)
	if errors.CodeOf(err) != errors.ErrCodeInputNotFound {
		t.Fatalf("expected INPUT_NOT_FOUND, got %v", err)
	}
	if !errors.IsFatal(err) {
		t.Fatal("missing input aborts the run")
	}
}
