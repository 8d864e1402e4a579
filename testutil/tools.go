package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BioSina/MAPle/config"
)

// FakeTools is a set of shell scripts standing in for the external tools.
type FakeTools struct {
	t testing.TB

	// Dir holds the scripts; Fixtures holds report archives served by the
	// fake fastqc.
	Dir      string
	Fixtures string

	FastQC     string
	Perl       string
	Prinseq    string
	Diamond    string
	Malt       string
	MeganTools string
	Metaxa     string

	calls string
}

// NewFakeTools writes the scripts into a temporary directory.
func NewFakeTools(t testing.TB) *FakeTools {
	t.Helper()
	dir := t.TempDir()
	ft := &FakeTools{
		t:          t,
		Dir:        dir,
		Fixtures:   filepath.Join(dir, "fixtures"),
		FastQC:     filepath.Join(dir, "fastqc"),
		Perl:       filepath.Join(dir, "perl"),
		Prinseq:    filepath.Join(dir, "prinseq-lite.pl"),
		Diamond:    filepath.Join(dir, "diamond"),
		Malt:       filepath.Join(dir, "malt-run"),
		MeganTools: filepath.Join(dir, "tools"),
		Metaxa:     filepath.Join(dir, "metaxa2"),
		calls:      filepath.Join(dir, "calls.log"),
	}
	if err := os.MkdirAll(ft.Fixtures, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(ft.MeganTools, 0o755); err != nil {
		t.Fatal(err)
	}

	ft.write(ft.FastQC, "fastqc", `out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    -*) shift ;;
    *)
      b=$(basename "$1"); b=${b%.gz}; b=${b%.fastq}; b=${b%.fq}
      if [ ! -f "$FIXTURES/${b}_fastqc.zip" ]; then echo "no report fixture for $b" >&2; exit 1; fi
      cp "$FIXTURES/${b}_fastqc.zip" "$out/"
      shift ;;
  esac
done`)

	ft.write(ft.Perl, "prinseq", `shift
while [ $# -gt 0 ]; do
  case "$1" in
    -fastq) f1="$2"; shift 2 ;;
    -fastq2) f2="$2"; shift 2 ;;
    -log) log="$2"; shift 2 ;;
    -out_good) good="$2"; shift 2 ;;
    -out_bad) bad="$2"; shift 2 ;;
    *) shift ;;
  esac
done
[ -f "$f1" ] && [ -f "$f2" ] || { echo "missing input" >&2; exit 1; }
cp "$f1" "${good}_1.fastq"
cp "$f2" "${good}_2.fastq"
: > "${bad}_1.fastq"
: > "$log"`)

	ft.write(ft.Diamond, "diamond", `while [ $# -gt 0 ]; do
  case "$1" in
    -d) db="$2"; shift 2 ;;
    -a) out="$2"; shift 2 ;;
    -q) query="$2"; shift 2 ;;
    *) shift ;;
  esac
done
[ -f "$db" ] || { echo "Error: Error opening file $db: No such file or directory" >&2; exit 1; }
[ -f "$query" ] || { echo "Error: Error opening file $query" >&2; exit 1; }
: > "$out"`)

	ft.write(filepath.Join(ft.MeganTools, "daa2rma"), "daa2rma", `inputs=""
while [ $# -gt 0 ]; do
  case "$1" in
    -i) shift; while [ $# -gt 0 ] && [ "${1#-}" = "$1" ]; do inputs="$inputs $1"; shift; done ;;
    -o) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
for f in $inputs; do [ -f "$f" ] || { echo "missing $f" >&2; exit 1; }; done
: > "$out"`)

	ft.write(ft.Malt, "malt-run", `while [ $# -gt 0 ]; do
  case "$1" in
    -i) in="$2"; shift 2 ;;
    -d) db="$2"; shift 2 ;;
    -o) out="$2"; shift 2 ;;
    -ou) unaligned="$2"; shift 2 ;;
    -oa) aligned="$2"; shift 2 ;;
    *) shift ;;
  esac
done
[ -e "$db" ] || { echo "Can't open index $db: No such file" >&2; exit 1; }
[ -f "$in" ] || { echo "missing $in" >&2; exit 1; }
: > "$out"
[ -n "$unaligned" ] && : > "$unaligned.gz"
[ -n "$aligned" ] && : > "$aligned.gz"
exit 0`)

	ft.write(ft.Metaxa, "metaxa2", `while [ $# -gt 0 ]; do
  case "$1" in
    -o) prefix="$2"; shift 2 ;;
    -1) r1="$2"; shift 2 ;;
    -2) r2="$2"; shift 2 ;;
    *) shift ;;
  esac
done
[ -f "$r1" ] && [ -f "$r2" ] || { echo "missing input" >&2; exit 1; }
: > "$prefix.extraction.fasta"
: > "$prefix.summary.txt"`)

	return ft
}

// Apply points cfg at the fake tools and at empty reference files inside
// the tool directory.
func (ft *FakeTools) Apply(cfg *config.Config) {
	ft.t.Helper()
	cfg.Tools.FastQC = ft.FastQC
	cfg.Tools.Perl = ft.Perl
	cfg.Tools.Prinseq = ft.Prinseq
	cfg.Tools.Diamond = ft.Diamond
	cfg.Tools.Malt = ft.Malt
	cfg.Tools.MeganTools = ft.MeganTools
	cfg.Tools.Metaxa = ft.Metaxa

	refs := filepath.Join(ft.Dir, "refs")
	if err := os.MkdirAll(refs, 0o755); err != nil {
		ft.t.Fatal(err)
	}
	ref := func(name string) string {
		path := filepath.Join(refs, name)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			ft.t.Fatal(err)
		}
		return path
	}
	cfg.References.DiamondIndex = ref("diamond.dmnd")
	cfg.References.Taxonomy = ref("acc2tax.abin")
	cfg.References.EggNOG = ref("acc2eggnog.abin")
	cfg.References.InterPro = ref("acc2interpro.abin")
	cfg.References.Seed = ref("acc2seed.abin")
	cfg.References.HostDB = ref("host")
	cfg.References.MaltBase = ref("malt")
}

func (ft *FakeTools) write(path, name, body string) {
	ft.t.Helper()
	script := "#!/bin/sh\n" +
		"FIXTURES='" + ft.Fixtures + "'\n" +
		"echo '" + name + "' \"$@\" >> '" + ft.calls + "'\n" +
		"if [ -f '" + ft.failMarker(name) + "' ]; then echo '" + name + " failed' >&2; exit 3; fi\n" +
		body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		ft.t.Fatal(err)
	}
}

func (ft *FakeTools) failMarker(name string) string {
	return filepath.Join(ft.Dir, "fail-"+name)
}

// Fail makes the named tool (fastqc, prinseq, diamond, daa2rma, malt-run,
// metaxa2) exit with status 3 from now on.
func (ft *FakeTools) Fail(name string) {
	ft.t.Helper()
	if err := os.WriteFile(ft.failMarker(name), nil, 0o644); err != nil {
		ft.t.Fatal(err)
	}
}

// AddReport registers the report the fake fastqc produces for an input
// whose name without extension is base, e.g. "S1.1" or "S1.trimmed.2".
func (ft *FakeTools) AddReport(base string, r Report) {
	ft.t.Helper()
	WriteArchive(ft.t, ft.Fixtures, base, FastQCData(r))
}

// Calls returns one line per tool invocation: the tool name followed by
// its arguments.
func (ft *FakeTools) Calls() []string {
	ft.t.Helper()
	data, err := os.ReadFile(ft.calls)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		ft.t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// CallsTo returns the invocations of one tool.
func (ft *FakeTools) CallsTo(name string) []string {
	var out []string
	for _, c := range ft.Calls() {
		if c == name || strings.HasPrefix(c, name+" ") {
			out = append(out, c)
		}
	}
	return out
}
