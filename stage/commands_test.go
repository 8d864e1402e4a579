package stage

import (
	"reflect"
	"strings"
	"testing"

	"github.com/BioSina/MAPle/config"
)

func TestPrinseqArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Trim = config.Trim{Window: 5, Quality: 20, Left: 3}

	cmd := Prinseq(cfg, "a.fastq", "b.fastq", "s.log", "s.trim.good", "s.trim.bad")
	if cmd.Binary != "perl" {
		t.Errorf("Binary = %q, want perl", cmd.Binary)
	}
	want := []string{
		"prinseq-lite.pl",
		"-fastq", "a.fastq",
		"-fastq2", "b.fastq",
		"-log", "s.log",
		"-trim_qual_window", "5",
		"-trim_qual_right", "20",
		"-trim_left", "3",
		"-out_good", "s.trim.good",
		"-out_bad", "s.trim.bad",
	}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("Args = %v\nwant %v", cmd.Args, want)
	}

	cfg.Trim.MinLength = 50
	cmd = Prinseq(cfg, "a.fastq", "b.fastq", "s.log", "g", "b")
	if !strings.Contains(strings.Join(cmd.Args, " "), "-min_len 50 -out_good g") {
		t.Errorf("min length not passed: %v", cmd.Args)
	}
}

func TestMaltHostFilterVerboseOnFirstMate(t *testing.T) {
	cfg := config.Default()
	first := MaltHostFilter(cfg, config.Mate1, "in", "rma", "f", "h")
	second := MaltHostFilter(cfg, config.Mate2, "in", "rma", "f", "h")

	if first.Args[0] != "-v" {
		t.Errorf("first mate args start with %q, want -v", first.Args[0])
	}
	if second.Args[0] == "-v" {
		t.Error("second mate must not run verbosely")
	}
	if !reflect.DeepEqual(first.Args[1:], second.Args) {
		t.Errorf("mates differ beyond -v:\n%v\n%v", first.Args, second.Args)
	}
	joined := strings.Join(second.Args, " ")
	for _, part := range []string{"-m BlastN", "-at SemiGlobal", "-t 30", "-mem page", "-id 75.00", "-d host", "-o rma -ou f -oa h"} {
		if !strings.Contains(joined, part) {
			t.Errorf("missing %q in %s", part, joined)
		}
	}
}

func TestDaa2RmaArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.MeganTools = "/opt/megan/tools/"
	cfg.Alignment.MaxEValue = 0.001
	cfg.Alignment.MinSupport = 5

	cmd := Daa2Rma(cfg, "out.rma6", "s.1.daa", "s.2.daa")
	if cmd.Binary != "/opt/megan/tools/daa2rma" {
		t.Errorf("Binary = %q", cmd.Binary)
	}
	want := "-i s.1.daa s.2.daa -o out.rma6 -p true -a2t acc2tax.abin -a2interpro2go acc2interpro.abin " +
		"-a2eggnog acc2eggnog.abin -a2seed acc2seed.abin -me 0.001 -supp 5"
	if got := strings.Join(cmd.Args, " "); got != want {
		t.Errorf("Args = %s\nwant %s", got, want)
	}

	cfg.References.EggNOG = ""
	cfg.References.Seed = ""
	got := strings.Join(Daa2Rma(cfg, "o", "x").Args, " ")
	if strings.Contains(got, "-a2eggnog") || strings.Contains(got, "-a2seed") {
		t.Errorf("empty mapping files passed: %s", got)
	}
}

func TestToolArgs(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name   string
		binary string
		args   string
		got    func() (string, []string)
	}{
		{
			name:   "fastqc",
			binary: "fastqc",
			args:   "-noextract -o out a b",
			got: func() (string, []string) {
				c := FastQC(cfg.Tools, "out", "a", "b")
				return c.Binary, c.Args
			},
		},
		{
			name:   "diamond",
			binary: "diamond",
			args:   "blastx -p 30 -d diamond.dmnd -a s.1.daa -q s.trimmed.1.fastq",
			got: func() (string, []string) {
				c := DiamondBlastx(cfg, "s.trimmed.1.fastq", "s.1.daa")
				return c.Binary, c.Args
			},
		},
		{
			name:   "metaxa2",
			binary: "metaxa2",
			args:   "-o sel/s -1 a -2 b -f q -x T --cpu 20",
			got: func() (string, []string) {
				c := Metaxa2(cfg, "sel/s", "a", "b")
				return c.Binary, c.Args
			},
		},
		{
			name:   "malt 16S",
			binary: "malt-run",
			args:   "-m BlastN -at SemiGlobal -t 20 -rqc true -supp 0 -e 0 -mpi 75.0 -top 10.0 -i s.extraction.fasta -d malt -o s.rma",
			got: func() (string, []string) {
				c := Malt16S(cfg, "s.extraction.fasta", "s.rma")
				return c.Binary, c.Args
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binary, args := tt.got()
			if binary != tt.binary {
				t.Errorf("Binary = %q, want %q", binary, tt.binary)
			}
			if got := strings.Join(args, " "); got != tt.args {
				t.Errorf("Args = %s\nwant %s", got, tt.args)
			}
		})
	}
}

func TestNames(t *testing.T) {
	n := NewNames(config.NewNaming("_R1_", "_R2_"))
	tests := map[string]string{
		n.Trimmed("S1", config.Mate1):    "S1.trimmed_R1_fastq",
		n.Trimmed("S1", config.Mate2):    "S1.trimmed_R2_fastq",
		n.Daa("S1", config.Mate2):        "S1_R2_daa",
		n.Rma6("S1"):                     "S1.rma6",
		n.Filtered("S1", config.Mate1):   "S1.filtered_R1_fasta",
		n.FilteredGz("S1", config.Mate1): "S1.filtered_R1_fasta.gz",
		n.Host("S1", config.Mate2):       "S1.host_R2_fasta",
		n.HostRma("S1", config.Mate1):    "S1.temp_R1_rma",
		n.Extraction("S1"):               "S1.extraction.fasta",
		n.Rma16S("S1"):                   "S1.rma",
		n.TrimGood("S1"):                 "S1.trim.good",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestReportName(t *testing.T) {
	tests := map[string]string{
		"/raw/S1.1.fastq.gz":            "S1.1_fastqc.zip",
		"S1_R2_001.fq.gz":               "S1_R2_001_fastqc.zip",
		"01_trimmed/S1.trimmed.1.fastq": "S1.trimmed.1_fastqc.zip",
	}
	for in, want := range tests {
		if got := ReportName(in); got != want {
			t.Errorf("ReportName(%q) = %q, want %q", in, got, want)
		}
	}
}
