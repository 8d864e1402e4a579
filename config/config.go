package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/BioSina/MAPle/logger"
	"github.com/BioSina/MAPle/validation"
)

// Config is the validated, typed pipeline configuration. It is built once
// by Load and passed by value; nothing mutates it after loading.
type Config struct {
	// Name names the run; the run log is written to <outdir>/<Name>.log.
	Name string `key:"name" validate:"required"`

	Tools      Tools
	References References
	Trim       Trim
	Alignment  Alignment
	Thresholds Thresholds
	Naming     Naming
	Modules    Modules
	Runtime    Runtime
	Telemetry  Telemetry
	Logging    logger.Config

	// KeepRaw copies raw files into 00_RAW instead of moving them.
	KeepRaw bool
	// Compressed makes the trimming stage decompress reads before prinseq.
	Compressed bool
}

// Tools holds the external executables.
type Tools struct {
	FastQC     string `key:"FASTQC" validate:"required"`
	Gzip       string `key:"gzip"`
	Perl       string `key:"perl" validate:"required"`
	Prinseq    string `key:"prinseq" validate:"required"`
	Megan      string `key:"megan"`
	Diamond    string `key:"diamond" validate:"required"`
	Malt       string `key:"malt" validate:"required"`
	MeganTools string `key:"megantools" validate:"required"`
	Metaxa     string `key:"metaxa" validate:"required"`
}

// Daa2Rma returns the path of the daa2rma executable inside MeganTools.
func (t Tools) Daa2Rma() string {
	return strings.TrimRight(t.MeganTools, "/") + "/daa2rma"
}

// References holds index and mapping databases consumed by the aligners.
type References struct {
	DiamondIndex string `key:"diamondindex" validate:"required"`
	Taxonomy     string `key:"taxonomy" validate:"required"`
	EggNOG       string `key:"eggnog"`
	InterPro     string `key:"interpro"`
	Seed         string `key:"seed"`
	HostDB       string `key:"hostDB"`
	MaltBase     string `key:"maltbase"`
}

// Trim holds prinseq-lite parameters.
type Trim struct {
	Window    int `key:"trimwindow" validate:"gte=0"`
	Quality   int `key:"trimqual" validate:"gte=0"`
	MinLength int `key:"minlength" validate:"gte=0"`
	Left      int `key:"lefttrim" validate:"gte=0"`
	// SwapMates renames prinseq's good_2 output to the first-mate name and
	// good_1 to the second-mate name, as the pipeline always has.
	SwapMates bool
}

// Alignment holds aligner and classifier parameters.
type Alignment struct {
	MaxEValue   float64 `key:"maxeval" validate:"gte=0"`
	MinSupport  float64 `key:"minsupp" validate:"gte=0"`
	MaltEValue  float64 `key:"malteval" validate:"gte=0"`
	MaltSupport float64 `key:"maltsupp" validate:"gte=0"`
	Threads     int     `key:"threads" validate:"gt=0"`
	Threads16S  int     `key:"threads16S" validate:"gt=0"`
}

// Thresholds holds the quality gate limits.
type Thresholds struct {
	// RawAbsolute is the minimum raw read count (gate 1).
	RawAbsolute int `key:"rawabsolute" validate:"gte=0"`
	// Raw2TrimLoss is the maximum tolerated fraction of reads lost by trimming
	// (gate 2). Values of 1 or more disable the gate.
	Raw2TrimLoss float64 `key:"raw2trimloss" validate:"gte=0"`
}

// Modules toggles the sub-pipelines run after both quality gates.
type Modules struct {
	Basic      bool
	FilterHost bool
	SixteenS   bool
}

// Any reports whether at least one sub-pipeline is enabled.
func (m Modules) Any() bool {
	return m.Basic || m.FilterHost || m.SixteenS
}

// Runtime holds execution controls for external tools and scheduling.
type Runtime struct {
	// StageTimeout bounds every tool invocation; zero means no limit.
	StageTimeout time.Duration `key:"stageTimeout" validate:"gte=0"`
	// GracePeriod is the delay between SIGTERM and SIGKILL on cancellation.
	GracePeriod time.Duration `key:"gracePeriod" validate:"gte=0"`
	// Attempts is the number of tries for a timed-out tool.
	Attempts int `key:"retries" validate:"gte=1"`
	// SampleWorkers is the number of samples processed concurrently.
	SampleWorkers int `key:"sampleWorkers" validate:"gte=1"`
	// SubpipelineParallel bounds concurrent sub-pipeline stages within a sample.
	SubpipelineParallel int `key:"subpipelineParallel" validate:"gte=1"`
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	// OTLPEndpoint is an OTLP/HTTP host:port; empty disables export.
	OTLPEndpoint string `key:"otlpEndpoint"`
	Insecure     bool
}

// Naming holds the pair identifiers distinguishing first-mate from
// second-mate read files.
type Naming struct {
	PairID1 string `key:"pairID1" validate:"required"`
	PairID2 string `key:"pairID2" validate:"required"`

	p1, p2 *regexp.Regexp
}

// Mate identifies one side of a read pair.
type Mate int

const (
	Mate1 Mate = 1
	Mate2 Mate = 2
)

// Mates lists both sides of a pair in order.
var Mates = []Mate{Mate1, Mate2}

func (m Mate) String() string {
	return fmt.Sprintf("R%d", int(m))
}

// NewNaming builds a Naming with compiled, escaped patterns.
func NewNaming(pairID1, pairID2 string) Naming {
	return Naming{
		PairID1: pairID1,
		PairID2: pairID2,
		p1:      regexp.MustCompile(regexp.QuoteMeta(pairID1)),
		p2:      regexp.MustCompile(regexp.QuoteMeta(pairID2)),
	}
}

// PairID returns the identifier for mate m.
func (n Naming) PairID(m Mate) string {
	if m == Mate2 {
		return n.PairID2
	}
	return n.PairID1
}

// ShortID returns the identifier for mate m without its trailing character.
// FastQC drops the extension dot when naming its reports, so "S1.1.fastq.gz"
// yields "S1.1_fastqc.zip" and is found with the prefix "S1" + ".1".
func (n Naming) ShortID(m Mate) string {
	id := n.PairID(m)
	if id == "" {
		return id
	}
	return id[:len(id)-1]
}

// Split returns the sample identifier of a raw read file name and which
// mate it holds. The first-mate pattern is tried first; the identifier is
// everything before the first occurrence of the matching pattern.
func (n Naming) Split(filename string) (string, Mate, bool) {
	n = n.compiled()
	if loc := n.p1.FindStringIndex(filename); loc != nil {
		return filename[:loc[0]], Mate1, true
	}
	if loc := n.p2.FindStringIndex(filename); loc != nil {
		return filename[:loc[0]], Mate2, true
	}
	return "", 0, false
}

func (n Naming) compiled() Naming {
	if n.p1 == nil || n.p2 == nil {
		return NewNaming(n.PairID1, n.PairID2)
	}
	return n
}

// Validate checks the configuration, both per-field rules and rules that
// span fields.
func (c Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return validation.New().Custom(false, "logging", err.Error()).Validate()
	}

	v := validation.New()
	v.Distinct("pairID2", c.Naming.PairID1, c.Naming.PairID2)
	v.NotPrefix("pairID2", c.Naming.PairID1, c.Naming.PairID2)
	if c.Modules.FilterHost {
		v.Required("hostDB", c.References.HostDB)
	}
	if c.Modules.SixteenS {
		v.Required("maltbase", c.References.MaltBase)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
