package stage

import (
	"github.com/BioSina/MAPle/config"
)

// Names builds the file names of a sample's intermediate outputs. The pair
// identifier is spliced in verbatim, so with ".1." the trimmed first mate
// of S1 is "S1.trimmed.1.fastq".
type Names struct {
	naming config.Naming
}

// NewNames returns the naming scheme for the given pair identifiers.
func NewNames(naming config.Naming) Names {
	return Names{naming: naming}
}

// TrimmedPrefix is the name prefix of the trimmed reads and their reports.
func (n Names) TrimmedPrefix(sample string) string { return sample + ".trimmed" }

// Trimmed is the trimmed read file of one mate.
func (n Names) Trimmed(sample string, m config.Mate) string {
	return n.TrimmedPrefix(sample) + n.naming.PairID(m) + "fastq"
}

// Scratch is the decompressed copy of a raw mate that prinseq reads.
func (n Names) Scratch(sample string, m config.Mate) string {
	return sample + n.naming.PairID(m) + "fastq"
}

// TrimLog is prinseq's log file.
func (n Names) TrimLog(sample string) string { return sample + ".log" }

// TrimGood and TrimBad are prinseq's output prefixes; prinseq appends
// _1.fastq and _2.fastq.
func (n Names) TrimGood(sample string) string { return sample + ".trim.good" }
func (n Names) TrimBad(sample string) string  { return sample + ".trim.bad" }

// Daa is the DIAMOND alignment archive of one mate.
func (n Names) Daa(sample string, m config.Mate) string {
	return sample + n.naming.PairID(m) + "daa"
}

// Rma6 is the MEGAN file combining both mates' alignments.
func (n Names) Rma6(sample string) string { return sample + ".rma6" }

// Filtered holds the reads of one mate that did not align to the host.
// MALT compresses it, so the file on disk carries FilteredGz's name.
func (n Names) Filtered(sample string, m config.Mate) string {
	return sample + ".filtered" + n.naming.PairID(m) + "fasta"
}

// FilteredGz is the compressed file MALT writes for Filtered.
func (n Names) FilteredGz(sample string, m config.Mate) string {
	return n.Filtered(sample, m) + ".gz"
}

// Host holds the reads of one mate that aligned to the host.
func (n Names) Host(sample string, m config.Mate) string {
	return sample + ".host" + n.naming.PairID(m) + "fasta"
}

// HostRma is the MALT classification file of the host alignment.
func (n Names) HostRma(sample string, m config.Mate) string {
	return sample + ".temp" + n.naming.PairID(m) + "rma"
}

// Extraction is the metaxa2 output holding the selected 16S reads.
func (n Names) Extraction(sample string) string { return sample + ".extraction.fasta" }

// Rma16S is the MALT classification of the 16S reads.
func (n Names) Rma16S(sample string) string { return sample + ".rma" }
