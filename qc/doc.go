// Package qc reads FastQC reports and evaluates the two quality gates that
// decide whether a sample continues through the pipeline.
//
// A report archive produced with fastqc --noextract is opened in-process;
// only the read count and the sequence length range are taken from it:
//
//	m, err := qc.Evaluate(filepath.Join(out, "00_RAW"), "S1", cfg.Naming)
//	if d := qc.RawGate(m, cfg.Thresholds.RawAbsolute); !d.Pass {
//		// breakpoint
//	}
package qc
