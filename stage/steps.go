package stage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/process"
	"github.com/BioSina/MAPle/sample"
)

// ReportDir is the FastQC output directory inside a stage directory.
const ReportDir = "fastqc"

// ReportName returns the archive FastQC writes for file: the base name
// without .gz and without a .fastq or .fq extension, plus "_fastqc.zip".
func ReportName(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), ".gz")
	for _, ext := range []string{".fastq", ".fq"} {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	return base + "_fastqc.zip"
}

// RawQC runs FastQC on both raw mates of s.
func (r *Runner) RawQC(ctx context.Context, s sample.Sample) error {
	return r.Run(ctx, r.fastqc(RawQC, s.Name, s.R1, s.R2))
}

// TrimQC runs FastQC on both trimmed mates of the sample.
func (r *Runner) TrimQC(ctx context.Context, s string) error {
	return r.Run(ctx, r.fastqc(TrimQC, s,
		r.Path(TrimmedDir, r.names.Trimmed(s, config.Mate1)),
		r.Path(TrimmedDir, r.names.Trimmed(s, config.Mate2)),
	))
}

func (r *Runner) fastqc(st Stage, s string, files ...string) Invocation {
	outputs := make([]string, 0, len(files))
	for _, f := range files {
		outputs = append(outputs, filepath.Join(st.OutDir, ReportDir, ReportName(f)))
	}
	return Invocation{
		Stage:    st,
		Sample:   s,
		Commands: []process.Command{FastQC(r.cfg.Tools, r.Path(st.OutDir, ReportDir), files...)},
		Outputs:  outputs,
	}
}

// BasicAlign aligns both trimmed mates against the DIAMOND index.
func (r *Runner) BasicAlign(ctx context.Context, s string) error {
	return r.Run(ctx, r.diamond(BasicAlign, s, func(m config.Mate) string {
		return r.Path(TrimmedDir, r.names.Trimmed(s, m))
	}))
}

// HostAlign aligns both host-filtered mates against the DIAMOND index.
func (r *Runner) HostAlign(ctx context.Context, s string) error {
	return r.Run(ctx, r.diamond(HostAlign, s, func(m config.Mate) string {
		return r.Path(HostFilteredDir, r.names.FilteredGz(s, m))
	}))
}

func (r *Runner) diamond(st Stage, s string, query func(config.Mate) string) Invocation {
	inv := Invocation{
		Stage:      st,
		Sample:     s,
		References: []string{r.cfg.References.DiamondIndex},
	}
	for _, m := range config.Mates {
		daa := r.names.Daa(s, m)
		inv.Commands = append(inv.Commands, DiamondBlastx(r.cfg, query(m), r.Path(st.OutDir, daa)))
		inv.Outputs = append(inv.Outputs, filepath.Join(st.OutDir, daa))
	}
	return inv
}

// BasicMegan turns the basic alignments into one MEGAN file.
func (r *Runner) BasicMegan(ctx context.Context, s string) error {
	return r.Run(ctx, r.daa2rma(BasicMegan, BasicAlignedDir, s))
}

// HostMegan turns the host-filtered alignments into one MEGAN file.
func (r *Runner) HostMegan(ctx context.Context, s string) error {
	return r.Run(ctx, r.daa2rma(HostMegan, HostAlignedDir, s))
}

func (r *Runner) daa2rma(st Stage, alignedDir, s string) Invocation {
	refs := r.cfg.References
	out := r.names.Rma6(s)
	return Invocation{
		Stage:  st,
		Sample: s,
		Commands: []process.Command{Daa2Rma(r.cfg, r.Path(st.OutDir, out),
			r.Path(alignedDir, r.names.Daa(s, config.Mate1)),
			r.Path(alignedDir, r.names.Daa(s, config.Mate2)),
		)},
		Outputs:    []string{filepath.Join(st.OutDir, out)},
		References: []string{refs.Taxonomy, refs.InterPro, refs.EggNOG, refs.Seed},
	}
}

// HostFilter separates each trimmed mate into host and non-host reads
// with MALT.
func (r *Runner) HostFilter(ctx context.Context, s string) error {
	inv := Invocation{
		Stage:      HostFilter,
		Sample:     s,
		References: []string{r.cfg.References.HostDB},
	}
	for _, m := range config.Mates {
		inv.Commands = append(inv.Commands, MaltHostFilter(r.cfg, m,
			r.Path(TrimmedDir, r.names.Trimmed(s, m)),
			r.Path(HostFilteredDir, r.names.HostRma(s, m)),
			r.Path(HostFilteredDir, r.names.Filtered(s, m)),
			r.Path(HostFilteredDir, r.names.Host(s, m)),
		))
		inv.Outputs = append(inv.Outputs, filepath.Join(HostFilteredDir, r.names.Filtered(s, m))+"*")
	}
	return r.Run(ctx, inv)
}

// Select16S extracts the 16S reads of the trimmed pair with metaxa2.
func (r *Runner) Select16S(ctx context.Context, s string) error {
	return r.Run(ctx, Invocation{
		Stage:  Select16S,
		Sample: s,
		Commands: []process.Command{Metaxa2(r.cfg, r.Path(Selected16SDir, s),
			r.Path(TrimmedDir, r.names.Trimmed(s, config.Mate1)),
			r.Path(TrimmedDir, r.names.Trimmed(s, config.Mate2)),
		)},
		Outputs: []string{filepath.Join(Selected16SDir, r.names.Extraction(s))},
	})
}

// Align16S classifies the extracted 16S reads with MALT.
func (r *Runner) Align16S(ctx context.Context, s string) error {
	out := r.names.Rma16S(s)
	return r.Run(ctx, Invocation{
		Stage:  Align16S,
		Sample: s,
		Commands: []process.Command{Malt16S(r.cfg,
			r.Path(Selected16SDir, r.names.Extraction(s)),
			r.Path(Aligned16SDir, out),
		)},
		Outputs:    []string{filepath.Join(Aligned16SDir, out)},
		References: []string{r.cfg.References.MaltBase},
	})
}
