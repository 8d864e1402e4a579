package stage

import (
	"strconv"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/process"
)

// FastQC runs FastQC on files, writing the zipped reports into outDir.
func FastQC(tools config.Tools, outDir string, files ...string) process.Command {
	args := []string{"-noextract", "-o", outDir}
	return process.Command{Binary: tools.FastQC, Args: append(args, files...)}
}

// Prinseq runs prinseq-lite on a pair of uncompressed FASTQ files.
func Prinseq(cfg config.Config, in1, in2, logFile, good, bad string) process.Command {
	args := []string{
		cfg.Tools.Prinseq,
		"-fastq", in1,
		"-fastq2", in2,
		"-log", logFile,
		"-trim_qual_window", strconv.Itoa(cfg.Trim.Window),
		"-trim_qual_right", strconv.Itoa(cfg.Trim.Quality),
		"-trim_left", strconv.Itoa(cfg.Trim.Left),
	}
	if cfg.Trim.MinLength > 0 {
		args = append(args, "-min_len", strconv.Itoa(cfg.Trim.MinLength))
	}
	args = append(args, "-out_good", good, "-out_bad", bad)
	return process.Command{Binary: cfg.Tools.Perl, Args: args}
}

// DiamondBlastx aligns query against the DIAMOND protein index.
func DiamondBlastx(cfg config.Config, query, out string) process.Command {
	return process.Command{
		Binary: cfg.Tools.Diamond,
		Args: []string{
			"blastx",
			"-p", strconv.Itoa(cfg.Alignment.Threads),
			"-d", cfg.References.DiamondIndex,
			"-a", out,
			"-q", query,
		},
	}
}

// Daa2Rma merges DIAMOND archives into one MEGAN file with taxonomic and
// functional mappings. Mapping files left empty in the configuration are
// not passed.
func Daa2Rma(cfg config.Config, out string, inputs ...string) process.Command {
	args := append([]string{"-i"}, inputs...)
	args = append(args, "-o", out, "-p", "true", "-a2t", cfg.References.Taxonomy)
	for _, m := range []struct{ flag, file string }{
		{"-a2interpro2go", cfg.References.InterPro},
		{"-a2eggnog", cfg.References.EggNOG},
		{"-a2seed", cfg.References.Seed},
	} {
		if m.file != "" {
			args = append(args, m.flag, m.file)
		}
	}
	args = append(args,
		"-me", formatFloat(cfg.Alignment.MaxEValue),
		"-supp", formatFloat(cfg.Alignment.MinSupport),
	)
	return process.Command{Binary: cfg.Tools.Daa2Rma(), Args: args}
}

// MaltHostFilter aligns one mate against the host database, writing the
// unaligned reads to filtered and the aligned ones to host. The first mate
// runs verbosely.
func MaltHostFilter(cfg config.Config, m config.Mate, in, rma, filtered, host string) process.Command {
	var args []string
	if m == config.Mate1 {
		args = append(args, "-v")
	}
	args = append(args,
		"-m", "BlastN",
		"-at", "SemiGlobal",
		"-t", strconv.Itoa(cfg.Alignment.Threads),
		"-mem", "page",
		"-id", "75.00",
		"-supp", formatFloat(cfg.Alignment.MinSupport),
		"-e", formatFloat(cfg.Alignment.MaxEValue),
		"-i", in,
		"-d", cfg.References.HostDB,
		"-o", rma,
		"-ou", filtered,
		"-oa", host,
	)
	return process.Command{Binary: cfg.Tools.Malt, Args: args}
}

// Metaxa2 extracts 16S reads from a trimmed pair into files named prefix.*.
func Metaxa2(cfg config.Config, prefix, in1, in2 string) process.Command {
	return process.Command{
		Binary: cfg.Tools.Metaxa,
		Args: []string{
			"-o", prefix,
			"-1", in1,
			"-2", in2,
			"-f", "q",
			"-x", "T",
			"--cpu", strconv.Itoa(cfg.Alignment.Threads16S),
		},
	}
}

// Malt16S aligns and classifies the extracted 16S reads.
func Malt16S(cfg config.Config, in, out string) process.Command {
	return process.Command{
		Binary: cfg.Tools.Malt,
		Args: []string{
			"-m", "BlastN",
			"-at", "SemiGlobal",
			"-t", strconv.Itoa(cfg.Alignment.Threads16S),
			"-rqc", "true",
			"-supp", formatFloat(cfg.Alignment.MaltSupport),
			"-e", formatFloat(cfg.Alignment.MaltEValue),
			"-mpi", "75.0",
			"-top", "10.0",
			"-i", in,
			"-d", cfg.References.MaltBase,
			"-o", out,
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
