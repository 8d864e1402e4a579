package stage

// Stage describes one step of the pipeline: the directory it reads from,
// the directory it writes to and the tool it runs.
type Stage struct {
	Name string
	// InDir must exist before the stage runs. Empty means no check.
	InDir string
	// OutDir is created on first use.
	OutDir string
	// SubDir is created inside OutDir, e.g. ReportDir for FastQC archives.
	SubDir string
	// Relax opens OutDir up to mode 0777 when it is created.
	Relax bool
	Tool  string
}

// Pipeline stages in the order a sample passes through them.
var (
	RawQC      = Stage{Name: "raw_qc", InDir: RawDir, OutDir: RawDir, SubDir: ReportDir, Tool: "fastqc"}
	Trim       = Stage{Name: "trim", InDir: RawDir, OutDir: TrimmedDir, Tool: "prinseq"}
	TrimQC     = Stage{Name: "trim_qc", InDir: TrimmedDir, OutDir: TrimmedDir, SubDir: ReportDir, Tool: "fastqc"}
	BasicAlign = Stage{Name: "basic_align", InDir: TrimmedDir, OutDir: BasicAlignedDir, Relax: true, Tool: "diamond"}
	BasicMegan = Stage{Name: "basic_megan", InDir: BasicAlignedDir, OutDir: BasicMeganDir, Relax: true, Tool: "daa2rma"}
	HostFilter = Stage{Name: "host_filter", InDir: TrimmedDir, OutDir: HostFilteredDir, Relax: true, Tool: "malt-run"}
	HostAlign  = Stage{Name: "host_align", InDir: HostFilteredDir, OutDir: HostAlignedDir, Relax: true, Tool: "diamond"}
	HostMegan  = Stage{Name: "host_megan", InDir: HostAlignedDir, OutDir: HostMeganDir, Relax: true, Tool: "daa2rma"}
	Select16S  = Stage{Name: "16s_select", InDir: TrimmedDir, OutDir: Selected16SDir, Tool: "metaxa2"}
	Align16S   = Stage{Name: "16s_align", InDir: Selected16SDir, OutDir: Aligned16SDir, Tool: "malt-run"}
)
