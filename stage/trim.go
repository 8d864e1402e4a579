package stage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/process"
	"github.com/BioSina/MAPle/sample"
)

// ScratchDir is the directory inside TrimmedDir holding the uncompressed
// reads prinseq works on. It is removed after every trimming run.
const ScratchDir = "temp"

// Trim trims the raw pair of s with prinseq-lite into TrimmedDir.
//
// prinseq needs uncompressed input, so both mates are first decompressed
// (or copied, when the reads are not compressed) into a per-sample scratch
// directory. prinseq's good_2 output becomes the first-mate trimmed file
// and good_1 the second-mate one unless Trim.SwapMates is off.
func (r *Runner) Trim(ctx context.Context, s sample.Sample) error {
	n := r.names
	scratch := r.Path(TrimmedDir, ScratchDir, s.Name)
	in1 := filepath.Join(scratch, n.Scratch(s.Name, config.Mate1))
	in2 := filepath.Join(scratch, n.Scratch(s.Name, config.Mate2))

	return r.Run(ctx, Invocation{
		Stage:  Trim,
		Sample: s.Name,
		Commands: []process.Command{Prinseq(r.cfg, in1, in2,
			r.Path(TrimmedDir, n.TrimLog(s.Name)),
			r.Path(TrimmedDir, n.TrimGood(s.Name)),
			r.Path(TrimmedDir, n.TrimBad(s.Name)),
		)},
		Outputs: []string{
			filepath.Join(TrimmedDir, n.Trimmed(s.Name, config.Mate1)),
			filepath.Join(TrimmedDir, n.Trimmed(s.Name, config.Mate2)),
		},
		Before: func(ctx context.Context) error {
			if err := os.MkdirAll(scratch, 0o755); err != nil {
				return errors.DirectoryMissing(scratch).WithCause(err)
			}
			for mate, dst := range map[config.Mate]string{config.Mate1: in1, config.Mate2: in2} {
				if err := r.unpack(ctx, s.Mate(mate), dst); err != nil {
					return err
				}
			}
			return nil
		},
		After: func() error { return r.renameTrimmed(s.Name) },
		Cleanup: func() {
			_ = os.RemoveAll(scratch)
			// Only succeeds once no other sample is using it.
			_ = os.Remove(filepath.Dir(scratch))
		},
	})
}

func (r *Runner) unpack(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return errors.Canceled(err)
	}
	if !r.cfg.Compressed {
		if err := sample.CopyFile(src, dst); err != nil {
			return errors.Internal(err).WithDetail("file", src)
		}
		return nil
	}
	if err := decompress(src, dst); err != nil {
		return errors.Internal(err).WithDetail("file", src)
	}
	return nil
}

func decompress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, zr); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// renameTrimmed moves prinseq's good outputs to the trimmed names.
func (r *Runner) renameTrimmed(s string) error {
	n := r.names
	good := n.TrimGood(s)
	first, second := good+"_1.fastq", good+"_2.fastq"
	if r.cfg.Trim.SwapMates {
		first, second = second, first
	}
	for _, mv := range []struct {
		from string
		to   string
	}{
		{first, n.Trimmed(s, config.Mate1)},
		{second, n.Trimmed(s, config.Mate2)},
	} {
		from := r.Path(TrimmedDir, mv.from)
		if err := os.Rename(from, r.Path(TrimmedDir, mv.to)); err != nil {
			if os.IsNotExist(err) {
				return errors.OutputMissing(Trim.Name, filepath.Join(TrimmedDir, mv.from))
			}
			return errors.Internal(err)
		}
	}
	return nil
}
