package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/sirupsen/logrus"
)

// Concatenator joins audio files losslessly in order.
type Concatenator interface {
	Concat(ctx context.Context, inputs []string, out string) error
}

type Assembler struct {
	concat Concatenator
}

func New(concat Concatenator) *Assembler {
	return &Assembler{concat: concat}
}

// Assemble turns the ordered chunk artifacts of one chapter into out. A
// single chunk is moved into place. Chunk files are deleted only after a
// successful concat.
func (a *Assembler) Assemble(ctx context.Context, chunks []string, out string) error {
	if len(chunks) == 0 {
		return errs.Wrap(errs.ErrAssembly, "assemble", filepath.Base(out), fmt.Errorf("no chunks to assemble"))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return errs.Wrap(errs.ErrAssembly, "assemble", "create output dir", err)
	}

	if len(chunks) == 1 {
		if err := os.Rename(chunks[0], out); err != nil {
			return errs.Wrap(errs.ErrAssembly, "assemble", "move chunk", err)
		}
		return nil
	}

	if err := a.concat.Concat(ctx, chunks, out); err != nil {
		return errs.Wrap(errs.ErrAssembly, "assemble", "concat", err)
	}

	var result *multierror.Error
	for _, c := range chunks {
		if err := os.Remove(c); err != nil && !os.IsNotExist(err) {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		logrus.WithError(err).WithField("out", out).Warn("failed to remove chunk files")
	}
	return nil
}
