package wavutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/fileutil"
)

// Format describes the PCM layout shared by every chunk of a chapter.
type Format struct {
	SampleRate  int
	BitDepth    int
	NumChannels int
	AudioFormat int
}

// Validate reports whether path holds a decodable WAV with at least one
// sample. A cached chunk that fails this is synthesized again.
func Validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return ValidateBytes(data)
}

func ValidateBytes(data []byte) error {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return fmt.Errorf("not a valid wav file")
	}
	if err := decoder.FwdToPCM(); err != nil {
		return err
	}
	if decoder.PCMLen() <= 0 {
		return fmt.Errorf("wav has no samples")
	}
	return nil
}

// Decode returns the full PCM buffer of a WAV file along with its format.
func Decode(path string) (*audio.IntBuffer, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Format{}, err
	}
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, Format{}, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, Format{}, fmt.Errorf("%s: %w", path, err)
	}
	return buf, Format{
		SampleRate:  int(decoder.SampleRate),
		BitDepth:    int(decoder.BitDepth),
		NumChannels: int(decoder.NumChans),
		AudioFormat: int(decoder.WavAudioFormat),
	}, nil
}

// Encode writes the buffers, in order, into an in-memory WAV.
func Encode(f Format, bufs ...*audio.IntBuffer) ([]byte, error) {
	buf := &writerseeker.WriterSeeker{}

	encoder := wav.NewEncoder(buf, f.SampleRate, f.BitDepth, f.NumChannels, f.AudioFormat)
	for _, b := range bufs {
		if err := encoder.Write(b); err != nil {
			return nil, err
		}
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	if err := buf.Close(); err != nil {
		return nil, err
	}

	return io.ReadAll(buf.Reader())
}

// Concatenator joins chunk WAVs in process without an external tool. All
// inputs must share one PCM format, which holds for chunks produced by a
// single synthesizer.
type Concatenator struct{}

func (Concatenator) Concat(ctx context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return errs.Wrap(errs.ErrAssembly, "assemble", "concat", fmt.Errorf("no inputs"))
	}

	var (
		format Format
		bufs   = make([]*audio.IntBuffer, 0, len(inputs))
	)
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, f, err := Decode(in)
		if err != nil {
			return errs.Wrap(errs.ErrAssembly, "assemble", "decode chunk", err)
		}
		if i == 0 {
			format = f
		} else if f != format {
			return errs.Wrap(errs.ErrAssembly, "assemble", "concat", fmt.Errorf("%s: format %+v differs from %+v", in, f, format))
		}
		bufs = append(bufs, b)
	}

	data, err := Encode(format, bufs...)
	if err != nil {
		return errs.Wrap(errs.ErrAssembly, "assemble", "encode", err)
	}
	if err := fileutil.WriteAtomic(out, data); err != nil {
		return errs.Wrap(errs.ErrAssembly, "assemble", "write", err)
	}
	return nil
}
