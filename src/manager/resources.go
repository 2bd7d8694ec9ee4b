package manager

import (
	"fmt"
	"os"

	"github.com/robert-clayton/audiobook/src/assembler"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/ffmpeg"
	"github.com/robert-clayton/audiobook/src/global"
	"github.com/robert-clayton/audiobook/src/redis"
	"github.com/robert-clayton/audiobook/src/tts/redisworker"
	"github.com/robert-clayton/audiobook/src/tts/xtts"
	"github.com/robert-clayton/audiobook/src/voices"
	"github.com/robert-clayton/audiobook/src/wavutil"
)

const (
	BackendXTTS  = "xtts"
	BackendRedis = "redis"

	AssemblerFFmpeg = "ffmpeg"
	AssemblerNative = "native"
)

// Setup builds the audio tool and the synthesizer on first use. Instances
// already set on the context are kept, so a run never builds them twice.
func Setup(ctx global.Context) error {
	s := ctx.Config().Settings
	inst := ctx.Inst()

	if !supportedCodec(s.Codec) {
		return errs.Wrap(errs.ErrResourceInit, "setup", fmt.Sprintf("unsupported codec %q", s.Codec), nil)
	}

	if inst.Audio == nil {
		tool := ffmpeg.New(s.FFmpegPath, s.TmpDir)
		if err := tool.Check(); err != nil {
			return err
		}
		inst.Audio = tool
	}

	if inst.Synthesizer == nil {
		switch s.Synthesizer.Backend {
		case BackendXTTS, "":
			inst.Synthesizer = xtts.New(s.Synthesizer.URL, s.Synthesizer.Timeout)
		case BackendRedis:
			if inst.Redis == nil {
				r, err := redis.NewInstance(ctx, s.Synthesizer.RedisURI)
				if err != nil {
					return err
				}
				inst.Redis = r
			}
			inst.Synthesizer = redisworker.New(ctx, inst.Redis, s.Synthesizer.TaskSetKey, s.Synthesizer.OutputEvent, s.Synthesizer.Timeout)
		default:
			return errs.Wrap(errs.ErrResourceInit, "setup", fmt.Sprintf("unknown synthesizer backend %q", s.Synthesizer.Backend), nil)
		}
	}

	return nil
}

func supportedCodec(codec string) bool {
	for _, c := range ffmpeg.Codecs() {
		if c == codec {
			return true
		}
	}
	return false
}

func newAssembler(ctx global.Context) (*assembler.Assembler, error) {
	switch ctx.Config().Settings.Assembler {
	case AssemblerFFmpeg, "":
		return assembler.New(ctx.Inst().Audio), nil
	case AssemblerNative:
		return assembler.New(wavutil.Concatenator{}), nil
	}
	return nil, errs.Wrap(errs.ErrResourceInit, "setup", fmt.Sprintf("unknown assembler %q", ctx.Config().Settings.Assembler), nil)
}

func newPrompter(ctx global.Context, override voices.Prompter) (voices.Prompter, error) {
	if override != nil {
		return override, nil
	}
	p, err := voices.NewPrompter(ctx.Config().Settings.UnmappedSpeaker, os.Stdin, os.Stdout)
	if err != nil {
		return nil, errs.Wrap(errs.ErrResourceInit, "setup", "prompter", err)
	}
	return p, nil
}
