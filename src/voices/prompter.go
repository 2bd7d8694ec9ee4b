package voices

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
)

const (
	PolicyPrompt   = "prompt"
	PolicyNarrator = "narrator"
	PolicyFail     = "fail"
)

// NewPrompter returns the prompter for an unmapped_speaker policy.
func NewPrompter(policy string, in io.Reader, out io.Writer) (Prompter, error) {
	switch policy {
	case PolicyPrompt, "":
		return &InteractivePrompter{In: bufio.NewReader(in), Out: out}, nil
	case PolicyNarrator:
		return FallbackPrompter{}, nil
	case PolicyFail:
		return FailPrompter{}, nil
	}
	return nil, fmt.Errorf("unknown unmapped speaker policy %q", policy)
}

// InteractivePrompter asks on the terminal which voice a speaker should use.
type InteractivePrompter struct {
	In  *bufio.Reader
	Out io.Writer
}

func (p *InteractivePrompter) Prompt(ctx context.Context, series *configure.SeriesConfig, speaker string, catalog *Catalog) (string, error) {
	ids := catalog.IDs()
	if len(ids) == 0 {
		return "", errs.Wrap(errs.ErrUnmappedSpeaker, "resolve", speaker, fmt.Errorf("no voices available"))
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(p.Out, "%s unknown speaker %s in %s\n", yellow("?"), green(speaker), series.Name)
	for i, id := range ids {
		fmt.Fprintf(p.Out, "  %2d) %s\n", i+1, id)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", errs.Wrap(errs.ErrInterrupted, "resolve", speaker, err)
		}
		fmt.Fprintf(p.Out, "voice for %s [%s]: ", green(speaker), series.NarratorVoice())

		line, err := p.In.ReadString('\n')
		answer := strings.TrimSpace(line)
		if err != nil && answer == "" {
			if err == io.EOF {
				return "", errs.Wrap(errs.ErrUnmappedSpeaker, "resolve", speaker, fmt.Errorf("no answer"))
			}
			return "", errs.Wrap(errs.ErrUnmappedSpeaker, "resolve", speaker, err)
		}

		switch {
		case answer == "":
			return series.NarratorVoice(), nil
		case catalog.Has(answer):
			return answer, nil
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(ids) {
			return ids[n-1], nil
		}
		fmt.Fprintf(p.Out, "%s %q is not a known voice\n", yellow("!"), answer)
	}
}

// FallbackPrompter maps every unknown speaker onto the series narrator.
type FallbackPrompter struct{}

func (FallbackPrompter) Prompt(_ context.Context, series *configure.SeriesConfig, _ string, _ *Catalog) (string, error) {
	return series.NarratorVoice(), nil
}

// FailPrompter refuses, failing the chunk.
type FailPrompter struct{}

func (FailPrompter) Prompt(_ context.Context, _ *configure.SeriesConfig, speaker string, _ *Catalog) (string, error) {
	return "", errs.Wrap(errs.ErrUnmappedSpeaker, "resolve", speaker, nil)
}
