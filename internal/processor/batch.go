package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Result describes one converted input file.
type Result struct {
	Input  string
	Output string
	Docs   int
	Err    error
}

type job struct {
	Input  string
	Output string
}

// OutputPath returns the file written for input inside outDir.
func (p *Processor) OutputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outDir, base+p.opts.To.Extension())
}

// ProcessFiles converts every input into outDir using up to concurrency
// workers. The input format is detected per file when the processor has no
// explicit one. Existing outputs are kept unless force is set. Results are
// returned in input order. Inputs that map to an output already claimed by
// an earlier input fail with ErrOutputCollision and are never converted.
func (p *Processor) ProcessFiles(inputs []string, outDir string, concurrency int, force bool) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(inputs))
	outputs := make([]string, len(inputs))
	claimed := make(map[string]string, len(inputs))
	var pending []int
	for i, input := range inputs {
		outputs[i] = p.OutputPath(input, outDir)
		if first, ok := claimed[outputs[i]]; ok {
			err := fmt.Errorf("%w: %s (%s)", ErrOutputCollision, outputs[i], first)
			log.Error().
				Err(err).
				Str("input", input).
				Msg("Failed to convert file")
			results[i] = Result{Input: input, Output: outputs[i], Err: err}
			continue
		}
		claimed[outputs[i]] = input
		pending = append(pending, i)
	}

	jobs := make(chan int, len(pending))
	go func() {
		for _, i := range pending {
			jobs <- i
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				j := job{Input: inputs[i], Output: outputs[i]}
				docs, err := p.processFile(j, force)
				if err != nil {
					log.Error().
						Err(err).
						Str("input", j.Input).
						Msg("Failed to convert file")
				}
				results[i] = Result{Input: j.Input, Output: j.Output, Docs: docs, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}

func (p *Processor) processFile(j job, force bool) (int, error) {
	// Check existence if not forcing overwrite
	if !force {
		if info, err := os.Stat(j.Output); err == nil && info.Size() > 0 {
			log.Debug().Str("output", j.Output).Msg("Output exists, skipping")
			return 0, nil
		}
	}

	data, err := os.ReadFile(j.Input)
	if err != nil {
		return 0, err
	}

	from := p.opts.From
	if from == "" {
		from = DetectFormat(j.Input)
	}

	docs, err := p.Decode(data, from)
	if err != nil {
		return 0, err
	}
	out, err := p.Encode(docs)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(j.Output), 0755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(j.Output, out, 0644); err != nil {
		return 0, err
	}

	log.Debug().
		Str("input", j.Input).
		Str("output", j.Output).
		Int("docs", len(docs)).
		Msg("File converted")

	return len(docs), nil
}
