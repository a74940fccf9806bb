// Package bench measures parallel decode throughput.
package bench

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/attack"
	"github.com/verte-zerg/vigenere/internal/cipher"
	"github.com/verte-zerg/vigenere/internal/generator"
	"github.com/verte-zerg/vigenere/internal/model"
)

const (
	// DefaultIterations is the total decode count of a run.
	DefaultIterations = 400000
	// DefaultText is decoded on every iteration when Options.Text is empty.
	DefaultText = "ESTO ES UN TEXTO DE PRUEBA PARA MEDIR LA VELOCIDAD DE TU PROCESADOR PARA DESCIFRAR " +
		"TEXTOS CIFRADOS CON EL CIFRADO SIMETRICO VIGENERE, EL CUAL YA ESTA OBSOLETO"
	// DefaultKey is the decode key when Options.Key is empty.
	DefaultKey = "TEST"

	checkEvery = 1024
)

// Options configures a benchmark run. Zero values select the defaults.
// Letters and KeyLen request a random Spanish-weighted payload and a random
// key instead of the fixed ones; explicit Text and Key win.
type Options struct {
	Iterations int
	Workers    int
	Text       string
	Key        string
	Letters    int
	KeyLen     int
	Seed       int64
}

// Result reports the measured throughput.
type Result struct {
	Iterations int
	Workers    int
	Letters    int
	Elapsed    time.Duration
	OpsPerSec  float64
}

// Run decodes the payload Iterations times across Workers goroutines.
func Run(ctx context.Context, opts Options) (Result, error) {
	opts = withDefaults(opts)
	if opts.Iterations < 1 {
		return Result{}, fmt.Errorf("iterations %d: %w", opts.Iterations, model.ErrInvalidInput)
	}
	ct, err := alphabet.ToIndices(alphabet.Normalize(opts.Text))
	if err != nil {
		return Result{}, err
	}
	if len(ct) == 0 {
		return Result{}, fmt.Errorf("benchmark text has no letters: %w", model.ErrInvalidInput)
	}
	key, err := cipher.KeyIndices(opts.Key)
	if err != nil {
		return Result{}, err
	}

	shares := split(opts.Iterations, opts.Workers)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range shares {
		n := n
		g.Go(func() error {
			dst := make([]int, len(ct))
			for i := 0; i < n; i++ {
				if i%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				cipher.DecodeInto(dst, ct, key)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	elapsed := time.Since(start)

	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 0.0001
	}
	return Result{
		Iterations: opts.Iterations,
		Workers:    len(shares),
		Letters:    len(ct),
		Elapsed:    elapsed,
		OpsPerSec:  float64(opts.Iterations) / seconds,
	}, nil
}

func withDefaults(opts Options) Options {
	if opts.Iterations == 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Workers < 1 {
		opts.Workers = attack.DefaultWorkers()
	}
	gen := generator.New()
	if opts.Seed != 0 {
		gen = generator.NewWithSeed(opts.Seed)
	}
	if opts.Text == "" {
		opts.Text = DefaultText
		if opts.Letters > 0 {
			opts.Text = gen.Sample(alphabet.Spanish, opts.Letters)
		}
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
		if opts.KeyLen > 0 {
			opts.Key = gen.Key(opts.KeyLen)
		}
	}
	return opts
}

// split divides total into at most workers non-empty shares.
func split(total, workers int) []int {
	if workers > total {
		workers = total
	}
	shares := make([]int, workers)
	for i := range shares {
		shares[i] = total / workers
		if i < total%workers {
			shares[i]++
		}
	}
	return shares
}
