package difftest

import (
	"math"
	"math/rand/v2"
)

// OpGenConfig tunes OpGenerator.
type OpGenConfig struct {
	// KeyRange bounds keys to [0, KeyRange).
	KeyRange int

	// ValueModulus wraps the value counter. Values cycle through
	// [0, ValueModulus).
	ValueModulus int

	// OutOfBoundsPercent widens GetIndex indexes past the current size:
	// indexes are drawn from [0, size*(1+OutOfBoundsPercent/100)).
	OutOfBoundsPercent int

	// StartKeyPercent is the percentage of GetIndex operations that use the
	// drawn key as a start key.
	StartKeyPercent int
}

// generatedCommands are drawn uniformly. Size is never generated; the
// runner issues it as an integrity check.
var generatedCommands = [...]Command{CmdGet, CmdGetIndex, CmdRemove, CmdSet}

// OpGenerator draws random operations.
//
// Every field of every operation is drawn, whatever the command, so the
// random stream advances identically regardless of which commands come up.
// Values are not random: they come from a counter owned by the generator
// that advances on every call, which keeps them bounded and lets a
// reproduction be read back against call order.
type OpGenerator struct {
	rng     *rand.Rand
	config  OpGenConfig
	counter int
}

// NewOpGenerator returns a generator seeded with seed.
func NewOpGenerator(cfg OpGenConfig, seed uint64) *OpGenerator {
	if cfg.ValueModulus <= 0 {
		cfg.ValueModulus = math.MaxInt
	}

	return &OpGenerator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		config: cfg,
	}
}

// SetKeyRange changes the key range for subsequent operations. The value
// counter carries over.
func (g *OpGenerator) SetKeyRange(keyRange int) {
	g.config.KeyRange = keyRange
}

// Counter returns the next value the generator will hand out.
func (g *OpGenerator) Counter() int {
	return g.counter
}

// Next returns the next operation for a map that currently holds size keys.
func (g *OpGenerator) Next(size int) Operation {
	cmd := generatedCommands[g.rng.IntN(len(generatedCommands))]
	key := g.nextKey()
	value := g.nextValue()
	index := g.nextIndex(size)
	reversed := g.rng.IntN(2) == 1
	start := g.rng.IntN(100) < g.config.StartKeyPercent

	op := Operation{Cmd: cmd}

	switch cmd {
	case CmdGet, CmdRemove:
		op.Key = key
	case CmdSet:
		op.Key, op.Value = key, value
	case CmdGetIndex:
		op.Index, op.Reversed = index, reversed
		if start {
			op.Key, op.Start = key, true
		}
	}

	return op
}

// nextKey draws |u1-u2| * KeyRange, a triangular distribution that puts
// most of its mass near zero.
func (g *OpGenerator) nextKey() int {
	if g.config.KeyRange <= 0 {
		return 0
	}

	u := math.Abs(g.rng.Float64() - g.rng.Float64())

	return int(math.Floor(u * float64(g.config.KeyRange)))
}

func (g *OpGenerator) nextValue() int {
	value := g.counter
	g.counter = (g.counter + 1) % g.config.ValueModulus

	return value
}

func (g *OpGenerator) nextIndex(size int) int {
	limit := float64(size) * (1 + float64(g.config.OutOfBoundsPercent)/100)

	return int(math.Floor(g.rng.Float64() * limit))
}
