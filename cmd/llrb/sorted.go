package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	randv2 "math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/llrb/lib/tree"
	"github.com/benz9527/llrb/observability"
)

type mapItem struct {
	key   uint32
	value uint32
}

type sortedOpts struct {
	count  int
	keyMax uint32
	seed   uint64
	top    int
}

func sortedCmd(a *app) *cobra.Command {
	opts := &sortedOpts{}
	cmd := &cobra.Command{
		Use:   "sorted",
		Short: "Fill an integer set and map with random keys and walk them in order",
		Long: `Fill an integer set and an integer map with random keys, report how many
insertions replaced an equal key, the extremes of both, the first pairs
of the map and the sum of its keys by neighbour traversal.

Examples:
  llrb sorted
  llrb sorted --count 1000 --range 10 --top 3 --verify
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				return runSorted(ctx, a, opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 20000, "number of random insertions")
	cmd.Flags().Uint32Var(&opts.keyMax, "range", 20000, "keys are drawn from [0, range)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&opts.top, "top", 10, "number of map pairs to print")
	return cmd
}

func runSorted(ctx context.Context, a *app, opts *sortedOpts, out io.Writer) error {
	if opts.count < 0 || opts.keyMax == 0 {
		return errors.New("count must not be negative and range must be positive")
	}

	setCmp := tree.OrderedComparator[uint32, uint32](func(k uint32) uint32 { return k })
	mapCmp := tree.OrderedComparator[uint32, mapItem](func(item mapItem) uint32 { return item.key })
	set := tree.NewLLRBTree[uint32](setCmp)
	dict := tree.NewLLRBTree[mapItem](mapCmp)
	stats := observability.NewTreeStats(a.mp, "sorted", map[string]observability.TreeSizer{
		"set": set,
		"map": dict,
	})
	arena := tree.NewNodeArena[uint32](4096)
	rnd := randv2.New(randv2.NewPCG(opts.seed, opts.seed))

	fmt.Fprintln(out, "Filling set and map:")
	replaced := int64(0)
	for i := 0; i < opts.count; i++ {
		k, v := rnd.Uint32N(opts.keyMax), rnd.Uint32()
		s := arena.Allocate()
		s.Value = k
		if old := set.InsertOrReplace(s); old != nil {
			replaced++
			arena.Recycle(old)
		}
		dict.InsertOrReplace(tree.NewLLRBNode(mapItem{key: k, value: v}))
	}
	stats.Replaced(ctx, "set", replaced)
	stats.Replaced(ctx, "map", replaced)
	fmt.Fprintf(out, "Items replaced: %d\n", replaced)

	if a.verify {
		if err := multierr.Append(
			tree.Validate(set, setCmp),
			tree.Validate(dict, mapCmp),
		); err != nil {
			return fmt.Errorf("sorted trees: %w", err)
		}
	}

	if set.Len() == 0 {
		fmt.Fprintln(out, "Set and map are empty")
		return nil
	}
	fmt.Fprintf(out, "Min key in map: %d, set: %d\n", dict.Min().Value.key, set.Min().Value)
	fmt.Fprintf(out, "Max key in map: %d, set: %d\n", dict.Max().Value.key, set.Max().Value)

	fmt.Fprintf(out, "Traversing map, printing first %d pairs\n", opts.top)
	sum := uint64(0)
	i := 0
	for node := dict.Min(); node != nil; node = dict.Next(node) {
		sum += uint64(node.Value.key)
		if i < opts.top {
			fmt.Fprintf(out, "Map [%d]: %d\n", node.Value.key, node.Value.value)
		}
		i++
	}
	fmt.Fprintf(out, "Sum of all keys: %d\n", sum)

	a.logger.InfoContext(ctx, "sorted done",
		zap.Int("insertions", opts.count),
		zap.Int64("replaced", replaced),
		zap.Int64("set", set.Len()),
		zap.Int64("map", dict.Len()),
		zap.Int("arenaChunks", arena.Chunks()),
	)
	return nil
}
