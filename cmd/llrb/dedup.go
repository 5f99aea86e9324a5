package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/benz9527/llrb/lib/tree"
	"github.com/benz9527/llrb/lib/xlog"
	"github.com/benz9527/llrb/observability"
)

// record lives in two trees at once, one node per tree.
type record struct {
	content   string
	byContent tree.LLRBNode[*record]
	byAddr    tree.LLRBNode[*record]
}

// contentComparator orders by the collator attached to the tree, or
// byte-wise without one.
func contentComparator(a, b *tree.LLRBNode[*record], t tree.LLRBTree[*record]) int {
	if col, ok := t.Attachment().(*collate.Collator); ok && col != nil {
		return col.CompareString(a.Value.content, b.Value.content)
	}
	return strings.Compare(a.Value.content, b.Value.content)
}

type dedupOpts struct {
	locale     string
	ignoreCase bool
	finds      []string
	workers    int
}

func (opts *dedupOpts) collator() (*collate.Collator, error) {
	if opts.locale == "" && !opts.ignoreCase {
		return nil, nil
	}
	tag := language.Und
	if opts.locale != "" {
		var err error
		if tag, err = language.Parse(opts.locale); err != nil {
			return nil, fmt.Errorf("locale %q: %w", opts.locale, err)
		}
	}
	var colOpts []collate.Option
	if opts.ignoreCase {
		colOpts = append(colOpts, collate.IgnoreCase)
	}
	return collate.New(tag, colOpts...), nil
}

func dedupCmd(a *app) *cobra.Command {
	opts := &dedupOpts{}
	cmd := &cobra.Command{
		Use:   "dedup [file...]",
		Short: "Detect duplicate lines, keeping the last occurrence",
		Long: `Read lines from the files (stdin without any) and keep the last occurrence
of every distinct line. Each line record is linked into a tree ordered by
content and a tree ordered by record address. Prints the number of
duplicates, the lines in content order and in memory order.

Examples:
  llrb dedup < words.txt
  llrb dedup --locale de --ignore-case --find straße a.txt b.txt
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				sources, err := readSources(a.logger, cmd.InOrStdin(), args, opts.workers)
				if err != nil {
					return err
				}
				return runDedup(ctx, a, opts, sources, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.locale, "locale", "", "collate lines by the BCP 47 locale instead of bytes")
	cmd.Flags().BoolVar(&opts.ignoreCase, "ignore-case", false, "collate case-insensitively, case variants are duplicates")
	cmd.Flags().StringSliceVar(&opts.finds, "find", nil, "look the lines up after reading")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "files read concurrently")
	return cmd
}

// readLines splits on '\n' only and keeps everything else, '\r' included.
func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	lines := make([]string, 0, 256)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// readSources reads the files concurrently, the lines keep the
// argument order.
func readSources(logger xlog.XLogger, stdin io.Reader, files []string, workers int) ([][]string, error) {
	if len(files) == 0 {
		lines, err := readLines(stdin)
		if err != nil {
			return nil, err
		}
		return [][]string{lines}, nil
	}
	if workers <= 0 {
		workers = 1
	}

	pool, err := ants.NewPool(workers, ants.WithLogger(xlog.NewAntsXLogger(logger)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		lock    sync.Mutex
		merr    error
		sources = make([][]string, len(files))
	)
	for i, filename := range files {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			lines, err := readFile(filename)
			if err != nil {
				lock.Lock()
				merr = multierr.Append(merr, err)
				lock.Unlock()
				return
			}
			sources[i] = lines
		}); err != nil {
			wg.Done()
			lock.Lock()
			merr = multierr.Append(merr, err)
			lock.Unlock()
		}
	}
	wg.Wait()
	if merr != nil {
		return nil, merr
	}
	return sources, nil
}

func readFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return readLines(f)
}

func runDedup(ctx context.Context, a *app, opts *dedupOpts, sources [][]string, out io.Writer) error {
	col, err := opts.collator()
	if err != nil {
		return err
	}

	treeOpts := make([]tree.LLRBTreeOpt[*record], 0, 1)
	if col != nil {
		treeOpts = append(treeOpts, tree.WithLLRBAttachment[*record](col))
	}
	addrCmp := tree.PointerComparator[*record]()
	contents := tree.NewLLRBTree[*record](contentComparator, treeOpts...)
	addrs := tree.NewLLRBTree[*record](addrCmp)
	stats := observability.NewTreeStats(a.mp, "dedup", map[string]observability.TreeSizer{
		"content": contents,
		"address": addrs,
	})
	arena := tree.NewArena[record](1024)

	dups, lines := int64(0), 0
	for _, source := range sources {
		for _, line := range source {
			lines++
			rec := arena.Allocate()
			rec.content = line
			rec.byContent.Value, rec.byAddr.Value = rec, rec

			// The address tree first, a fresh record is never equal to a
			// resident one there.
			if addrs.InsertOrReplace(&rec.byAddr) != nil {
				return errors.New("replaced node in the address ordered tree")
			}
			if prev := contents.InsertOrReplace(&rec.byContent); prev != nil {
				old := prev.Value
				// Not in the content tree any more, unlink it from the
				// address tree as well.
				addrs.Delete(&old.byAddr)
				dups++
				arena.Recycle(old)
			}
		}
	}
	stats.Replaced(ctx, "content", dups)
	stats.Removed(ctx, "address", dups)

	if a.verify {
		if err := multierr.Append(
			tree.Validate(contents, contentComparator),
			tree.Validate(addrs, addrCmp),
		); err != nil {
			return fmt.Errorf("dedup trees: %w", err)
		}
	}

	fmt.Fprintf(out, "Duplicate strings: %d\n", dups)
	fmt.Fprintln(out, "\nTraversal by content order:")
	for node := contents.Min(); node != nil; node = contents.Next(node) {
		fmt.Fprintln(out, node.Value.content)
	}
	fmt.Fprintln(out, "\nTraversal by memory order:")
	for node := addrs.Min(); node != nil; node = addrs.Next(node) {
		fmt.Fprintln(out, node.Value.content)
	}

	if len(opts.finds) > 0 {
		fmt.Fprintln(out)
	}
	key := &record{}
	key.byContent.Value = key
	for _, find := range opts.finds {
		key.content = find
		if node := contents.Find(&key.byContent); node != nil {
			fmt.Fprintf(out, "Seen in the tree: %s\n", node.Value.content)
		} else {
			fmt.Fprintf(out, "Not seen in the tree: %s\n", find)
		}
	}

	a.logger.InfoContext(ctx, "dedup done",
		zap.Int("sources", len(sources)),
		zap.Int("lines", lines),
		zap.Int64("duplicates", dups),
		zap.Int64("distinct", contents.Len()),
		zap.Int("arenaChunks", arena.Chunks()),
		zap.Bool("collated", col != nil),
	)
	return nil
}
