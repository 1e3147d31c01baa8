package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
	healthuc "github.com/kailas-cloud/indexwatch/internal/usecase/health"
	"github.com/kailas-cloud/indexwatch/internal/usecase/retention"
)

var errHistoryDisabled = errors.New("history store is not configured (history.addrs)")

// selection holds the projection and option flags of commands that read documents.
type selection struct {
	fields  []string
	options []string
}

func (s *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&s.fields, "fields", nil, "comma separated fields to return")
	cmd.Flags().StringArrayVar(&s.options, "opt", nil, "extra parameter, name=value or a bare flag (repeatable)")
}

func (s *selection) optionSet() option.Set {
	opts := option.New()
	for _, expr := range s.options {
		opts = opts.With(option.Parse(expr))
	}
	return opts
}

func queryCmd(opts *globalOptions) *cobra.Command {
	sel := &selection{}
	cmd := &cobra.Command{
		Use:   "query [filter...]",
		Short: "Print the select URL for the filter expressions",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := filter.ParseSpec(args)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(_ context.Context, a *app) error {
				return printLine(a.out, a.index.URL(query.Query{
					Filter:  spec,
					Fields:  sel.fields,
					Options: sel.optionSet(),
				}))
			})
		},
	}
	sel.register(cmd)
	return cmd
}

func countCmd(opts *globalOptions) *cobra.Command {
	var expect int
	cmd := &cobra.Command{
		Use:   "count [filter...]",
		Short: "Print the number of documents matching the filter expressions",
		Long: `Print the number of documents matching the filter expressions.

With --expect the command exits non-zero unless exactly that many documents match.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := filter.ParseSpec(args)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				if expect < 0 {
					n, err := a.docs.Count(ctx, spec)
					if err != nil {
						return err
					}
					return printLine(a.out, strconv.Itoa(n))
				}
				ok, n, err := a.docs.IsContentIndexed(ctx, spec, expect)
				if err != nil {
					return err
				}
				if err := printLine(a.out, strconv.Itoa(n)); err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%d documents indexed, expected %d", n, expect)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&expect, "expect", -1, "fail unless exactly this many documents match")
	return cmd
}

func docsCmd(opts *globalOptions) *cobra.Command {
	sel := &selection{}
	var all bool
	cmd := &cobra.Command{
		Use:   "docs [filter...]",
		Short: "Print matching documents as JSON",
		Long: `Print matching documents as JSON.

--opt start=N and --opt rows=N select a window; without rows every page is fetched.
--all fetches everything in one request sized by a preceding count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := filter.ParseSpec(args)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				if all {
					docs, err := a.docs.All(ctx, spec, sel.fields)
					if err != nil {
						return err
					}
					return a.printJSON(docs)
				}
				page, err := a.docs.Paged(ctx, spec, sel.fields, sel.optionSet())
				if err != nil {
					return err
				}
				return a.printJSON(page)
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "fetch every document in a single request")
	return cmd
}

func fieldsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the field names known to the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				names, err := a.docs.FieldNames(ctx)
				if err != nil {
					return err
				}
				for _, n := range names {
					if err := printLine(a.out, n); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func updateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field> <value>",
		Short: "Set one field of a document and commit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				return a.docs.UpdateField(ctx, args[0], args[1], args[2])
			})
		},
	}
}

func waitCmd(opts *globalOptions) *cobra.Command {
	var where []string
	cmd := &cobra.Command{
		Use:   "wait [jobID]",
		Short: "Wait until the indexed count of a job stops changing",
		Long: `Wait until two consecutive samples of the indexed count agree.

With a job id the count of JobId:<jobID> is polled; otherwise --where selects
the documents. The outcome is printed as JSON. A count that stays at zero exits
non-zero.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(where) == 0 {
				return errors.New("a job id or --where is required")
			}
			spec, err := filter.ParseSpec(where)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				var out convergence.Outcome
				if len(args) == 1 {
					out, err = a.poller.WaitForJob(ctx, args[0])
				} else {
					out, err = a.poller.Wait(ctx, spec)
				}
				if perr := a.printJSON(out); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "filter expression (repeatable)")
	return cmd
}

func playedCmd(opts *globalOptions) *cobra.Command {
	var expected, deleted int
	cmd := &cobra.Command{
		Use:   "played <jobID>",
		Short: "Wait until every item of a job is indexed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expected < 0 || deleted < 0 {
				return errors.New("--expected and --deleted must not be negative")
			}
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := a.playback.CheckAllPlayed(ctx, args[0], expected, deleted)
				if perr := a.printJSON(rep); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().IntVar(&expected, "expected", 0, "number of items the job backed up")
	cmd.Flags().IntVar(&deleted, "deleted", 0, "number of items the job deleted")
	_ = cmd.MarkFlagRequired("expected")
	return cmd
}

func ageCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "age <days> [filter...]",
		Short: "Move DateDeleted of matching documents days into the past",
		Long: `Move DateDeleted of matching documents days into the past.

Without filter expressions every document carrying DateDeleted is aged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("days must be an integer: %w", err)
			}
			spec, err := filter.ParseSpec(args[1:])
			if err != nil {
				return err
			}
			if len(spec) == 0 {
				spec = retention.DeletedItems()
			}
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				n, err := a.retention.Age(ctx, spec, days)
				if err != nil {
					return err
				}
				return printLine(a.out, strconv.Itoa(n))
			})
		},
	}
}

func retentionCmd(opts *globalOptions) *cobra.Command {
	var itemsPath string
	cmd := &cobra.Command{
		Use:   "retention [filter...]",
		Short: "Age deleted items, run the retention rules and check visibility",
		Long: `Age deleted items past their retention, run retention.command and check
that every item was hidden or kept according to its period.

--items names a YAML map of item name to retention days; -1 keeps an item forever:

  report.docx: 30
  contract.pdf: -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(itemsPath)
			if err != nil {
				return err
			}
			spec, err := filter.ParseSpec(args)
			if err != nil {
				return err
			}
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				rep, err := a.retention.Validate(ctx, spec, items)
				if perr := a.printJSON(rep); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&itemsPath, "items", "", "YAML file mapping item name to retention days")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func readItems(path string) (map[string]int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var items map[string]int
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse items %s: %w", path, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("items %s: no entries", path)
	}
	return items, nil
}

type historySummary struct {
	Keys   []string                    `json:"keys"`
	Counts map[convergence.Phase]int64 `json:"counts"`
}

func historyCmd(opts *globalOptions) *cobra.Command {
	var forget bool
	cmd := &cobra.Command{
		Use:   "history [key]",
		Short: "Show recorded poll outcomes",
		Long: `Show the last recorded outcome for a key (a job id or a compiled query).
Without a key the recorded keys and the per-state totals are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				if a.history == nil {
					return errHistoryDisabled
				}
				if len(args) == 1 {
					if forget {
						return a.history.Forget(ctx, args[0])
					}
					out, err := a.history.Last(ctx, args[0])
					if err != nil {
						return err
					}
					return a.printJSON(out)
				}
				keys, err := a.history.Keys(ctx)
				if err != nil {
					return err
				}
				counts, err := a.history.Counts(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(historySummary{Keys: keys, Counts: counts})
			})
		},
	}
	cmd.Flags().BoolVar(&forget, "forget", false, "delete the recorded outcome for key")
	return cmd
}

func healthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the index and the history store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				report := a.health.Check(ctx)
				if err := a.printJSON(report); err != nil {
					return err
				}
				if report.Status == healthuc.Unhealthy {
					a.logger.Error("index unreachable", zap.Any("checks", report.Checks))
					return fmt.Errorf("health: %s", report.Status)
				}
				return nil
			})
		},
	}
}
