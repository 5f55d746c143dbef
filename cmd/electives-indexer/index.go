package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pickmyelective/electives/internal/domain/course"
	indexinguc "github.com/pickmyelective/electives/internal/usecase/indexing"
)

func indexCMD(o *globalOptions) *cobra.Command {
	var input string
	var recreate bool
	var swap bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed a transformed course file and load it into the index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			corpus, err := course.LoadCorpusFile(input)
			if err != nil {
				return err
			}
			color.Cyan("Loaded %d courses for semester %s", len(corpus.Courses), corpus.Semester)

			rt, err := open(ctx, o)
			if err != nil {
				return err
			}
			defer rt.close()

			opts := indexinguc.Options{Recreate: recreate}
			if swap {
				opts.RunID = rt.svc.NewRunID()
				opts.Target = indexinguc.RunCollection(rt.cfg.Index.Collection, opts.RunID)
			}

			bar := newProgressBar(len(corpus.Courses), "Indexing courses")
			out, err := rt.svc.Index(ctx, corpus, opts, func(done, total int) {
				bar.ChangeMax(total)
				_ = bar.Set(done)
			})
			_ = bar.Finish()
			if err != nil {
				return err
			}
			color.Green("✓ Indexed %d documents into %s (%d skipped, %d tokens)",
				out.Stats.DocumentsIndexed, out.Collection, out.Stats.DocumentsSkipped, out.Stats.TotalTokensUsed)

			path, err := writeManifest(rt.cfg.Indexer.ManifestDir, outputFileName(out.Semester), out)
			if err != nil {
				return err
			}
			color.Blue("Manifest written to %s", path)

			v, err := rt.svc.Verify(ctx, out.Collection)
			if err != nil {
				return err
			}
			printVerification(v)
			if _, err := writeManifest(rt.cfg.Indexer.ManifestDir, verificationFileName(out.Semester), v); err != nil {
				return err
			}
			if !v.IsValid {
				return fmt.Errorf("collection %s failed verification", out.Collection)
			}

			if swap {
				if err := rt.svc.Swap(ctx, out.Collection); err != nil {
					return err
				}
				color.Green("✓ %s now serves %s", rt.cfg.Index.Collection, out.Collection)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "transformed courses JSON file")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop the target collection first")
	cmd.Flags().BoolVar(&swap, "swap", false, "build a fresh run collection and point the served name at it")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("courses"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
