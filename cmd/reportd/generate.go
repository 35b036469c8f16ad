package main

import (
	"fmt"
	"os"

	"github.com/godilite/evalreport/internal/app"
	"github.com/godilite/evalreport/internal/render"
	"github.com/godilite/evalreport/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type generateOptions struct {
	instructors string
	modules     string
	out         string
	db          string
	year        int
	module      int
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the report archive from two survey exports",
		Long: `Reads the instructor and module evaluation exports (.csv or .xlsx),
builds every report and writes a zip holding both workbooks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.instructors, "instructors", "", "instructor evaluation export")
	f.StringVar(&opts.modules, "modules", "", "module evaluation export")
	f.StringVarP(&opts.out, "out", "o", "Final_Outputs.zip", "archive to write")
	f.StringVar(&opts.db, "db", ":memory:", "run history database")
	f.IntVar(&opts.year, "year", 0, "keep only responses submitted in this year")
	f.IntVar(&opts.module, "module", 0, "keep only responses for this module (1-5)")
	_ = cmd.MarkFlagRequired("instructors")
	_ = cmd.MarkFlagRequired("modules")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	cfg.DBPath = opts.db

	req := service.Request{}
	if req.Instructors, err = readSource(opts.instructors); err != nil {
		return err
	}
	if req.Modules, err = readSource(opts.modules); err != nil {
		return err
	}
	if cmd.Flags().Changed("year") {
		req.Year = &opts.year
	}
	if cmd.Flags().Changed("module") {
		req.Module = &opts.module
	}

	db, err := app.OpenRunStore(cfg)
	if err != nil {
		return fmt.Errorf("run store: %w", err)
	}
	defer db.Close()

	svc, err := app.NewReportService(cfg, db, logger)
	if err != nil {
		return err
	}

	res, err := svc.Generate(cmd.Context(), req)
	if res != nil {
		for _, w := range res.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning [%s]: %s\n", w.Dataset, w.Message)
		}
	}
	if err != nil {
		return err
	}

	if err := writeArchive(opts.out, res); err != nil {
		return err
	}
	logger.Info("archive written", zap.String("path", opts.out), zap.String("run_id", res.RunID))
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", opts.out)

	if res.InstructorErr != nil {
		return fmt.Errorf("instructor reports: %w", res.InstructorErr)
	}
	if res.ModuleErr != nil {
		return fmt.Errorf("module reports: %w", res.ModuleErr)
	}
	return nil
}

func readSource(path string) (service.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	return service.Source{Filename: path, Content: data}, nil
}

func writeArchive(path string, res *service.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.Archive(f, res); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
