package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/catalog"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/extract"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/pkg/logger"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/planner"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/render"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/service"
)

const cliOwner = "cli"

type generateOptions struct {
	catalogPath string
	outDir      string
	file        string
	preparedBy  string
	approvedBy  string
	logLevel    string
	entry       model.ManualEntry
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one quality plan PDF",
		Long: `Generates a quality plan from a work-order file (--file) or from the
manual-entry flags, and prints the path of the rendered PDF.`,
		Example: `  qpgen generate --file wo.txt --out output
  qpgen generate --customer ACME --order PO-1 --wo WO-1 --product ADAPTER --grade 4130 --standard "API 6A" --psl 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runGenerate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalogPath, "catalog", "normes_db.json", "reference catalog (JSON or YAML)")
	f.StringVarP(&opts.outDir, "out", "o", "output", "directory for the rendered PDF")
	f.StringVarP(&opts.file, "file", "f", "", "work-order file to import")
	f.StringVar(&opts.preparedBy, "prepared-by", "", "name printed under Rédigé par")
	f.StringVar(&opts.approvedBy, "approved-by", "", "name printed under Approuvé par")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	f.StringVar(&opts.entry.Customer, "customer", "", "customer")
	f.StringVar(&opts.entry.OrderNo, "order", "", "order number")
	f.StringVar(&opts.entry.WONo, "wo", "", "work-order number")
	f.StringVar(&opts.entry.Product, "product", "", "product description")
	f.StringVar(&opts.entry.Grade, "grade", "", "material grade")
	f.StringVar(&opts.entry.Standard, "standard", extract.DefaultStandard, "standard: API 6A, API 5CT or API 7-1")
	f.StringVar(&opts.entry.PSL, "psl", extract.DefaultPSL, "product specification level 1-4")
	return cmd
}

func (o *generateOptions) validate() error {
	if o.file != "" {
		return nil
	}
	if !slices.Contains(extract.KnownStandards, o.entry.Standard) {
		return fmt.Errorf("unknown standard %q", o.entry.Standard)
	}
	if n, err := strconv.Atoi(o.entry.PSL); err != nil || n < 1 || n > 4 {
		return fmt.Errorf("psl must be 1 to 4, got %q", o.entry.PSL)
	}
	return nil
}

func runGenerate(ctx context.Context, opts *generateOptions) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	logger.InitWriter(&logger.Config{Level: opts.logLevel, Format: "text"}, os.Stderr)

	cat, err := catalog.Load(opts.catalogPath)
	if err != nil {
		return "", err
	}

	plans := service.NewQualityPlanService(
		planner.New(cat),
		service.NewPlanStore(1),
		render.NewPDFRenderer(opts.outDir),
		nil,
		opts.approvedBy,
	)

	var plan *model.QualityPlan
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("read work order: %w", err)
		}
		plan, err = plans.Import(ctx, cliOwner, service.Upload{
			Filename:    filepath.Base(opts.file),
			ContentType: mime.TypeByExtension(filepath.Ext(opts.file)),
			Data:        data,
		})
		if err != nil {
			return "", err
		}
	} else {
		plan, err = plans.Manual(ctx, cliOwner, opts.entry)
		if err != nil {
			return "", err
		}
	}

	result, err := plans.Render(ctx, cliOwner, plan.ID, opts.preparedBy)
	if err != nil {
		return "", err
	}
	return result.Artifact.Path, nil
}
