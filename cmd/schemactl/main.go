// Command schemactl runs the operator tasks that must not happen on server
// startup: schema moves, the numbering backfill and artifact exports.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"site-report-backend/internal/adapter/repository/postgres"
	"site-report-backend/internal/config"
	"site-report-backend/internal/infrastructure/db"
	"site-report-backend/internal/infrastructure/pdf"
	"site-report-backend/internal/schema"
	"site-report-backend/internal/usecase/artifact"
	"site-report-backend/internal/usecase/photo"
	"site-report-backend/pkg/logger"
)

// annotationNoDB marks commands that run without a database connection.
const annotationNoDB = "no-db"

type env struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
}

func (e *env) evolver() (*schema.Evolver, error) {
	return schema.New(e.db, e.log, schema.Revisions(schema.Options{NotificationTTL: e.cfg.NotificationTTL(), Log: e.log})...)
}

func main() {
	e := &env{}
	root := &cobra.Command{
		Use:           "schemactl",
		Short:         "Schema and maintenance tasks for the site report database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e.cfg = config.Load()
			log, err := logger.New(e.cfg.LogMode)
			if err != nil {
				return err
			}
			e.log = log
			if e.cfg.DotenvErr != nil {
				log.Warn("config", "err", e.cfg.DotenvErr)
			}
			if cmd.Annotations[annotationNoDB] != "" {
				return nil
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			e.db, err = db.OpenGorm(e.cfg.DatabaseURL, e.cfg.LogMode, log)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.db != nil {
				if sqlDB, err := e.db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}
			if e.log != nil {
				e.log.Sync()
			}
		},
	}
	root.AddCommand(
		evolveCmd(e),
		currentCmd(e),
		downgradeCmd(e),
		resetMarkerCmd(e),
		backfillCmd(e),
		exportCmd(e),
		templateCmd(e),
	)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "schemactl:", err)
		os.Exit(1)
	}
}

func evolveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "evolve-schema",
		Short: "Apply every pending revision up to head",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev, err := e.evolver()
			if err != nil {
				return err
			}
			applied, err := ev.Upgrade(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				cmd.Println("already at", ev.Head())
				return nil
			}
			cmd.Println("applied:", strings.Join(applied, ", "))
			return nil
		},
	}
}

func currentCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the recorded revision and what is pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev, err := e.evolver()
			if err != nil {
				return err
			}
			cur, err := ev.Current(cmd.Context())
			if err != nil {
				return err
			}
			if cur == "" {
				cur = "(none)"
			}
			cmd.Println("current:", cur)
			cmd.Println("head:   ", ev.Head())
			pending, err := ev.Pending(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println("pending:", len(pending))
			return nil
		},
	}
}

func downgradeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "downgrade <revision|base>",
		Short: "Revert revisions newest first down to the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if target == "base" {
				target = ""
			}
			ev, err := e.evolver()
			if err != nil {
				return err
			}
			reverted, err := ev.Downgrade(cmd.Context(), target)
			if len(reverted) > 0 {
				cmd.Println("reverted:", strings.Join(reverted, ", "))
			}
			return err
		},
	}
}

func resetMarkerCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-schema-marker <revision|head>",
		Short: "Rewrite the recorded revision without running DDL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := e.evolver()
			if err != nil {
				return err
			}
			return ev.ResetMarker(cmd.Context(), args[0])
		},
	}
}

func backfillCmd(e *env) *cobra.Command {
	var forceGlobal bool
	cmd := &cobra.Command{
		Use:   "backfill-numbering",
		Short: "Assign per-project numbers to reports that lack one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var res *schema.BackfillResult
			err := e.db.WithContext(cmd.Context()).Transaction(func(tx *gorm.DB) error {
				var err error
				res, err = schema.BackfillNumbering(cmd.Context(), tx, schema.BackfillOptions{ForceGlobal: forceGlobal, Log: e.log})
				return err
			})
			if err != nil {
				return err
			}
			cmd.Printf("projects=%d assigned=%d escalated=%d\n", res.Projects, res.Assigned, res.Escalated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&forceGlobal, "force-global", false, "check public numbers across projects even without the legacy unique index")
	return cmd
}

func exportCmd(e *env) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export-pdf <report_id>",
		Short: "Render a report's artifact into the output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("report id %q: %w", args[0], err)
			}
			if dir == "" {
				dir = e.cfg.PDFOutputDir
			}
			tx := postgres.NewGormUoW(e.db)
			photos := photo.NewUsecase(postgres.NewPhotoRepository(e.db), tx, e.cfg.UploadDir, e.cfg.MaxPhotoBytes, e.log)
			composer := pdf.NewComposer(e.cfg.PDFTemplatePath, pdf.DefaultLayout(), e.log)
			arts := artifact.NewUsecase(composer, photos, tx, e.cfg.DefaultApproverName, e.cfg.Location(), e.log)

			art, err := arts.Download(cmd.Context(), id)
			if err != nil {
				return err
			}
			path, err := pdf.WriteFile(dir, art.Filename, art.Bytes)
			if err != nil {
				return err
			}
			cmd.Printf("%s (%d photos, %d skipped)\n", path, art.Rendered, len(art.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default PDF_OUTPUT_DIR)")
	return cmd
}

func templateCmd(e *env) *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:         "write-template",
		Short:       "Write a blank report template matching the default layout",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoDB: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = e.cfg.PDFTemplatePath
			}
			if err := pdf.WriteTemplate(out, pdf.DefaultLayout(), force); err != nil {
				return err
			}
			e.log.Info("pdf template written", "path", out)
			cmd.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "destination (default PDF_TEMPLATE_PATH)")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing template")
	return cmd
}
