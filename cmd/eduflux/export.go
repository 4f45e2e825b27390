package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eduflux/internal/database"
	"github.com/at-ishikawa/eduflux/internal/export"
	"github.com/at-ishikawa/eduflux/internal/mastery"
	"github.com/at-ishikawa/eduflux/internal/note"
	"github.com/at-ishikawa/eduflux/internal/student"
	"github.com/at-ishikawa/eduflux/internal/toolresult"
)

func newExportCommand() *cobra.Command {
	var (
		externalID string
		outputDir  string
		renderPDF  bool
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a student's notes, flashcards and saved tool results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			if outputDir == "" {
				outputDir = cfg.Exports.Directory
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			ctx := cmd.Context()

			students := student.NewDBRepository(db)
			s, err := students.FindByExternalID(ctx, externalID)
			if err != nil {
				return fmt.Errorf("students.FindByExternalID(%s) > %w", externalID, err)
			}
			if s == nil {
				return fmt.Errorf("no student found for external id %s", externalID)
			}

			exporter := export.NewExporter(
				note.NewDBRepository(db),
				mastery.NewDBRepository(db),
				toolresult.NewDBRepository(db),
			)
			result, err := exporter.Export(ctx, s.ID, export.Options{
				Directory: outputDir,
				RenderPDF: renderPDF,
			})
			if err != nil {
				return fmt.Errorf("exporter.Export() > %w", err)
			}

			color.Green("Exported snapshot: %s", result.SnapshotPath)
			for _, path := range result.MarkdownPaths {
				fmt.Println(path)
			}
			for _, path := range result.PDFPaths {
				fmt.Println(path)
			}
			return nil
		},
	}

	flags := exportCmd.Flags()
	flags.StringVar(&externalID, "student", "", "external id of the student to export")
	flags.StringVar(&outputDir, "output", "", "output directory (defaults to exports.directory)")
	flags.BoolVar(&renderPDF, "pdf", false, "also render each note as a PDF")
	_ = exportCmd.MarkFlagRequired("student")

	return exportCmd
}
