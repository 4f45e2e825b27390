// Package export writes a student's study data to YAML files and renders
// notes as Markdown and PDF documents.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/at-ishikawa/eduflux/internal/mastery"
	"github.com/at-ishikawa/eduflux/internal/note"
	"github.com/at-ishikawa/eduflux/internal/toolresult"
)

// Snapshot is the on-disk shape of an exported account.
type Snapshot struct {
	ExportedAt  time.Time               `yaml:"exported_at"`
	Notes       []note.Note             `yaml:"notes,omitempty"`
	Flashcards  []mastery.Flashcard     `yaml:"flashcards,omitempty"`
	ToolResults []toolresult.ToolResult `yaml:"tool_results,omitempty"`
}

// Result tracks what an export run produced.
type Result struct {
	SnapshotPath  string
	MarkdownPaths []string
	PDFPaths      []string
}

// Exporter reads a student's rows and writes them under a directory.
type Exporter struct {
	notes       note.Repository
	cards       mastery.Repository
	toolResults toolresult.Repository
	now         func() time.Time
}

// NewExporter creates a new Exporter.
func NewExporter(notes note.Repository, cards mastery.Repository, toolResults toolresult.Repository) *Exporter {
	return &Exporter{
		notes:       notes,
		cards:       cards,
		toolResults: toolResults,
		now:         time.Now,
	}
}

// Options controls what an export run writes.
type Options struct {
	Directory string
	// RenderPDF also converts each note's Markdown file to a PDF.
	RenderPDF bool
}

// Export writes the snapshot YAML plus one Markdown file per note.
func (e *Exporter) Export(ctx context.Context, studentID string, opts Options) (*Result, error) {
	if opts.Directory == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", opts.Directory, err)
	}

	snapshot := Snapshot{ExportedAt: e.now()}

	var err error
	snapshot.Notes, err = e.notes.FindAllByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("notes.FindAllByStudent() > %w", err)
	}
	snapshot.Flashcards, err = e.cards.FindAllByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("cards.FindAllByStudent() > %w", err)
	}
	snapshot.ToolResults, err = e.toolResults.FindAllByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("toolResults.FindAllByStudent() > %w", err)
	}

	result := &Result{
		SnapshotPath: filepath.Join(opts.Directory, "snapshot.yml"),
	}
	if err := writeYamlFile(result.SnapshotPath, snapshot); err != nil {
		return nil, fmt.Errorf("writeYamlFile(%s) > %w", result.SnapshotPath, err)
	}

	notesDir := filepath.Join(opts.Directory, "notes")
	if len(snapshot.Notes) > 0 {
		if err := os.MkdirAll(notesDir, 0o755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll(%s) > %w", notesDir, err)
		}
	}
	for _, n := range snapshot.Notes {
		markdownPath, err := WriteNoteMarkdown(notesDir, n)
		if err != nil {
			return nil, fmt.Errorf("WriteNoteMarkdown() > %w", err)
		}
		result.MarkdownPaths = append(result.MarkdownPaths, markdownPath)

		if opts.RenderPDF {
			pdfPath, err := ConvertMarkdownToPDF(markdownPath)
			if err != nil {
				return nil, fmt.Errorf("ConvertMarkdownToPDF(%s) > %w", markdownPath, err)
			}
			result.PDFPaths = append(result.PDFPaths, pdfPath)
		}
	}

	return result, nil
}
