// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// ExportToCSV converts a playlist to CSV format with columns: ID, Title, Artist, Album, Version, Duration
func ExportToCSV(view models.PlaylistView) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Version", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range view.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			track.Version,
			strconv.Itoa(track.DurationMS),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown format
func ExportToMarkdown(view models.PlaylistView) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", view.Name))

	if view.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", view.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(view.Tracks)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n", shared.VisibilityString(view.Public)))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", view.Status))
	if view.ProviderID != "" {
		buf.WriteString(fmt.Sprintf("**Published to**: %s (%s)\n", view.Provider, view.ProviderID))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range view.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		durationPart := ""
		if track.DurationMS > 0 {
			durationPart = fmt.Sprintf(" [%s]", shared.FormatDuration(track.DurationMS))
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s%s\n", i+1, track.Artist, track.Title, albumPart, durationPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(view models.PlaylistView) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", view.Name))
	if view.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", view.Description))
	}
	buf.WriteString(fmt.Sprintf("Status: %s\n", view.Status))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(view.Tracks)))

	for i, track := range view.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// VerificationReport renders a verification response for terminal output.
//
// Verified tracks are listed first in batch order, then rejected labels.
func VerificationReport(response *models.VerificationResponse) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Verified %d of %d tracks\n\n",
		len(response.Verified), len(response.Verified)+len(response.Rejected)))

	for i, track := range response.Verified {
		buf.WriteString(fmt.Sprintf("  %d. %s - %s", i+1, track.Artist, track.Title))
		if track.DurationMS > 0 {
			buf.WriteString(fmt.Sprintf(" [%s]", shared.FormatDuration(track.DurationMS)))
		}
		buf.WriteString("\n")
	}

	if len(response.Rejected) > 0 {
		buf.WriteString("\nNot found in catalog:\n")
		for _, label := range response.Rejected {
			buf.WriteString(fmt.Sprintf("  - %s\n", label))
		}
	}

	return buf.String()
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(view models.PlaylistView) ([]byte, error) {
	metadata := view
	metadata.Tracks = nil
	return json.MarshalIndent(metadata, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(view models.PlaylistView, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = view.ID
	}

	csvData, err := ExportToCSV(view)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(view)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID and contains a single README.md.
func WriteMarkdownExport(view models.PlaylistView, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = view.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(view)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_tracks.txt as the filename.
func WriteTextExport(view models.PlaylistView, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.txt", view.ID)
	}

	textData, err := ExportToText(view)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
