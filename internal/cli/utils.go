// Package cli provides output formatting for the ryori command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hyperjump/ryori/internal/models"
)

// OutputFormat is the format for recommendation output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per recommendation.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is the HTTP response body, for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s as an OutputFormat. Empty means OutputText.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, compact or json)", s)
	}
}

// WriteRecommendations writes response to w in the given format.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for i, rec := range response.Recommendations {
			fmt.Fprintf(w, "%d. %s (%.4f)\n", i+1, rec.Name, rec.Similarity)
		}
		return nil
	default:
		writeRecommendationsText(w, response)
		return nil
	}
}

func writeRecommendationsText(w io.Writer, response *models.RecommendResponse) {
	fmt.Fprintf(w, "\nFound %d recommendations in %dms", len(response.Recommendations), response.QueryTime)
	if response.Preferences != "" {
		fmt.Fprintf(w, " for %q", response.Preferences)
	}
	fmt.Fprint(w, "\n\n")
	for i, rec := range response.Recommendations {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%d. %s | Similarity: %.4f\n", i+1, rec.Name, rec.Similarity)
		if rec.Description != "" {
			fmt.Fprintf(w, "\n%s\n", TruncateWords(rec.Description, 40))
		}
		switch {
		case rec.Degraded != "":
			fmt.Fprintf(w, "\n(%s)\n", rec.Degraded)
		case rec.Chart != nil:
			fmt.Fprintf(w, "\nChart: %d-byte PNG (use --output json to get it)\n", len(rec.Chart))
		}
		fmt.Fprintln(w)
	}
}

// WriteStatus writes a human-readable status report.
func WriteStatus(w io.Writer, st *models.Status) {
	fmt.Fprintln(w, "Status")
	fmt.Fprintf(w, "  Recipes:          %d\n", st.Items)
	fmt.Fprintf(w, "  Embeddings:       %d\n", st.Embeddings)
	fmt.Fprintf(w, "  Dimensions:       %d\n", st.Dimensions)
	fmt.Fprintf(w, "  Max k:            %d\n", st.MaxK)
	if st.Provider != "" {
		fmt.Fprintf(w, "  Encoder:          %s (loaded: %v)\n", st.Provider, st.EncoderLoaded)
	}
	fmt.Fprintf(w, "  Disk usage:       %s\n", FormatBytes(st.DiskUsageBytes))
	if st.Version != "" {
		fmt.Fprintf(w, "  Version:          %s\n", st.Version)
	}
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
