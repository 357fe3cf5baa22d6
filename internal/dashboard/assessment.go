package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Assessment levels ordered by severity.
const (
	LevelHealthy  = "healthy"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

var (
	criticalPattern = regexp.MustCompile(`(?i)critical|urgent|immediately|reorder|shortage|risk|alert|out\s*of\s*stock|depleted|stockout`)
	warningPattern  = regexp.MustCompile(`(?i)consider|monitor|potential|attention|watch|review|worth`)
)

const assessmentInstructions = `You are an inventory management AI assistant. Analyze the following lab inventory data and list:
- The current situation
- Critical/Urgent issues first (reorder, risks, shortages)
- Warnings/Attention needed next (monitor/consider)
- Positive/healthy/perfect messages last (ok or no action)
Format each suggestion as a new line (bulleted if possible), no markdown bolds, avoid asterisks.`

// Assess posts the already-fetched dashboard snapshot plus the analysis
// prompt to the backend AI endpoint and classifies its free-text reply by
// keyword scanning. The endpoint replies {output} outside the envelope
// convention.
func (s *Service) Assess(ctx context.Context, token string, admin bool) (Assessment, error) {
	snap, err := s.Load(ctx, token, admin)
	if err != nil {
		return Assessment{}, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Assessment{}, err
	}

	raw, err := s.api.PostRaw(ctx, token, "/gemini-assessment", map[string]string{
		"prompt": fmt.Sprintf("%s\nData:\n%s", assessmentInstructions, data),
	})
	if err != nil {
		return Assessment{}, err
	}
	var payload struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Assessment{}, err
	}

	report := strings.TrimSpace(payload.Output)
	return Assessment{
		Level:     ClassifyAssessment(report),
		Situation: situationLine(report),
		Report:    report,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ClassifyAssessment buckets a free-text report. Critical keywords win
// over warning keywords; anything else reads as healthy.
func ClassifyAssessment(report string) string {
	switch {
	case criticalPattern.MatchString(report):
		return LevelCritical
	case warningPattern.MatchString(report):
		return LevelWarning
	default:
		return LevelHealthy
	}
}

// situationLine extracts a one-line summary: the first non-empty line,
// clipped at the first sentence boundary when one exists.
func situationLine(report string) string {
	for _, line := range strings.Split(report, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#*- "))
		if line == "" {
			continue
		}
		if idx := strings.IndexAny(line, ".!"); idx > 0 && idx < len(line)-1 {
			return line[:idx+1]
		}
		return line
	}
	return ""
}
