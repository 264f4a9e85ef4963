package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/utils"
)

const fallbackSlug = "candidate"

// Columns is the CSV header, in row order.
var Columns = []string{
	string(candidate.FieldName),
	string(candidate.FieldEmail),
	string(candidate.FieldPhone),
	string(candidate.FieldExperience),
	string(candidate.FieldPosition),
	string(candidate.FieldLocation),
	string(candidate.FieldTechStack),
	"qa",
}

// Profile is the flat record written at the end of a session.
type Profile struct {
	Record  candidate.Record
	Answers candidate.AnswerLog
}

// Row returns the profile as a CSV data row matching Columns.
func (p Profile) Row() []string {
	row := make([]string, 0, len(Columns))
	for _, f := range candidate.Fields {
		row = append(row, p.Record.Get(f))
	}
	return append(row, p.Answers.Format())
}

// Slug is the filename stem derived from the candidate's name.
func (p Profile) Slug() string {
	return utils.Slugify(p.Record.Get(candidate.FieldName), fallbackSlug)
}

// WriteCSV writes the profile as a one-row CSV file into dir and returns its path.
func WriteCSV(dir string, p Profile) (string, error) {
	path, err := target(dir, p.Slug()+"_profile.csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll([][]string{Columns, p.Row()}); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}

	return path, nil
}

// TranscriptDump is the JSON shape of a transcript export.
type TranscriptDump struct {
	SessionID  string               `json:"session_id"`
	Transcript candidate.Transcript `json:"transcript"`
	Answers    candidate.AnswerLog  `json:"answers,omitempty"`
}

// WriteTranscript dumps the transcript as indented JSON into dir and returns its path.
func WriteTranscript(dir string, slug string, dump TranscriptDump) (string, error) {
	path, err := target(dir, utils.Slugify(slug, fallbackSlug)+"_transcript.json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create transcript file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	return path, nil
}

func target(dir, name string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %q: %w", dir, err)
	}
	return filepath.Join(dir, name), nil
}
