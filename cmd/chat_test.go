package cmd

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/dialogue"
	"github.com/spigell/talentscout/internal/questions"
	"github.com/spigell/talentscout/internal/screening"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSurface struct {
	lines   []string
	renders int
	notices []string
}

func (f *fakeSurface) Render(candidate.Transcript) error {
	f.renders++
	return nil
}

func (f *fakeSurface) Notice(msg string) error {
	f.notices = append(f.notices, msg)
	return nil
}

func (f *fakeSurface) ReadLine() (string, error) {
	if len(f.lines) == 0 {
		return "exit", nil
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func TestConverseShowsNoticeOnOracleFailure(t *testing.T) {
	failures := 1
	oracle := ai.OracleFunc(func(_ context.Context, prompt string) (string, error) {
		if failures > 0 {
			failures--
			return "", ai.ErrOracleUnavailable
		}
		if strings.HasPrefix(prompt, "Extract the candidate's") {
			return "Jane Roe", nil
		}
		return "VALID", nil
	})

	controller := dialogue.NewController(screening.New(oracle, nil, 0), questions.NewBuilder(oracle, nil), nil)
	session := dialogue.NewSession()
	surface := &fakeSurface{lines: []string{"Jane Roe", "Jane Roe", "quit"}}

	require.NoError(t, converse(context.Background(), controller, session, surface, zap.NewNop()))

	assert.True(t, session.Done())
	assert.Equal(t, []string{retryNotice}, surface.notices)
	assert.Equal(t, "Jane Roe", session.Record.Get(candidate.FieldName))
	assert.Equal(t, 4, surface.renders)

	users := 0
	for _, turn := range session.Transcript {
		if turn.Speaker == candidate.SpeakerUser {
			users++
		}
	}
	assert.Equal(t, 2, users, "failed turn must not stay in the transcript")
}

func TestExportSession(t *testing.T) {
	dir := t.TempDir()
	session := dialogue.NewSession()

	require.NoError(t, exportSession(session, &ExportConfig{Dir: dir}, zap.NewNop()))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "empty record must not be exported")

	session.Record[candidate.FieldName] = "Jane Roe"
	session.Answers = candidate.AnswerLog{{Question: "Q?", Answer: "A"}}
	require.NoError(t, exportSession(session, &ExportConfig{Dir: dir, Transcript: true}, zap.NewNop()))

	file, err := os.Open(filepath.Join(dir, "jane_roe_profile.csv"))
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Roe", rows[1][0])
	assert.Equal(t, "Q1: Q?\nA1: A", rows[1][7])

	assert.FileExists(t, filepath.Join(dir, "jane_roe_transcript.json"))
}

func TestGetConfigDefaultsAndOverrides(t *testing.T) {
	viper.Set("ai.gemini.timeout", "5s")
	t.Cleanup(func() { viper.Set("ai.gemini.timeout", "30s") })

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini", config.AI.Provider)
	assert.Equal(t, "gemini-1.5-flash", config.AI.Gemini.Model)
	assert.Equal(t, 5*time.Second, config.AI.Gemini.Timeout)
	assert.Equal(t, 200, config.AI.Gemini.MaxLogLength)
	assert.Nil(t, config.AI.Gemini.Temperature)
	assert.Equal(t, ".", config.Export.Dir)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI: &AIConfig{
				Provider: "gemini",
				Gemini:   &GeminiConfig{Model: "gemini-1.5-flash", Timeout: time.Second},
			},
			Export: &ExportConfig{Dir: "."},
		}
	}

	require.NoError(t, validateConfig(valid()))

	hot := float32(3)
	cases := map[string]func(*Config){
		"nil ai":           func(c *Config) { c.AI = nil },
		"unknown provider": func(c *Config) { c.AI.Provider = "openai" },
		"missing gemini":   func(c *Config) { c.AI.Gemini = nil },
		"empty model":      func(c *Config) { c.AI.Gemini.Model = "" },
		"negative timeout": func(c *Config) { c.AI.Gemini.Timeout = -time.Second },
		"hot temperature":  func(c *Config) { c.AI.Gemini.Temperature = &hot },
		"missing export":   func(c *Config) { c.Export = nil },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}

	assert.Error(t, validateConfig(nil))
}

func TestNewOracleRejectsUnknownProvider(t *testing.T) {
	_, err := newOracle(context.Background(), &AIConfig{Provider: "openai", Gemini: &GeminiConfig{}}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ai provider")
}
