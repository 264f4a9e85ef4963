package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/talentscout/internal/ai/gemini"
	"github.com/spigell/talentscout/internal/candidate"
	"github.com/spigell/talentscout/internal/dialogue"
	"github.com/spigell/talentscout/internal/display"
	"github.com/spigell/talentscout/internal/export"
	"github.com/spigell/talentscout/internal/logger"
	"github.com/spigell/talentscout/internal/questions"
	"github.com/spigell/talentscout/internal/screening"
	"github.com/spigell/talentscout/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const retryNotice = "Sorry, the assistant is not responding right now. Please send your answer again."

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interactive candidate screening session",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("export-dir", "o", "", "directory for the candidate export. Default is the current directory.")
	chatCmd.Flags().BoolP("transcript", "t", false, "also dump the transcript as json on session end")
	chatCmd.Flags().Bool("clear", false, "clear the screen before every turn")
	chatCmd.Flags().Bool("no-color", false, "disable colored speaker labels")

	viper.BindPFlag("export.dir", chatCmd.Flags().Lookup("export-dir"))
	viper.BindPFlag("export.transcript", chatCmd.Flags().Lookup("transcript"))
}

// chat runs one interview session on the terminal.
func chat(cmd *cobra.Command) {
	ctx := context.Background()

	appLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer appLogger.Sync()

	config, err := getConfig()
	if err != nil {
		appLogger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	appLogger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	generator, err := newOracle(ctx, config.AI, appLogger)
	if err != nil {
		appLogger.Fatal("creating the oracle",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file in the configuration file"),
		)
	}

	controller := dialogue.NewController(
		screening.New(generator, appLogger, config.AI.Gemini.MaxLogLength),
		questions.NewBuilder(generator, appLogger),
		appLogger,
	)

	session := dialogue.NewSession()
	sessionLogger := logger.WithSession(appLogger, session.ID)
	sessionLogger.Info("starting the talentscout session", zap.String("version", version))

	noColor, _ := cmd.Flags().GetBool("no-color")
	clearScreen, _ := cmd.Flags().GetBool("clear")
	term := display.NewTerminal(display.WithClear(clearScreen), display.WithStyle(!noColor))

	if err := converse(ctx, controller, session, term, sessionLogger); err != nil {
		sessionLogger.Fatal("exiting", zap.Error(err))
	}

	if err := exportSession(session.Snapshot(), config.Export, sessionLogger); err != nil {
		sessionLogger.Fatal("exporting the session", zap.Error(err))
	}
}

type surface interface {
	Render(transcript candidate.Transcript) error
	Notice(msg string) error
	ReadLine() (string, error)
}

// converse alternates rendering and input until the session ends.
// Oracle failures are shown as a notice and the same step is asked again.
func converse(ctx context.Context, controller *dialogue.Controller, session *dialogue.Session, term surface, logger *zap.Logger) error {
	controller.Start(session)

	notice := ""
	for !session.Done() {
		if err := term.Render(session.Transcript); err != nil {
			return fmt.Errorf("render transcript: %w", err)
		}
		if notice != "" {
			if err := term.Notice(notice); err != nil {
				return fmt.Errorf("render notice: %w", err)
			}
			notice = ""
		}

		line, err := term.ReadLine()
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if err := controller.Handle(ctx, session, line); err != nil {
			if errors.Is(err, dialogue.ErrSessionClosed) {
				break
			}
			logger.Error("processing the turn", zap.Error(err))
			notice = retryNotice
		}
	}

	return term.Render(session.Transcript)
}

func exportSession(session *dialogue.Session, cfg *ExportConfig, logger *zap.Logger) error {
	if len(session.Record) == 0 {
		logger.Info("skipping export", zap.String("reason", "no candidate details collected"))
		return nil
	}

	profile := export.Profile{Record: session.Record, Answers: session.Answers}

	path, err := export.WriteCSV(cfg.Dir, profile)
	if err != nil {
		return err
	}
	logger.Info("candidate profile exported", zap.String("filename", path), zap.Int("answers", len(session.Answers)))

	if !cfg.Transcript {
		return nil
	}

	path, err = export.WriteTranscript(cfg.Dir, profile.Slug(), export.TranscriptDump{
		SessionID:  session.ID,
		Transcript: session.Transcript,
		Answers:    session.Answers,
	})
	if err != nil {
		return err
	}
	logger.Info("transcript exported", zap.String("filename", path))
	return nil
}

func newOracle(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:        cfg.Gemini.Model,
		Timeout:      cfg.Gemini.Timeout,
		Temperature:  cfg.Gemini.Temperature,
		MaxLogLength: cfg.Gemini.MaxLogLength,
	}, logger)
}
