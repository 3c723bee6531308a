package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/studygenius/internal/analyzer"
	"github.com/pavelanni/studygenius/internal/events"
	"github.com/pavelanni/studygenius/internal/exam"
	"github.com/pavelanni/studygenius/internal/handler"
	appI18n "github.com/pavelanni/studygenius/internal/i18n"
	"github.com/pavelanni/studygenius/internal/llm"
	"github.com/pavelanni/studygenius/internal/llm/prompts"
	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/speech"
	"github.com/pavelanni/studygenius/internal/store"
	"github.com/pavelanni/studygenius/internal/study"
	"github.com/pavelanni/studygenius/internal/synth"
	"github.com/pavelanni/studygenius/internal/translate"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studygenius",
		Short: "Study aid service: summaries, quizzes, flashcards and descriptive tests",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `studygenius --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "studygenius.db", "SQLite database path")
	f.StringP("lang", "l", "en", "Default UI language")
	f.StringSlice("cors-origins", []string{"http://localhost:5173"}, "Allowed browser origins (repeatable)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.Int("exam-seconds", 300, "Per-question time limit in exam mode")
	f.Int("hint-penalty", 30, "Seconds removed from the exam clock per hint")
	f.Duration("exam-idle-timeout", 2*time.Hour, "Drop exam sessions with no activity for this long")
	f.Duration("translate-delay", translate.DefaultDelay, "Simulated latency of the translator")
	f.String("speech-url", speech.DefaultBaseURL, "Text-to-speech API base URL")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty = template summaries)")
	f.String("llm-key", "", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("summary-variant", string(prompts.VariantStandard), "Summary prompt variant (brief, standard, detailed)")
	f.Int64("max-upload-bytes", 32<<20, "Maximum size of one upload request")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate FILE...",
		Short: "Generate a descriptive test, quiz and flashcards from files and print them as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.String("bank", "archetype", "Question template bank (archetype, cognitive)")
	f.StringSlice("categories", nil, "Restrict the bank to these categories")
	f.IntP("count", "n", synth.UploadQuestionCount, "Number of descriptive questions")
	f.Uint64("seed", 0, "Random seed for quiz generation (0 = time based)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every user's study material and progress as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "studygenius.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("STUDYGENIUS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("studygenius")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/studygenius")
	v.AddConfigPath("/etc/studygenius")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if n, err := db.CleanupExpiredSessions(); err != nil {
		slog.Warn("failed to clean up expired sessions", "error", err)
	} else if n > 0 {
		slog.Info("removed expired sessions", "count", n)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	go hub.Run(ctx)

	var studyOpts []study.Option
	if url := v.GetString("llm-url"); url != "" {
		variant := strings.ToLower(strings.TrimSpace(v.GetString("summary-variant")))
		if !prompts.IsValidVariant(variant) {
			slog.Warn("invalid summary-variant, using standard", "variant", variant)
			variant = string(prompts.VariantStandard)
		}
		if err := prompts.Load(prompts.FS()); err != nil {
			return fmt.Errorf("load prompts: %w", err)
		}
		client := llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"), prompts.Variant(variant))
		studyOpts = append(studyOpts, study.WithSummarizer(client))
		slog.Info("LLM summarizer enabled", "url", url, "model", v.GetString("llm-model"), "variant", variant)
	}
	svc := study.New(db, hub, studyOpts...)

	tr, err := translate.New(
		translate.WithDelay(v.GetDuration("translate-delay")),
		translate.WithLookup(appI18n.Lookup),
	)
	if err != nil {
		return fmt.Errorf("create translator: %w", err)
	}

	examCfg := exam.DefaultConfig()
	examCfg.TimeLimit = v.GetInt("exam-seconds")
	examCfg.HintPenalty = v.GetInt("hint-penalty")
	examCfg.IdleTimeout = v.GetDuration("exam-idle-timeout")
	exams := exam.NewManager(examCfg, hub)
	defer exams.CloseAll()
	go exams.Run(ctx, time.Minute)

	appCfg := model.AppConfig{
		ExamSeconds:    v.GetInt("exam-seconds"),
		HintPenalty:    v.GetInt("hint-penalty"),
		TranslateDelay: v.GetDuration("translate-delay"),
		SecureCookies:  v.GetBool("secure-cookies"),
		CORSOrigins:    v.GetStringSlice("cors-origins"),
		SummaryVariant: v.GetString("summary-variant"),
		MaxUploadBytes: v.GetInt64("max-upload-bytes"),
	}

	h, err := handler.New(handler.Deps{
		Store:      db,
		Study:      svc,
		Exams:      exams,
		Translator: tr,
		Speech:     speech.New(v.GetString("speech-url"), nil),
		Hub:        hub,
	}, appCfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(handler.CORS(appCfg.CORSOrigins))
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"lang", lang,
			"exam_seconds", examCfg.TimeLimit,
			"hint_penalty", examCfg.HintPenalty,
			"cors_origins", appCfg.CORSOrigins,
			"llm", v.GetString("llm-url") != "",
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type generated struct {
	Topics     []string                    `json:"topics"`
	Questions  []model.DescriptiveQuestion `json:"questions"`
	Quiz       []model.QuizQuestion        `json:"quiz"`
	Flashcards []model.Flashcard           `json:"flashcards"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	var bank synth.Bank
	switch b := strings.ToLower(v.GetString("bank")); b {
	case "archetype":
		bank = synth.ArchetypeBank()
	case "cognitive":
		bank = synth.CognitiveBank()
	default:
		return fmt.Errorf("unknown bank %q", b)
	}
	if names := v.GetStringSlice("categories"); len(names) > 0 {
		sel := synth.Select(bank, names...)
		if len(sel.Categories()) == 0 {
			return fmt.Errorf("no categories of bank %q match %v", bank.Name(), names)
		}
		bank = sel
	}

	texts := make([]string, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		name := filepath.Base(path)
		mimeType := mime.TypeByExtension(filepath.Ext(name))
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		texts = append(texts, study.FileText(model.UploadedFile{Name: name, MIMEType: mimeType, Data: data}))
	}
	content := strings.Join(texts, "\n\n")
	fileName := filepath.Base(args[0])

	seed := v.GetUint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	topics := analyzer.ExtractTopics(content, fileName)
	gen := synth.NewGenerator(synth.UUIDs())
	qs, err := gen.Generate(bank, topics, v.GetInt("count"), synth.GenerateOptions{
		Themes:   analyzer.Themes(content, 5),
		Snippets: analyzer.Snippets(content, v.GetInt("count")),
	})
	if err != nil {
		return fmt.Errorf("generate questions: %w", err)
	}

	out := generated{
		Topics:     topics.All(),
		Questions:  qs,
		Quiz:       synth.QuizFromContent(content, fileName, rng),
		Flashcards: synth.FlashcardsFromContent(content, fileName),
	}
	slog.Info("generated study material", "files", len(args), "bank", bank.Name(),
		"questions", len(out.Questions), "quiz", len(out.Quiz), "flashcards", len(out.Flashcards))
	return writeJSON(v.GetString("output"), out)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportStudy()
	if err != nil {
		return fmt.Errorf("export study data: %w", err)
	}
	return writeJSON(v.GetString("output"), export)
}

func writeJSON(outPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
