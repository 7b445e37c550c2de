package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
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

	"github.com/parikshasarathi/sarathi/internal/exam"
	"github.com/parikshasarathi/sarathi/internal/handler"
	appI18n "github.com/parikshasarathi/sarathi/internal/i18n"
	"github.com/parikshasarathi/sarathi/internal/llm"
	"github.com/parikshasarathi/sarathi/internal/mocktest"
	"github.com/parikshasarathi/sarathi/internal/model"
	"github.com/parikshasarathi/sarathi/internal/store"
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sarathi",
		Short: "BSEB practice test server with AI generated questions",
	}

	serve := serveCmd()
	root.AddCommand(serve, bankCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `sarathi --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// addBackendFlags registers the flags every command needs to reach the bank.
func addBackendFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "sarathi.db", "SQLite database path")
	f.String("bank-backend", "sqlite", "Question bank backend (sqlite, redis)")
	f.String("redis-url", "redis://localhost:6379/0", "Redis URL for the redis backend")
	f.String("redis-prefix", "sarathi:", "Key prefix for the redis backend")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP test server",
		RunE:  runServe,
	}
	addBackendFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringSliceP("seed", "s", nil, "Question bank JSON files imported at startup (repeatable)")
	f.String("mock-tests", "", "JSON file with the mock test series (default: built-in series)")
	f.String("llm-url", "https://generativelanguage.googleapis.com/v1beta/openai/", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for the LLM (or set SARATHI_LLM_KEY)")
	f.String("llm-model", "gemini-2.5-flash", "LLM model name")
	f.Duration("generate-timeout", 60*time.Second, "Upper bound for one question generation call")
	f.StringP("lang", "l", "hi", "Default UI language (hi, en)")
	f.Bool("shuffle", true, "Shuffle the order of assembled questions")
	f.Duration("result-retention", exam.DefaultRetention, "How long finished sessions stay readable")
	f.StringSlice("allowed-origins", nil, "Allowed websocket origins (empty allows all)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /bseb)")
	return cmd
}

func bankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage the question bank",
	}

	imp := &cobra.Command{
		Use:   "import FILE...",
		Short: "Append questions from JSON files, skipping files already imported",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBankImport,
	}
	addBackendFlags(imp)
	imp.Flags().Bool("replace", false, "Import files whose content changed since their last import")

	exp := &cobra.Command{
		Use:   "export",
		Short: "Write the question bank as a JSON array",
		Args:  cobra.NoArgs,
		RunE:  runBankExport,
	}
	addBackendFlags(exp)
	exp.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")

	cmd.AddCommand(imp, exp)
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

// loadMockTests reads the mock series from path, or the built-in one.
func loadMockTests(path string) (*mocktest.Catalog, error) {
	if path == "" {
		return mocktest.Default()
	}
	c, err := mocktest.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load mock tests: %w", err)
	}
	return c, nil
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("SARATHI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("sarathi")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/sarathi")
	v.AddConfigPath("/etc/sarathi")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openBackend opens the configured bank backend.
func openBackend(ctx context.Context, v *viper.Viper) (store.Backend, error) {
	switch kind := strings.ToLower(v.GetString("bank-backend")); kind {
	case "sqlite", "":
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		slog.Info("bank backend ready", "backend", "sqlite", "db", v.GetString("db"))
		return db, nil
	case "redis":
		rdb, err := store.NewRedis(ctx, v.GetString("redis-url"), v.GetString("redis-prefix"))
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		slog.Info("bank backend ready", "backend", "redis", "prefix", v.GetString("redis-prefix"))
		return rdb, nil
	default:
		return nil, fmt.Errorf("unknown bank backend %q (want sqlite or redis)", kind)
	}
}

// importFiles appends every file to the bank, relying on the ledger to skip
// files that were already imported.
func importFiles(ctx context.Context, bank *store.Bank, ledger store.Ledger, paths []string, replace bool) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, err := store.Import(ctx, bank, ledger, abs, data, replace); err != nil {
			return err
		}
	}
	return nil
}

// normalizeBasePath returns "" or a path with a leading and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, v)
	if err != nil {
		return err
	}
	defer backend.Close()
	bank := store.NewBank(backend.Slot(store.BankSlotName))

	if err := importFiles(ctx, bank, backend, v.GetStringSlice("seed"), false); err != nil {
		return fmt.Errorf("seed bank: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	llmClient := llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
		v.GetDuration("generate-timeout"),
	)
	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	if err := llmClient.Ping(pingCtx); err != nil {
		// Tests still start without the LLM; shortfalls get the fallback question.
		slog.Warn("LLM health check failed", "url", v.GetString("llm-url"), "error", err)
	} else {
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}
	cancelPing()

	basePath := normalizeBasePath(v.GetString("base-path"))
	examCfg := model.ExamConfig{
		Shuffle:         v.GetBool("shuffle"),
		BasePath:        basePath,
		ResultRetention: v.GetDuration("result-retention"),
		AllowedOrigins:  v.GetStringSlice("allowed-origins"),
	}

	assembler := exam.NewAssembler(bank, llmClient)
	assembler.Shuffle = examCfg.Shuffle

	sessions := exam.NewRegistry(examCfg.ResultRetention)
	go sessions.Run(ctx, time.Minute)

	mocks, err := loadMockTests(v.GetString("mock-tests"))
	if err != nil {
		return err
	}
	slog.Info("mock tests loaded", "count", mocks.Len())

	h := handler.New(bank, backend, assembler, sessions, mocks, examCfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware)

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"backend", v.GetString("bank-backend"),
			"model", v.GetString("llm-model"),
			"llm_url", v.GetString("llm-url"),
			"lang", lang,
			"shuffle", examCfg.Shuffle,
			"base_path", basePath,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runBankImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	backend, err := openBackend(ctx, v)
	if err != nil {
		return err
	}
	defer backend.Close()

	bank := store.NewBank(backend.Slot(store.BankSlotName))
	if err := importFiles(ctx, bank, backend, args, v.GetBool("replace")); err != nil {
		return err
	}
	n, err := bank.Count(ctx)
	if err != nil {
		return err
	}
	slog.Info("bank size", "questions", n)
	return nil
}

func runBankExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	backend, err := openBackend(ctx, v)
	if err != nil {
		return err
	}
	defer backend.Close()

	data, err := store.NewBank(backend.Slot(store.BankSlotName)).Export(ctx)
	if err != nil {
		return fmt.Errorf("export bank: %w", err)
	}

	outPath := v.GetString("output")
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
