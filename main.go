// polyloc — translates JSON locale files and text documents into multiple
// languages via machine-translation providers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openlocalize/polyloc/config"
	"github.com/openlocalize/polyloc/i18n"
	"github.com/openlocalize/polyloc/jsonfile"
	"github.com/openlocalize/polyloc/langs"
	"github.com/openlocalize/polyloc/settings"
	"github.com/openlocalize/polyloc/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "polyloc",
		Short: "Translate JSON locale files and documents with MT providers",
		Long: `polyloc — structured-text translation for localization projects.

Targets are declared in .polyloc.yaml: nested JSON locale files (keys and
nesting preserved, parameter placeholders protected) or flat documents
(Markdown/HTML, with configurable do-not-translate tags).

Commands:
  status      Show project targets and existing translations
  init        Write a starter .polyloc.yaml
  translate   Translate all targets into their configured languages
  auth        Manage provider API keys

Providers:
  deepl           DeepL API (API key required)
  libretranslate  LibreTranslate-compatible endpoint (self-hostable)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newStatusCmd(),
		newInitCmd(),
		newTranslateCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("polyloc %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter .polyloc.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteStarter(rootDir)
			if err != nil {
				return err
			}
			logSuccess("created %s — edit it and run 'polyloc translate'", path)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project targets and existing translations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			if cfg == nil {
				return fmt.Errorf("no %s found in %s (run 'polyloc init')", config.FileName, rootDir)
			}

			fmt.Printf("Provider: %s\n", cfg.Provider.Name)
			for _, t := range cfg.Targets {
				fmt.Printf("\nTarget: %s (%s)\n", t.Name, t.Type)
				fmt.Printf("  source: %s\n", t.Source)

				languages := targetLanguages(cfg, t)
				if len(languages) == 0 {
					fmt.Println("  languages: none configured or detected")
					continue
				}
				for _, lang := range languages {
					out := filepath.Join(rootDir, t.OutputPath(lang))
					mark := "missing"
					if _, err := os.Stat(out); err == nil {
						mark = "exists"
					}
					fmt.Printf("  %-8s %-24s %s  [%s]\n", lang, langs.DisplayName(lang), t.OutputPath(lang), mark)
				}
			}
			return nil
		},
	}
}

// targetLanguages returns a target's language list, falling back to
// auto-detection from existing output files.
func targetLanguages(cfg *config.File, t config.Target) []string {
	if len(t.Languages) > 0 {
		return t.Languages
	}
	return config.DetectLanguages(rootDir, t)
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		providerFlag  string
		apiKeyFlag    string
		languagesFlag []string
		targetFlag    string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate all targets into their configured languages",
		Long: `Translate every target declared in .polyloc.yaml.

JSON targets are flattened to dot-notation paths, batched under the
provider request budget, translated per language concurrently, and
rebuilt with identical structure. Parameter placeholders like {name}
and {{count}} survive translation untouched.

Document targets are translated as one unit per language, with the
configured keep tags protecting literal spans.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			if cfg == nil {
				return fmt.Errorf("no %s found in %s (run 'polyloc init')", config.FileName, rootDir)
			}

			client, err := buildClient(cfg, providerFlag, apiKeyFlag)
			if err != nil {
				return err
			}

			// Cancel the run on Ctrl-C; in-flight waits and HTTP
			// calls honor the context.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			go func() {
				<-sigCh
				logWarning("interrupted, cancelling...")
				cancel()
			}()

			failed := 0
			for _, t := range cfg.Targets {
				if targetFlag != "" && t.Name != targetFlag {
					continue
				}
				failed += runTarget(ctx, client, cfg, t, languagesFlag, verbose)
			}

			if failed > 0 {
				return fmt.Errorf("%d %s failed", failed, i18n.N("translation", "translations", failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerFlag, "provider", "", "Override the configured provider (deepl, libretranslate)")
	cmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "Provider API key (overrides env and stored keys)")
	cmd.Flags().StringSliceVar(&languagesFlag, "languages", nil, "Override target languages (comma-separated codes)")
	cmd.Flags().StringVar(&targetFlag, "target", "", "Translate only the named target")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{translate.ProviderDeepL, translate.ProviderLibreTranslate}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// buildClient assembles the retrying translation client from project
// config plus command-line overrides.
func buildClient(cfg *config.File, providerFlag, apiKeyFlag string) (*translate.Client, error) {
	name := cfg.Provider.Name
	if providerFlag != "" {
		name = providerFlag
	}

	pcfg, ok := translate.DefaultConfigs()[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (valid: deepl, libretranslate)", name)
	}
	if cfg.Provider.BaseURL != "" {
		pcfg.BaseURL = cfg.Provider.BaseURL
	}
	pcfg.Proxy = cfg.Provider.Proxy
	pcfg.Timeout = cfg.Provider.Timeout()
	pcfg.SourceLang = cfg.SourceLang
	pcfg.APIKey = settings.ResolveAPIKey(apiKeyFlag, name, rootDir)

	if pcfg.APIKey == "" && name == translate.ProviderDeepL {
		return nil, fmt.Errorf("no API key for %s (use --api-key, %s, or 'polyloc auth set-key')", name, settings.EnvAPIKey)
	}

	prov, err := translate.NewProvider(pcfg)
	if err != nil {
		return nil, err
	}

	return &translate.Client{
		Provider:   prov,
		MaxRetries: cfg.Request.MaxRetries,
		BaseDelay:  cfg.Request.BaseDelay(),
	}, nil
}

// runTarget translates one target into all of its languages and writes
// the outputs. Returns the number of failed languages.
func runTarget(ctx context.Context, client *translate.Client, cfg *config.File, t config.Target, languagesFlag []string, verbose bool) int {
	languages := languagesFlag
	if len(languages) == 0 {
		languages = targetLanguages(cfg, t)
	}
	if len(languages) == 0 {
		logWarning("%s: no languages configured or detected, skipping", t.Name)
		return 0
	}
	if _, err := langs.NormalizeAll(languages); err != nil {
		logError("%s: %v", t.Name, err)
		return len(languages)
	}

	logInfo("%s: %s → %s", t.Name, t.Source, strings.Join(languages, ", "))

	job := &translate.Job{
		Client: client,
		Options: translate.Options{
			MaxRequestBytes: cfg.Request.MaxSizeBytes,
			OverheadBytes:   cfg.Request.OverheadBytes,
			KeepStart:       t.KeepStart,
			KeepEnd:         t.KeepEnd,
			OnProgress: func(lang string, done, total int) {
				if verbose {
					logInfo("  %s: %d/%d", lang, done, total)
				}
			},
			OnLog: logWarning,
		},
	}

	var results []translate.Result
	switch t.Type {
	case config.TargetTypeJSON:
		doc, err := jsonfile.ParseFile(filepath.Join(rootDir, t.Source))
		if err != nil {
			logError("%s: %v", t.Name, err)
			return len(languages)
		}
		results = job.TranslateDocument(ctx, doc, languages)

	case config.TargetTypeDocument:
		data, err := os.ReadFile(filepath.Join(rootDir, t.Source))
		if err != nil {
			logError("%s: %v", t.Name, err)
			return len(languages)
		}
		results = job.TranslateText(ctx, string(data), languages)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			logError("%s [%s]: %v", t.Name, res.Lang, res.Err)
			failed++
			continue
		}
		out := filepath.Join(rootDir, t.OutputPath(res.Lang))
		if err := writeResult(out, res); err != nil {
			logError("%s [%s]: %v", t.Name, res.Lang, err)
			failed++
			continue
		}
		logSuccess("%s [%s] → %s", t.Name, langs.DisplayName(res.Lang), t.OutputPath(res.Lang))
	}
	return failed
}

func writeResult(path string, res translate.Result) error {
	if res.Document != nil {
		return res.Document.WriteFile(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, []byte(res.Text), 0644)
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: fmt.Sprintf(`Manage API keys stored in %s.

Lookup order when translating:
  1. --api-key flag
  2. %s environment variable
  3. .env file in the project root
  4. the stored key`, settings.FilePath(), settings.EnvAPIKey),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-key <provider> <key>",
			Short: "Store an API key for a provider",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := settings.SetKey(args[0], args[1]); err != nil {
					return err
				}
				logSuccess("stored key for %s in %s", args[0], settings.FilePath())
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove-key <provider>",
			Short: "Remove the stored API key for a provider",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := settings.RemoveKey(args[0]); err != nil {
					return err
				}
				logSuccess("removed key for %s", args[0])
				return nil
			},
		},
	)

	return cmd
}
