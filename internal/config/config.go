package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/ocr"
)

const (
	// Mode constants
	ModeRun    = "run"
	ModeServer = "server"
	ModeStdio  = "stdio"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultMaxUpload     = 16 * 1024 * 1024  // 16MB per request
	DefaultTextThreshold = 100
	DefaultDPI           = 300
	DefaultKeepSessions  = 5
	DefaultOutputFile    = "extracted_data.xlsx"

	// EnvPrefix prefixes every environment variable, e.g. PDFX_OCR_DPI
	EnvPrefix = "PDFX"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned when --version is on the command line
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the extractor
type Config struct {
	// Mode selects batch run, HTTP upload server or MCP over stdio
	Mode string
	Host string
	Port int

	// Batch input and output
	InputDir   string
	OutputFile string

	// Upload service storage
	UploadDir    string
	OutputDir    string
	KeepSessions int
	MaxUpload    int64

	// Extraction
	MaxFileSize   int64
	TextThreshold int
	DPI           float64
	FallThrough   bool
	SplitLines    bool
	OCR           ocr.Config

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeRun,
		Host:          DefaultHost,
		Port:          DefaultPort,
		InputDir:      filepath.Join(currentDir, "pdfs"),
		OutputFile:    filepath.Join(currentDir, "outputs", DefaultOutputFile),
		UploadDir:     filepath.Join(currentDir, "uploads"),
		OutputDir:     filepath.Join(currentDir, "outputs"),
		KeepSessions:  DefaultKeepSessions,
		MaxUpload:     DefaultMaxUpload,
		MaxFileSize:   DefaultMaxFileSize,
		TextThreshold: DefaultTextThreshold,
		DPI:           DefaultDPI,
		OCR:           ocr.DefaultConfig(),
		Version:       "1.0.0",
		ServerName:    "pdf-data-extractor",
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFromFlags parses os.Args and the environment into a configuration
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args and the environment into a validated configuration.
// Flags take precedence over PDFX_* variables, which take precedence over
// defaults.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	fs := pflag.NewFlagSet("pdf-data-extractor", pflag.ContinueOnError)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs)

	// Check for version flag before parsing
	if err := checkVersionFlag(args); err != nil {
		return nil, err
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	populateConfigFromViper(v, cfg)

	// Expand paths if needed
	for _, p := range []*string{&cfg.InputDir, &cfg.OutputFile, &cfg.UploadDir, &cfg.OutputDir} {
		if *p == "" {
			continue
		}
		if expanded, err := filepath.Abs(*p); err == nil {
			*p = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures environment lookup and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.InputDir)
	v.SetDefault("out", cfg.OutputFile)
	v.SetDefault("upload-dir", cfg.UploadDir)
	v.SetDefault("output-dir", cfg.OutputDir)
	v.SetDefault("keep-sessions", cfg.KeepSessions)
	v.SetDefault("max-upload", cfg.MaxUpload)
	v.SetDefault("max-file-size", cfg.MaxFileSize)
	v.SetDefault("text-threshold", cfg.TextThreshold)
	v.SetDefault("fall-through", cfg.FallThrough)
	v.SetDefault("split-lines", cfg.SplitLines)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("ocr-engine", cfg.OCR.Backend)
	v.SetDefault("ocr-languages", cfg.OCR.Languages)
	v.SetDefault("ocr-psm", cfg.OCR.PSM)
	v.SetDefault("ocr-oem", cfg.OCR.OEM)
	v.SetDefault("ocr-dpi", cfg.DPI)
	v.SetDefault("ocr-contrast", cfg.OCR.Contrast)
	v.SetDefault("tessdata-dir", cfg.OCR.TessdataDir)
	v.SetDefault("tesseract-bin", cfg.OCR.Tesseract)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Mode: 'run' for a batch directory run, 'server' for the upload API, 'stdio' for MCP")
	fs.String("host", cfg.Host, "Listen host (server mode only)")
	fs.Int("port", cfg.Port, "Listen port (server mode only)")
	fs.String("dir", cfg.InputDir, "Directory of PDF files to process (run mode)")
	fs.String("out", cfg.OutputFile, "Workbook to write (run mode)")
	fs.String("upload-dir", cfg.UploadDir, "Where upload sessions are stored (server mode)")
	fs.String("output-dir", cfg.OutputDir, "Where generated workbooks are stored (server mode)")
	fs.Int("keep-sessions", cfg.KeepSessions, "Sessions and workbooks kept by cleanup")
	fs.Int64("max-upload", cfg.MaxUpload, "Maximum upload request size in bytes")
	fs.Int64("max-file-size", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.Int("text-threshold", cfg.TextThreshold, "First page characters needed to trust the text layer")
	fs.Bool("fall-through", cfg.FallThrough, "Let date/amount/name matchers try later patterns after a parse failure")
	fs.Bool("split-lines", cfg.SplitLines, "Classify each text line separately instead of the whole normalized page")
	fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("ocr-engine", cfg.OCR.Backend, "OCR backend: 'gosseract' (libtesseract) or 'cli' (tesseract binary)")
	fs.String("ocr-languages", cfg.OCR.Languages, "Tesseract languages joined with '+'")
	fs.Int("ocr-psm", cfg.OCR.PSM, "Tesseract page segmentation mode")
	fs.Int("ocr-oem", cfg.OCR.OEM, "Tesseract engine mode (cli backend)")
	fs.Float64("ocr-dpi", cfg.DPI, "Rendering resolution for scanned pages")
	fs.Float64("ocr-contrast", cfg.OCR.Contrast, "Contrast multiplier applied before OCR")
	fs.String("tessdata-dir", cfg.OCR.TessdataDir, "Tesseract language data directory")
	fs.String("tesseract-bin", cfg.OCR.Tesseract, "Tesseract binary (cli backend)")
	fs.Bool("version", false, "Print version information and exit")
}

// bindFlagsToViper binds every defined flag to the viper key of the same name
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "version" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Data Extractor - pull labeled fields out of PDFs into a spreadsheet\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=./pdfs --out=./outputs/data.xlsx   # batch run\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081                 # upload API\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --ocr-engine=cli             # MCP tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  Every flag can be set as %s_<FLAG>, dashes as underscores,\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  e.g. %s_MODE, %s_LOG_LEVEL, %s_OCR_DPI, %s_TESSDATA_DIR\n",
			EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.InputDir = v.GetString("dir")
	cfg.OutputFile = v.GetString("out")
	cfg.UploadDir = v.GetString("upload-dir")
	cfg.OutputDir = v.GetString("output-dir")
	cfg.KeepSessions = v.GetInt("keep-sessions")
	cfg.MaxUpload = v.GetInt64("max-upload")
	cfg.MaxFileSize = v.GetInt64("max-file-size")
	cfg.TextThreshold = v.GetInt("text-threshold")
	cfg.FallThrough = v.GetBool("fall-through")
	cfg.SplitLines = v.GetBool("split-lines")
	cfg.LogLevel = strings.ToLower(v.GetString("log-level"))
	cfg.DPI = v.GetFloat64("ocr-dpi")
	cfg.OCR.Backend = v.GetString("ocr-engine")
	cfg.OCR.Languages = v.GetString("ocr-languages")
	cfg.OCR.PSM = v.GetInt("ocr-psm")
	cfg.OCR.OEM = v.GetInt("ocr-oem")
	cfg.OCR.Contrast = v.GetFloat64("ocr-contrast")
	cfg.OCR.TessdataDir = v.GetString("tessdata-dir")
	cfg.OCR.Tesseract = v.GetString("tesseract-bin")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRun, ModeServer, ModeStdio:
	default:
		return errors.New("mode must be one of 'run', 'server' or 'stdio'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Mode == ModeRun {
		if c.InputDir == "" {
			return errors.New("input directory cannot be empty")
		}
		info, err := os.Stat(c.InputDir)
		if os.IsNotExist(err) {
			if err := os.MkdirAll(c.InputDir, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create input directory %s: %w", c.InputDir, err)
			}
			info, err = os.Stat(c.InputDir)
		}
		if err != nil {
			return fmt.Errorf("cannot access input directory %s: %w", c.InputDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input path is not a directory: %s", c.InputDir)
		}
		if c.OutputFile == "" {
			return errors.New("output file cannot be empty")
		}
	}

	if c.Mode == ModeServer {
		for _, dir := range []string{c.UploadDir, c.OutputDir} {
			if dir == "" {
				return errors.New("upload and output directories cannot be empty")
			}
			if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
		if c.MaxUpload <= 0 {
			return errors.New("maximum upload size must be positive")
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.KeepSessions < 0 {
		return errors.New("keep-sessions cannot be negative")
	}
	if c.TextThreshold <= 0 {
		return errors.New("text threshold must be positive")
	}
	if c.DPI <= 0 {
		return errors.New("ocr dpi must be positive")
	}
	if c.OCR.Contrast <= 0 {
		return errors.New("ocr contrast must be positive")
	}

	switch c.OCR.Backend {
	case ocr.BackendGosseract, ocr.BackendCLI:
	default:
		return fmt.Errorf("invalid OCR engine: %s (must be one of: %s, %s)", c.OCR.Backend, ocr.BackendGosseract, ocr.BackendCLI)
	}
	if len(c.OCR.LanguageList()) == 0 {
		return errors.New("at least one OCR language is required")
	}

	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	if lvl, ok := logLevels[c.LogLevel]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, InputDir: %s, OutputFile: %s, OCR: %s/%s, DPI: %g, LogLevel: %s}",
		c.Mode, c.Host, c.Port, c.InputDir, c.OutputFile, c.OCR.Backend, c.OCR.Languages, c.DPI, c.LogLevel)
}

// IsServerMode returns true when serving the upload API
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true when serving MCP over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsRunMode returns true for a one-shot batch run
func (c *Config) IsRunMode() bool {
	return c.Mode == ModeRun
}
