// Package config はzipnamesコマンドの設定管理を行います
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shiroemons/go-zipstring/pkg/zipstr"
)

const Version = "0.1.0"

// Config はアプリケーションの設定を保持します
type Config struct {
	Archives     []string
	Raw          bool
	Strict       bool
	Encoding     string
	Routes       string
	ManifestPath string
	Parallel     bool
	Workers      int
	DebugMode    bool
	ShowVersion  bool
}

// ParseFlags はコマンドライン引数を解析して設定を返します
func ParseFlags(args []string, output io.Writer) (*Config, error) {
	config := &Config{}

	flagSet := pflag.NewFlagSet("zipnames", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintln(output, "使用方法: zipnames [オプション] <アーカイブファイル>...")
		fmt.Fprintln(output, "オプション:")
		flagSet.PrintDefaults()
	}

	// 取得フラグ
	flagSet.BoolVarP(&config.Raw, "raw", "r", false, "print raw entry names without conversion")
	flagSet.BoolVarP(&config.Strict, "strict", "s", false, "convert every name that is not ASCII or declared UTF-8")

	// 生成フラグ
	flagSet.StringVarP(&config.Encoding, "encoding", "e", "guess", "encoding of entry names without the UTF-8 flag (guess, utf8, cp437)")

	// 変換経路
	flagSet.StringVarP(&config.Routes, "routes", "R", zipstr.PresetGBK,
		fmt.Sprintf("conversion route preset (%s) or path to a YAML route file", strings.Join(zipstr.PresetNames(), ", ")))

	// マニフェスト
	flagSet.StringVarP(&config.ManifestPath, "manifest", "m", "", "write raw entry names (NUL terminated) to this file")

	// 並列処理
	flagSet.BoolVarP(&config.Parallel, "parallel", "p", false, "read archives in parallel")
	flagSet.IntVarP(&config.Workers, "workers", "w", 4, "number of workers for parallel reading")

	// デバッグモード
	flagSet.BoolVarP(&config.DebugMode, "debug", "d", false, "enable debug output")

	// バージョン表示
	flagSet.BoolVarP(&config.ShowVersion, "version", "v", false, "show version information")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrParseFlags, err)
	}
	config.Archives = flagSet.Args()

	if config.ShowVersion {
		return config, nil
	}
	if len(config.Archives) == 0 {
		flagSet.Usage()
		return nil, ErrNoArchives
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if _, err := config.CreateFlags(); err != nil {
		return nil, err
	}

	return config, nil
}

// CreateFlags は UTF-8 フラグのないエントリ名の生成に使うフラグを返します
func (c *Config) CreateFlags() (zipstr.Flags, error) {
	switch strings.ToLower(c.Encoding) {
	case "", "guess":
		return zipstr.FlagEncGuess, nil
	case "utf8", "utf-8":
		return zipstr.FlagEncUTF8, nil
	case "cp437", "legacy":
		return zipstr.FlagEncCP437, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownEncoding, c.Encoding)
	}
}

// GetFlags はエントリ名の取得に使うフラグを返します
func (c *Config) GetFlags() zipstr.Flags {
	var flags zipstr.Flags
	if c.Raw {
		flags |= zipstr.FlagRaw
	}
	if c.Strict {
		flags |= zipstr.FlagStrict
	}
	return flags
}

// LoadRoutes はプリセット名またはYAMLファイルから変換経路を読み込みます
func (c *Config) LoadRoutes() (zipstr.RouteTable, error) {
	for _, name := range zipstr.PresetNames() {
		if strings.EqualFold(c.Routes, name) {
			return zipstr.Preset(name)
		}
	}
	if c.Routes == "" {
		return zipstr.DefaultRoutes(), nil
	}
	table, err := zipstr.LoadRoutes(c.Routes)
	if err != nil {
		return zipstr.RouteTable{}, fmt.Errorf("%w: %w", ErrLoadRoutes, err)
	}
	return table, nil
}

// HandleVersion はバージョン表示を処理します
func HandleVersion(showVersion bool) {
	if showVersion {
		fmt.Printf("zipnames version %s\n", Version)
		os.Exit(0)
	}
}

// DebugLogger はデバッグ出力を管理します
type DebugLogger struct {
	sugar *zap.SugaredLogger
}

// NewDebugLogger は新しいDebugLoggerを作成します。無効な場合は何も出力しません。
func NewDebugLogger(enabled bool) *DebugLogger {
	if !enabled {
		return NewDebugLoggerWithZap(zap.NewNop())
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ロガーの初期化に失敗しました: %v\n", err)
		logger = zap.NewNop()
	}
	return NewDebugLoggerWithZap(logger)
}

// NewDebugLoggerWithZap は既存のzapロガーを使うDebugLoggerを作成します
func NewDebugLoggerWithZap(logger *zap.Logger) *DebugLogger {
	return &DebugLogger{sugar: logger.Sugar()}
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	d.sugar.Debugf(strings.TrimSuffix(format, "\n"), a...)
}

// Sync はバッファされたログを書き出します
func (d *DebugLogger) Sync() error {
	return d.sugar.Sync()
}
