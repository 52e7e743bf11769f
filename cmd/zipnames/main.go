package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/shiroemons/go-zipstring/internal/zipnames/app"
	"github.com/shiroemons/go-zipstring/internal/zipnames/config"
)

func main() {
	os.Exit(run())
}

// run はアプリケーションを実行して終了コードを返します
func run() int {
	// コマンドライン引数の解析
	cfg, err := config.ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		return 2
	}

	// バージョン表示の処理
	config.HandleVersion(cfg.ShowVersion)

	logger := config.NewDebugLogger(cfg.DebugMode)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// アプリケーションの実行
	application, err := app.NewWithOptions(cfg, app.Options{Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		return 1
	}
	summary, err := application.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		return 1
	}
	if summary.ConversionFailures > 0 {
		return 3
	}
	return 0
}
