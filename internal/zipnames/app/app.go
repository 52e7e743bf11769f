// Package app はアプリケーションのメインロジックを実装します
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/shiroemons/go-zipstring/internal/zipnames/archive"
	"github.com/shiroemons/go-zipstring/internal/zipnames/config"
	"github.com/shiroemons/go-zipstring/internal/zipnames/fileutil"
	"github.com/shiroemons/go-zipstring/internal/zipnames/interfaces"
	"github.com/shiroemons/go-zipstring/pkg/zipstr"
)

// App はアプリケーションのメインロジックを管理します
type App struct {
	config *config.Config
	logger *config.DebugLogger
	reader interfaces.ArchiveReader
	fs     interfaces.FileSystem
	out    io.Writer
	errOut io.Writer
}

// Options はAppの設定オプション
type Options struct {
	Reader     interfaces.ArchiveReader
	FileSystem interfaces.FileSystem
	Logger     *config.DebugLogger
	Output     io.Writer
	ErrOutput  io.Writer
}

// Summary は実行結果の集計です
type Summary struct {
	Archives           int
	Entries            int
	ConversionFailures int
	Duplicates         int
}

// New は新しいAppを作成します
func New(cfg *config.Config) (*App, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = config.NewDebugLogger(cfg.DebugMode)
	}

	// デフォルトのReaderを設定
	reader := opts.Reader
	if reader == nil {
		flags, err := cfg.CreateFlags()
		if err != nil {
			return nil, err
		}
		routes, err := cfg.LoadRoutes()
		if err != nil {
			return nil, err
		}
		codec := zipstr.NewCodec(zipstr.Options{
			Routes: &routes,
			Logger: logger,
		})
		reader = archive.NewReader(codec, flags, logger)
	}

	// デフォルトのファイルシステムを設定
	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.ErrOutput
	if errOut == nil {
		errOut = os.Stderr
	}

	return &App{
		config: cfg,
		logger: logger,
		reader: reader,
		fs:     fs,
		out:    out,
		errOut: errOut,
	}, nil
}

// Run はアプリケーションを実行します
func (a *App) Run(ctx context.Context) (Summary, error) {
	listings, err := a.readAll(ctx)
	if err != nil {
		return Summary{}, err
	}

	flags := a.config.GetFlags()
	summary := Summary{Archives: len(listings)}
	var manifest bytes.Buffer

	for _, l := range listings {
		failures, duplicates := a.printListing(l, flags)
		summary.Entries += len(l.Entries)
		summary.ConversionFailures += failures
		summary.Duplicates += duplicates

		if a.config.ManifestPath != "" {
			if err := writeManifest(&manifest, l); err != nil {
				return summary, fmt.Errorf("%w: %w", ErrWriteManifest, err)
			}
		}
	}

	if a.config.ManifestPath != "" {
		if a.fs.FileExists(a.config.ManifestPath) {
			a.logger.Printf("既存のマニフェスト %s を上書きします\n", a.config.ManifestPath)
		}
		if err := a.fs.WriteFile(a.config.ManifestPath, manifest.Bytes(), 0644); err != nil {
			return summary, fmt.Errorf("%w: %s: %w", ErrWriteManifest, a.config.ManifestPath, err)
		}
		a.logger.Printf("マニフェストを %s に保存しました (%d バイト)\n", a.config.ManifestPath, manifest.Len())
	}

	a.logger.Printf("%d 個のアーカイブ、%d 個のエントリを処理しました (変換失敗 %d、重複 %d)\n",
		summary.Archives, summary.Entries, summary.ConversionFailures, summary.Duplicates)

	return summary, nil
}

// readAll はアーカイブを読み込み、引数の順に返します。
// --parallel 指定時は最大 Workers 個の goroutine で並列に読み込みます。
func (a *App) readAll(ctx context.Context) ([]*archive.Listing, error) {
	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	workers := 1
	if a.config.Parallel {
		workers = max(a.config.Workers, 1)
	}

	listings := make([]*archive.Listing, len(a.config.Archives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range a.config.Archives {
		i, path := i, path
		g.Go(func() error {
			a.logger.Printf("アーカイブファイル %s を読み込みます...\n", path)
			l, err := a.reader.Read(gctx, path)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrReadArchive, path, err)
			}
			listings[i] = l
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

// printListing はアーカイブ1つ分のエントリ一覧を出力し、
// 変換に失敗した数と重複したエントリ名の数を返します
func (a *App) printListing(l *archive.Listing, flags zipstr.Flags) (failures, duplicates int) {
	fmt.Fprintf(a.out, "# %s (%d エントリ)\n", l.Path, len(l.Entries))
	if l.Comment != nil {
		comment, ok := a.display(l.Path, "アーカイブコメント", l.Comment, flags)
		if !ok {
			failures++
		}
		fmt.Fprintf(a.out, "# コメント: %s\n", comment)
	}
	fmt.Fprintln(a.out, "#名前\tエンコーディング\tCRC32\t圧縮サイズ\tサイズ")

	seen := make(map[uint32][]*zipstr.String, len(l.Entries))
	for _, e := range l.Entries {
		name, ok := a.display(l.Path, "エントリ名", e.Name, flags)
		if !ok {
			failures++
		}
		fmt.Fprintf(a.out, "%s\t%s\t%08x\t%d\t%d\n",
			name, e.Name.Encoding(), e.Name.CRC32(), e.CompressedSize, e.UncompressedSize)

		if isDuplicate(seen, e.Name) {
			duplicates++
			fmt.Fprintf(a.errOut, "警告: %s: エントリ名が重複しています: %s\n", l.Path, name)
		}
	}
	fmt.Fprintln(a.out)

	return failures, duplicates
}

// display は s を表示用の文字列にします。
// 変換に失敗した場合は標準エラー出力に報告し、元のバイト列を "!" 付きで返します。
func (a *App) display(path, what string, s *zipstr.String, flags zipstr.Flags) (string, bool) {
	b, err := s.Get(flags)
	if err == nil {
		return string(b), true
	}

	fmt.Fprintf(a.errOut, "警告: %s: %sを変換できませんでした: %v\n", path, what, err)
	raw, _ := s.Get(zipstr.FlagRaw)
	return fmt.Sprintf("!%q", raw), false
}

// isDuplicate は元のバイト列が等しい名前が既に出現しているかを返し、
// 初出であれば seen に登録します
func isDuplicate(seen map[uint32][]*zipstr.String, name *zipstr.String) bool {
	crc := name.CRC32()
	for _, other := range seen[crc] {
		if zipstr.Equal(other, name) {
			return true
		}
	}
	seen[crc] = append(seen[crc], name)
	return false
}

// writeManifest はエントリ名の元のバイト列をNUL区切りで書き込みます
func writeManifest(w io.Writer, l *archive.Listing) error {
	for _, e := range l.Entries {
		if _, err := e.Name.WriteTo(w); err != nil {
			return err
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}
	return nil
}
