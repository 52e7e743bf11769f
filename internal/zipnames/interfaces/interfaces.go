// Package interfaces はzipnamesコマンドで使用するインターフェースを定義します
package interfaces

import (
	"context"

	"github.com/shiroemons/go-zipstring/internal/zipnames/archive"
)

// ArchiveReader はZIPアーカイブからエントリ一覧を読み込むインターフェースです
type ArchiveReader interface {
	Read(ctx context.Context, path string) (*archive.Listing, error)
}

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	FileExists(filename string) bool
	WriteFile(filename string, data []byte, perm uint32) error
}
