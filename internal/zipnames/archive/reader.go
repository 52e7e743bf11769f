// Package archive はZIPアーカイブのセントラルディレクトリを読み込み、
// エントリ名とコメントを zipstr.String として提供します
package archive

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/shiroemons/go-zipstring/internal/zipnames/config"
	"github.com/shiroemons/go-zipstring/pkg/zipstr"
)

const (
	// flagUTF8 は汎用目的ビットフラグのビット11（名前とコメントがUTF-8）
	flagUTF8 = 0x800

	// Info-ZIP の Unicode Path / Unicode Comment 拡張フィールド
	extraUnicodePath    = 0x7075
	extraUnicodeComment = 0x6375
)

// Entry はアーカイブ内のエントリを表します
type Entry struct {
	Name             *zipstr.String
	Comment          *zipstr.String
	Method           uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	UTF8Flag         bool // ビット11が立っている
	UnicodeName      bool // 拡張フィールドの名前を採用した
}

// Listing はアーカイブ1つ分の読み込み結果です
type Listing struct {
	Path    string
	Comment *zipstr.String
	Entries []Entry
}

// Reader はZIPアーカイブからエントリ一覧を読み込みます
type Reader struct {
	codec  *zipstr.Codec
	flags  zipstr.Flags
	logger *config.DebugLogger
}

// NewReader は新しいReaderを作成します。
// flags はビット11が立っていない名前とコメントの生成に使います。
func NewReader(codec *zipstr.Codec, flags zipstr.Flags, logger *config.DebugLogger) *Reader {
	if codec == nil {
		codec = zipstr.Default()
	}
	if logger == nil {
		logger = config.NewDebugLogger(false)
	}
	return &Reader{
		codec:  codec,
		flags:  flags,
		logger: logger,
	}
}

// Read はアーカイブファイルを開いてエントリ一覧を返します
func (r *Reader) Read(ctx context.Context, path string) (*Listing, error) {
	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenArchive, path, err)
	}
	defer zr.Close()

	return r.list(ctx, path, &zr.Reader)
}

// ReadFrom は io.ReaderAt からエントリ一覧を読み込みます
func (r *Reader) ReadFrom(ctx context.Context, name string, ra io.ReaderAt, size int64) (*Listing, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenArchive, name, err)
	}
	return r.list(ctx, name, zr)
}

func (r *Reader) list(ctx context.Context, path string, zr *zip.Reader) (*Listing, error) {
	r.logger.Printf("アーカイブ %s: %d 個のエントリ\n", path, len(zr.File))

	comment, err := r.newString([]byte(zr.Comment), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: archive comment: %w", ErrReadEntry, path, err)
	}

	listing := &Listing{
		Path:    path,
		Comment: comment,
		Entries: make([]Entry, 0, len(zr.File)),
	}

	for i, f := range zr.File {
		// コンテキストのキャンセルチェック
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entry, err := r.entry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: entry %d: %w", ErrReadEntry, path, i, err)
		}
		listing.Entries = append(listing.Entries, entry)
	}

	return listing, nil
}

// entry はZIPのファイルヘッダーから Entry を作成します
func (r *Reader) entry(f *zip.File) (Entry, error) {
	utf8Flag := f.Flags&flagUTF8 != 0

	name, err := r.newString([]byte(f.Name), utf8Flag)
	if err != nil {
		return Entry{}, fmt.Errorf("name: %w", err)
	}
	comment, err := r.newString([]byte(f.Comment), utf8Flag)
	if err != nil {
		return Entry{}, fmt.Errorf("comment: %w", err)
	}

	entry := Entry{
		Name:             name,
		Comment:          comment,
		Method:           f.Method,
		CRC32:            f.CRC32,
		CompressedSize:   f.CompressedSize64,
		UncompressedSize: f.UncompressedSize64,
		UTF8Flag:         utf8Flag,
	}

	// ビット11が立っていない場合は Info-ZIP の拡張フィールドを確認する
	if !utf8Flag {
		if s := r.unicodeExtra(f.Extra, extraUnicodePath, name); s != nil {
			entry.Name = s
			entry.UnicodeName = true
		}
		if s := r.unicodeExtra(f.Extra, extraUnicodeComment, comment); s != nil {
			entry.Comment = s
		}
	}

	return entry, nil
}

// newString は zipstr.String を作成します。
// 宣言したエンコーディングと内容が矛盾する場合は推測に切り替えます。
func (r *Reader) newString(raw []byte, utf8Flag bool) (*zipstr.String, error) {
	flags := r.flags
	if utf8Flag {
		flags = zipstr.FlagEncUTF8
	}

	s, err := r.codec.New(raw, flags)
	if err != nil && flags != zipstr.FlagEncGuess && errors.Is(err, zipstr.ErrInvalidArgument) {
		r.logger.Printf("宣言されたエンコーディングと内容が一致しないため推測に切り替えます: %q: %v\n", raw, err)
		return r.codec.New(raw, zipstr.FlagEncGuess)
	}
	return s, err
}

// unicodeExtra は拡張フィールドからUTF-8の値を取り出します。
// バージョンが1で、記録されたCRC-32が元の値と一致する場合のみ採用します。
func (r *Reader) unicodeExtra(extra []byte, id uint16, original *zipstr.String) *zipstr.String {
	data, ok := findExtra(extra, id)
	if !ok {
		return nil
	}
	if len(data) < 5 || data[0] != 1 {
		r.logger.Printf("拡張フィールド %#04x の形式が不正です\n", id)
		return nil
	}

	if crc := binary.LittleEndian.Uint32(data[1:5]); crc != original.CRC32() {
		r.logger.Printf("拡張フィールド %#04x のCRCが一致しません (%#08x != %#08x)\n", id, crc, original.CRC32())
		return nil
	}

	s, err := r.codec.New(data[5:], zipstr.FlagEncUTF8)
	if err != nil {
		r.logger.Printf("拡張フィールド %#04x の値がUTF-8ではありません: %v\n", id, err)
		return nil
	}
	return s
}

// findExtra は拡張フィールド列から id のデータを探します
func findExtra(extra []byte, id uint16) ([]byte, bool) {
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra[0:2])
		size := int(binary.LittleEndian.Uint16(extra[2:4]))
		extra = extra[4:]
		if size > len(extra) {
			return nil, false
		}
		if tag == id {
			return extra[:size], true
		}
		extra = extra[size:]
	}
	return nil, false
}
