package zipstr

import (
	"fmt"
	"strings"
)

// Encoding は生バイト列に対して判定されたエンコーディングを表します
type Encoding int

const (
	// EncodingUnknown はまだ判定されていない状態
	EncodingUnknown Encoding = iota
	// EncodingASCII は印字可能なASCII文字と \r \n \t のみ
	EncodingASCII
	// EncodingUTF8Guessed はUTF-8として妥当だが宣言はされていない
	EncodingUTF8Guessed
	// EncodingUTF8Known はUTF-8であることが宣言されている
	EncodingUTF8Known
	// EncodingCP437 はレガシーエンコーディング（変換が必要）
	EncodingCP437
	// EncodingError は要求されたエンコーディングと内容が矛盾している
	EncodingError
)

// String はエンコーディング名を返します
func (e Encoding) String() string {
	switch e {
	case EncodingUnknown:
		return "unknown"
	case EncodingASCII:
		return "ascii"
	case EncodingUTF8Guessed:
		return "utf8-guessed"
	case EncodingUTF8Known:
		return "utf8"
	case EncodingCP437:
		return "cp437"
	case EncodingError:
		return "error"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// ParseEncoding はエンコーディング名から Encoding を返します
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "unknown":
		return EncodingUnknown, nil
	case "ascii":
		return EncodingASCII, nil
	case "utf8-guessed", "utf-8-guessed":
		return EncodingUTF8Guessed, nil
	case "utf8", "utf-8":
		return EncodingUTF8Known, nil
	case "cp437", "legacy":
		return EncodingCP437, nil
	case "error":
		return EncodingError, nil
	default:
		return EncodingUnknown, fmt.Errorf("%w: unknown encoding %q", ErrInvalidArgument, name)
	}
}

// Flags は生成時と取得時の動作を選択するフラグです。
// 値は libzip の ZIP_FL_ENC_* と同じビット配置です。
type Flags uint32

const (
	// FlagEncGuess はエンコーディングを遅延判定します（既定値）
	FlagEncGuess Flags = 0
	// FlagRaw は判定も変換も行わずに生バイト列を返します
	FlagRaw Flags = 1 << 6
	// FlagStrict はASCII/UTF-8以外をすべて変換対象にします
	FlagStrict Flags = 1 << 7
	// FlagEncUTF8 はUTF-8であることを宣言します
	FlagEncUTF8 Flags = 1 << 11
	// FlagEncCP437 はレガシーエンコーディングであることを宣言します
	FlagEncCP437 Flags = 1 << 12

	flagEncodingAll = FlagEncGuess | FlagEncUTF8 | FlagEncCP437
)

// expectedEncoding は生成フラグから期待するエンコーディングを取り出します
func (f Flags) expectedEncoding() (Encoding, error) {
	switch f & flagEncodingAll {
	case FlagEncGuess:
		return EncodingUnknown, nil
	case FlagEncUTF8:
		return EncodingUTF8Known, nil
	case FlagEncCP437:
		return EncodingCP437, nil
	default:
		return EncodingUnknown, fmt.Errorf("%w: conflicting encoding flags %#x", ErrInvalidArgument, uint32(f&flagEncodingAll))
	}
}

// needsConversion は取得時に変換済みの形を返すべきかを判定します。
// 判定できなかった（EncodingUnknown の）値は変換しません。
func needsConversion(enc Encoding, flags Flags) bool {
	if enc == EncodingUnknown {
		return false
	}
	if flags&FlagStrict != 0 && enc != EncodingASCII && enc != EncodingUTF8Known {
		return true
	}
	return enc == EncodingCP437
}
