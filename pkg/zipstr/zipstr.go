// Package zipstr はZIPアーカイブのエントリ名やコメントのように、
// 読み込み時点でエンコーディングが確実には分からないバイト列を扱うためのパッケージです。
//
// String は元のバイト列をそのまま保持し、表示用のUTF-8表現は必要になった時点で
// 一度だけ変換してキャッシュします。エンコーディングの判定も同様に遅延されます。
//
// 基本的な使い方:
//
//	s, err := zipstr.New(rawName, zipstr.FlagEncGuess)
//	if err != nil {
//	    return err
//	}
//	name, err := s.Get(zipstr.FlagStrict)
//	if err != nil {
//	    // 変換できないレガシーエンコーディングの名前
//	    name, _ = s.Get(zipstr.FlagRaw)
//	}
//
// 空のバイト列は nil の *String で表します。nil に対するすべてのメソッドは
// 空の値として振る舞います。
package zipstr

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"sync"
)

// MaxLength は String が保持できる最大バイト数
const MaxLength = math.MaxUint16

// empty は nil の String に対して返す共有の空バッファ
var empty = []byte{}

// String はエンコーディング情報付きのバイト列です
type String struct {
	raw   []byte
	codec *Codec

	// mu は encoding と converted の判定・設定を直列化します
	mu         sync.Mutex
	encoding   Encoding
	classified bool // 判定済み。判定器が EncodingUnknown を返しても再判定しない
	converted  []byte
}

// New は既定のCodecで String を作成します
func New(raw []byte, flags Flags) (*String, error) {
	return defaultCodec.New(raw, flags)
}

// New は raw のコピーを保持する String を作成します。
//
// raw が空の場合は nil, nil を返します。
// flags の FlagEncUTF8 または FlagEncCP437 でエンコーディングを宣言した場合は
// その場で判定を行い、内容と矛盾すれば ErrInvalidArgument を返します。
func (c *Codec) New(raw []byte, flags Flags) (*String, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) > MaxLength {
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrInvalidArgument, len(raw), MaxLength)
	}

	expected, err := flags.expectedEncoding()
	if err != nil {
		return nil, err
	}

	s := &String{
		raw:   bytes.Clone(raw),
		codec: c,
	}

	if expected != EncodingUnknown {
		enc := c.classifier.Classify(s.raw, expected)
		if enc == EncodingError {
			return nil, fmt.Errorf("%w: content does not match declared encoding %s", ErrInvalidArgument, expected)
		}
		s.encoding = enc
		s.classified = true
	}

	return s, nil
}

// Len はバイト数を返します
func (s *String) Len() uint16 {
	if s == nil {
		return 0
	}
	return uint16(len(s.raw))
}

// Encoding は現在記録されているエンコーディングを返します。判定は行いません。
func (s *String) Encoding() Encoding {
	if s == nil {
		return EncodingUnknown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoding
}

// Get は flags に従ってバイト列を返します。
//
// FlagRaw が指定されていれば元のバイト列をそのまま返します。
// それ以外ではエンコーディングが未判定なら判定し、
// レガシーエンコーディング、または FlagStrict 指定時のASCII/UTF-8以外の場合は
// UTF-8へ変換した結果を返します。変換結果は一度だけ計算されて再利用されます。
//
// 返されるスライスは String が所有しているため、呼び出し側で変更してはいけません。
func (s *String) Get(flags Flags) ([]byte, error) {
	if s == nil {
		return empty, nil
	}
	if flags&FlagRaw != 0 {
		return s.rawBytes(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.classified {
		s.encoding = s.codec.classifier.Classify(s.raw, EncodingUnknown)
		s.classified = true
	}

	if !needsConversion(s.encoding, flags) {
		return s.rawBytes(), nil
	}

	if s.converted == nil {
		out, err := s.codec.convert(s.raw, s.encoding)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = empty
		}
		s.converted = out
	}
	return s.converted[:len(s.converted):len(s.converted)], nil
}

// rawBytes は追記で元の配列を書き換えられないよう容量を切り詰めたスライスを返します
func (s *String) rawBytes() []byte {
	return s.raw[:len(s.raw):len(s.raw)]
}

// CRC32 は元のバイト列のCRC-32 (IEEE) を返します。nil の場合は空のバイト列のCRCです。
func (s *String) CRC32() uint32 {
	if s == nil {
		return crc32.ChecksumIEEE(nil)
	}
	return crc32.ChecksumIEEE(s.raw)
}

// WriteTo は元のバイト列を w に書き込みます。変換後の形は書き込みません。
func (s *String) WriteTo(w io.Writer) (int64, error) {
	if s == nil {
		return 0, nil
	}
	n, err := w.Write(s.raw)
	return int64(n), err
}

// Equal は2つの String の元のバイト列が等しいかを返します。
// エンコーディングは比較しません。
func Equal(a, b *String) bool {
	if a == nil || b == nil {
		return a == b
	}
	return bytes.Equal(a.raw, b.raw)
}
