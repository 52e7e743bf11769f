package zipstr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Transcoder はバイト列をある文字セットから別の文字セットへ変換します。
//
// 出力は capacity バイト以内に収める必要があり、収まらない場合は
// ErrShortBuffer を（ラップして）返します。呼び出し側は容量を増やして再試行します。
type Transcoder interface {
	Transcode(from, to string, src []byte, capacity int) ([]byte, error)
}

// CharsetTranscoder は golang.org/x/text を使った Transcoder の実装です。
// 文字セット名は WHATWG のラベル（htmlindex）、次に IANA の登録名（ianaindex）で解決します。
type CharsetTranscoder struct{}

// NewCharsetTranscoder は新しいCharsetTranscoderを作成します
func NewCharsetTranscoder() *CharsetTranscoder {
	return &CharsetTranscoder{}
}

// Transcode は src を from から to へ変換します。
// from のデコードでUTF-8へ、続けて to のエンコードで目的の文字セットへ変換します。
func (t *CharsetTranscoder) Transcode(from, to string, src []byte, capacity int) ([]byte, error) {
	srcEnc, err := LookupCharset(from)
	if err != nil {
		return nil, err
	}
	dstEnc, err := LookupCharset(to)
	if err != nil {
		return nil, err
	}

	// 1. 変換元をUTF-8へデコード
	decoded, err := transformInto(srcEnc.NewDecoder(), src, capacity)
	if err != nil {
		return nil, err
	}
	// デコーダは不正なバイトを U+FFFD に置き換える。
	// U+FFFD を含む場合は元の文字セットへ戻して一致するかで正規の U+FFFD かを確かめる
	if bytes.ContainsRune(decoded, utf8.RuneError) && !roundTrips(srcEnc, decoded, src) {
		return nil, fmt.Errorf("%w: invalid %s sequence", ErrMalformedInput, from)
	}

	// 2. UTF-8から変換先へエンコード
	return transformInto(dstEnc.NewEncoder(), decoded, capacity)
}

// roundTrips は decoded を enc で再エンコードした結果が src と一致するかを返します
func roundTrips(enc encoding.Encoding, decoded, src []byte) bool {
	reencoded, err := enc.NewEncoder().Bytes(decoded)
	return err == nil && bytes.Equal(reencoded, src)
}

// transformInto は固定容量のバッファへ一度だけ変換を行います
func transformInto(tr transform.Transformer, src []byte, capacity int) ([]byte, error) {
	dst := make([]byte, capacity)
	nDst, nSrc, err := tr.Transform(dst, src, true)
	if err != nil {
		if errors.Is(err, transform.ErrShortDst) {
			return nil, fmt.Errorf("%w: capacity %d", ErrShortBuffer, capacity)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if nSrc != len(src) {
		return nil, fmt.Errorf("%w: consumed %d of %d bytes", ErrMalformedInput, nSrc, len(src))
	}
	return dst[:nDst:nDst], nil
}

// LookupCharset は文字セット名から encoding.Encoding を解決します
func LookupCharset(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownCharset)
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}
