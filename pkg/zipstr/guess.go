package zipstr

import "unicode/utf8"

// Classifier は生バイト列のエンコーディングを判定します。
// expected には期待するエンコーディング（なければ EncodingUnknown）を渡します。
type Classifier interface {
	Classify(raw []byte, expected Encoding) Encoding
}

// ClassifierFunc は関数を Classifier として扱うためのアダプタです
type ClassifierFunc func(raw []byte, expected Encoding) Encoding

// Classify は f(raw, expected) を呼び出します
func (f ClassifierFunc) Classify(raw []byte, expected Encoding) Encoding {
	return f(raw, expected)
}

// Guesser は既定の Classifier です
type Guesser struct{}

// Classify はバイト列を走査してエンコーディングを推測します。
//
// 印字可能なASCIIと \r \n \t だけなら EncodingASCII、
// それ以外の制御文字を含むか、UTF-8として不正なら EncodingCP437、
// UTF-8として妥当なら EncodingUTF8Guessed になります。
// expected が指定されていて結果と食い違う場合（ASCIIを除く）は EncodingError を返します。
func (Guesser) Classify(raw []byte, expected Encoding) Encoding {
	enc := EncodingASCII
	for _, c := range raw {
		if (c > 31 && c < utf8.RuneSelf) || c == '\r' || c == '\n' || c == '\t' {
			continue
		}
		if c < utf8.RuneSelf {
			enc = EncodingCP437
			break
		}
		enc = EncodingUTF8Guessed
	}
	if enc == EncodingUTF8Guessed && !utf8.Valid(raw) {
		enc = EncodingCP437
	}

	if expected == EncodingUnknown {
		return enc
	}
	if expected == EncodingUTF8Known && enc == EncodingUTF8Guessed {
		enc = EncodingUTF8Known
	}
	if expected != enc && enc != EncodingASCII {
		return EncodingError
	}
	return enc
}
