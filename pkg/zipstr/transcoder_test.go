package zipstr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

func TestLookupCharset(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"GB18030", false},
		{"gbk", false},
		{"GB2312", false},
		{"UTF-8", false},
		{"utf8", false},
		{"Shift_JIS", false},
		{"IBM437", false},
		{" gb18030 ", false},
		{"", true},
		{"no-such-charset", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := LookupCharset(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCharset) {
					t.Errorf("LookupCharset(%q) error = %v, want ErrUnknownCharset", tt.name, err)
				}
				return
			}
			if err != nil || enc == nil {
				t.Errorf("LookupCharset(%q) = %v, %v", tt.name, enc, err)
			}
		})
	}
}

func TestCharsetTranscoder_Transcode(t *testing.T) {
	tr := NewCharsetTranscoder()

	gbk := mustGBK(t, "中文目录/文件.txt")
	out, err := tr.Transcode("GB18030", "GBK", gbk, 1024)
	if err != nil {
		t.Fatalf("GB18030 -> GBK error = %v", err)
	}
	if diff := cmp.Diff(gbk, out); diff != "" {
		t.Errorf("GB18030 -> GBK mismatch (-want +got):\n%s", diff)
	}

	out, err = tr.Transcode("GB2312", "UTF-8", out, 1024)
	if err != nil {
		t.Fatalf("GB2312 -> UTF-8 error = %v", err)
	}
	if string(out) != "中文目录/文件.txt" {
		t.Errorf("GB2312 -> UTF-8 = %q, want %q", out, "中文目录/文件.txt")
	}
}

func TestCharsetTranscoder_Errors(t *testing.T) {
	tr := NewCharsetTranscoder()

	tests := []struct {
		name     string
		from, to string
		src      []byte
		capacity int
		want     error
	}{
		{"変換元が不明", "nope", "UTF-8", []byte("a"), 16, ErrUnknownCharset},
		{"変換先が不明", "GBK", "nope", []byte("a"), 16, ErrUnknownCharset},
		{"不正なバイト列", "GB18030", "GBK", []byte{0x81, 0x20}, 16, ErrMalformedInput},
		{"変換先で表現できない", "UTF-8", "GBK", []byte("🙂"), 16, ErrMalformedInput},
		{"容量不足", "GBK", "UTF-8", mustGBK(t, strings.Repeat("中", 10)), 16, ErrShortBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Transcode(tt.from, tt.to, tt.src, tt.capacity)
			if !errors.Is(err, tt.want) {
				t.Errorf("Transcode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCharsetTranscoder_EncodedReplacementCharacter(t *testing.T) {
	tr := NewCharsetTranscoder()

	// GB18030 は U+FFFD 自体を 84 31 A4 37 として表現できる
	out, err := tr.Transcode("GB18030", "UTF-8", []byte{0x84, 0x31, 0xa4, 0x37, 'a'}, 16)
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if string(out) != "\uFFFDa" {
		t.Errorf("Transcode() = %q, want %q", out, "\uFFFDa")
	}

	// 不正なバイトが置き換えられた U+FFFD は受け付けない
	if _, err := tr.Transcode("GB18030", "UTF-8", []byte{0x84, 0x31, 0xa4, 0x37, 0x81, 0x20}, 16); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Transcode() error = %v, want ErrMalformedInput", err)
	}
}

func TestCharsetTranscoder_ExactCapacity(t *testing.T) {
	tr := NewCharsetTranscoder()
	src := mustGBK(t, "中文")

	out, err := tr.Transcode("GBK", "UTF-8", src, len("中文"))
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if string(out) != "中文" || cap(out) != len(out) {
		t.Errorf("Transcode() = %q (cap %d), want %q", out, cap(out), "中文")
	}
}

func TestDefaultCodec_LongValueNeedsLargerBuffer(t *testing.T) {
	// UTF-8にすると1024バイトを超える名前
	name := strings.Repeat("漢字", 300)
	s, err := New(mustGBK(t, name), FlagEncGuess)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(FlagEncGuess)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != name {
		t.Errorf("Get() = %d bytes, want %d bytes", len(got), len(name))
	}
	if s.Encoding() != EncodingCP437 {
		t.Errorf("Encoding() = %v, want cp437", s.Encoding())
	}
}

func TestPresetRoutes_EndToEnd(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("東方紅魔郷.txt"))
	if err != nil {
		t.Fatal(err)
	}
	cp437, err := charmap.CodePage437.NewEncoder().Bytes([]byte("ÄÖÜ.TXT"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		preset string
		raw    []byte
		want   string
	}{
		{PresetGBK, mustGBK(t, "压缩文件.txt"), "压缩文件.txt"},
		{PresetShiftJIS, sjis, "東方紅魔郷.txt"},
		{PresetCP437, cp437, "ÄÖÜ.TXT"},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			routes, err := Preset(tt.preset)
			if err != nil {
				t.Fatal(err)
			}
			codec := NewCodec(Options{Routes: &routes})
			s := mustNew(t, codec, tt.raw, FlagEncCP437)

			got, err := s.Get(FlagStrict)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Get() = %q, want %q", got, tt.want)
			}
		})
	}
}
