package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shiroemons/go-zipstring/pkg/zipstr"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    *Config
		wantErr error
	}{
		{
			name: "既定値",
			args: []string{"a.zip"},
			want: &Config{
				Archives: []string{"a.zip"},
				Encoding: "guess",
				Routes:   zipstr.PresetGBK,
				Workers:  4,
			},
		},
		{
			name: "ロングフラグ",
			args: []string{"--raw", "--strict", "--encoding", "cp437", "--routes", "sjis",
				"--manifest", "names.bin", "--parallel", "--workers", "8", "--debug", "a.zip", "b.zip"},
			want: &Config{
				Archives:     []string{"a.zip", "b.zip"},
				Raw:          true,
				Strict:       true,
				Encoding:     "cp437",
				Routes:       "sjis",
				ManifestPath: "names.bin",
				Parallel:     true,
				Workers:      8,
				DebugMode:    true,
			},
		},
		{
			name: "ショートフラグ",
			args: []string{"-rs", "-e", "utf8", "-R", "cp437", "-m", "out", "-p", "-w", "2", "-d", "a.zip"},
			want: &Config{
				Archives:     []string{"a.zip"},
				Raw:          true,
				Strict:       true,
				Encoding:     "utf8",
				Routes:       "cp437",
				ManifestPath: "out",
				Parallel:     true,
				Workers:      2,
				DebugMode:    true,
			},
		},
		{
			name: "ワーカー数が0以下",
			args: []string{"-w", "0", "a.zip"},
			want: &Config{
				Archives: []string{"a.zip"},
				Encoding: "guess",
				Routes:   zipstr.PresetGBK,
				Workers:  1,
			},
		},
		{
			name: "バージョン表示はアーカイブ不要",
			args: []string{"--version"},
			want: &Config{
				Archives:    []string{},
				Encoding:    "guess",
				Routes:      zipstr.PresetGBK,
				Workers:     4,
				ShowVersion: true,
			},
		},
		{
			name:    "アーカイブなし",
			args:    []string{},
			wantErr: ErrNoArchives,
		},
		{
			name:    "不明なフラグ",
			args:    []string{"--nope", "a.zip"},
			wantErr: ErrParseFlags,
		},
		{
			name:    "不明なエンコーディング",
			args:    []string{"-e", "ebcdic", "a.zip"},
			wantErr: ErrUnknownEncoding,
		},
		{
			name:    "ヘルプ",
			args:    []string{"--help"},
			wantErr: pflag.ErrHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := ParseFlags(tt.args, &out)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseFlags() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseFlags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFlags_UsageOnMissingArchive(t *testing.T) {
	var out bytes.Buffer
	_, _ = ParseFlags(nil, &out)
	if !strings.Contains(out.String(), "使用方法") {
		t.Errorf("usage not printed: %q", out.String())
	}
}

func TestConfig_CreateFlags(t *testing.T) {
	tests := []struct {
		encoding string
		want     zipstr.Flags
		wantErr  bool
	}{
		{"", zipstr.FlagEncGuess, false},
		{"guess", zipstr.FlagEncGuess, false},
		{"UTF-8", zipstr.FlagEncUTF8, false},
		{"utf8", zipstr.FlagEncUTF8, false},
		{"cp437", zipstr.FlagEncCP437, false},
		{"ebcdic", 0, true},
	}

	for _, tt := range tests {
		got, err := (&Config{Encoding: tt.encoding}).CreateFlags()
		if (err != nil) != tt.wantErr {
			t.Errorf("CreateFlags(%q) error = %v, wantErr %v", tt.encoding, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CreateFlags(%q) = %#x, want %#x", tt.encoding, got, tt.want)
		}
	}
}

func TestConfig_GetFlags(t *testing.T) {
	tests := []struct {
		cfg  Config
		want zipstr.Flags
	}{
		{Config{}, zipstr.FlagEncGuess},
		{Config{Raw: true}, zipstr.FlagRaw},
		{Config{Strict: true}, zipstr.FlagStrict},
		{Config{Raw: true, Strict: true}, zipstr.FlagRaw | zipstr.FlagStrict},
	}
	for _, tt := range tests {
		if got := tt.cfg.GetFlags(); got != tt.want {
			t.Errorf("GetFlags(%+v) = %#x, want %#x", tt.cfg, got, tt.want)
		}
	}
}

func TestConfig_LoadRoutes(t *testing.T) {
	// プリセット
	table, err := (&Config{Routes: "SJIS"}).LoadRoutes()
	if err != nil {
		t.Fatalf("LoadRoutes(SJIS) error = %v", err)
	}
	if r, _ := table.Lookup(zipstr.EncodingCP437); r.Name != zipstr.PresetShiftJIS {
		t.Errorf("route = %q, want %q", r.Name, zipstr.PresetShiftJIS)
	}

	// 空文字列は既定値
	table, err = (&Config{}).LoadRoutes()
	if err != nil {
		t.Fatalf("LoadRoutes(\"\") error = %v", err)
	}
	if diff := cmp.Diff(zipstr.DefaultRoutes(), table); diff != "" {
		t.Errorf("LoadRoutes(\"\") mismatch (-want +got):\n%s", diff)
	}

	// YAMLファイル
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte("routes:\n  cp437:\n    - {from: IBM437, to: UTF-8}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	table, err = (&Config{Routes: path}).LoadRoutes()
	if err != nil {
		t.Fatalf("LoadRoutes(file) error = %v", err)
	}
	if r, _ := table.Lookup(zipstr.EncodingCP437); r.Stages[0].From != "IBM437" {
		t.Errorf("route = %+v, want IBM437", r)
	}

	// 存在しないファイル
	if _, err := (&Config{Routes: filepath.Join(t.TempDir(), "none.yaml")}).LoadRoutes(); !errors.Is(err, ErrLoadRoutes) {
		t.Errorf("LoadRoutes(missing) error = %v, want ErrLoadRoutes", err)
	}
}

func TestDebugLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewDebugLoggerWithZap(zap.New(core))

	logger.Printf("アーカイブ %s を読み込みます\n", "a.zip")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if got, want := entries[0].Message, "アーカイブ a.zip を読み込みます"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Errorf("Level = %v, want debug", entries[0].Level)
	}
}

func TestNewDebugLogger_Disabled(t *testing.T) {
	logger := NewDebugLogger(false)
	logger.Printf("表示されない\n")
	if err := logger.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
