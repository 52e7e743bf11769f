package zipstr

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stage は変換パイプラインの1段を表します
type Stage struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Route は1つ以上の Stage を順に適用する変換経路です
type Route struct {
	Name   string
	Stages []Stage
}

// RouteTable はエンコーディングごとの変換経路です。
// Routes に該当がなければ Fallback を使います。
type RouteTable struct {
	Routes   map[Encoding]Route
	Fallback Route
}

// Lookup はエンコーディングに対応する変換経路を返します
func (t RouteTable) Lookup(enc Encoding) (Route, bool) {
	if r, ok := t.Routes[enc]; ok && len(r.Stages) > 0 {
		return r, true
	}
	if len(t.Fallback.Stages) > 0 {
		return t.Fallback, true
	}
	return Route{}, false
}

// プリセット名
const (
	PresetGBK      = "gbk"
	PresetCP437    = "cp437"
	PresetShiftJIS = "sjis"
)

// gbkRoute は GB18030 を GBK に落としてから UTF-8 にする2段の経路
var gbkRoute = Route{
	Name: PresetGBK,
	Stages: []Stage{
		{From: "GB18030", To: "GBK"},
		{From: "GB2312", To: "UTF-8"},
	},
}

// DefaultRoutes は既定の変換経路を返します。すべての変換が GB18030→GBK→UTF-8 を通ります。
func DefaultRoutes() RouteTable {
	return RouteTable{Fallback: gbkRoute}
}

// Preset はプリセット名から変換経路を返します
func Preset(name string) (RouteTable, error) {
	switch strings.ToLower(name) {
	case "", PresetGBK:
		return DefaultRoutes(), nil
	case PresetCP437:
		return RouteTable{Fallback: Route{
			Name:   PresetCP437,
			Stages: []Stage{{From: "IBM437", To: "UTF-8"}},
		}}, nil
	case PresetShiftJIS:
		return RouteTable{Fallback: Route{
			Name:   PresetShiftJIS,
			Stages: []Stage{{From: "Shift_JIS", To: "UTF-8"}},
		}}, nil
	default:
		return RouteTable{}, fmt.Errorf("%w: unknown route preset %q", ErrInvalidArgument, name)
	}
}

// PresetNames はプリセット名の一覧を返します
func PresetNames() []string {
	return []string{PresetGBK, PresetCP437, PresetShiftJIS}
}

// routeFile はYAMLファイルの構造
type routeFile struct {
	Fallback []Stage            `yaml:"fallback"`
	Routes   map[string][]Stage `yaml:"routes"`
}

// ParseRoutes はYAMLから変換経路を読み込みます。
// 文字セット名はこの時点で解決できるか検証します。
func ParseRoutes(data []byte) (RouteTable, error) {
	var f routeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RouteTable{}, fmt.Errorf("%w: parse routes: %w", ErrInvalidArgument, err)
	}

	table := RouteTable{Routes: make(map[Encoding]Route, len(f.Routes))}
	if len(f.Fallback) > 0 {
		if err := validateStages("fallback", f.Fallback); err != nil {
			return RouteTable{}, err
		}
		table.Fallback = Route{Name: "fallback", Stages: f.Fallback}
	}

	// エラーメッセージを安定させるためキー順に処理する
	keys := make([]string, 0, len(f.Routes))
	for k := range f.Routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		enc, err := ParseEncoding(key)
		if err != nil {
			return RouteTable{}, err
		}
		if enc == EncodingUnknown {
			return RouteTable{}, fmt.Errorf("%w: route for %q is not allowed", ErrInvalidArgument, key)
		}
		stages := f.Routes[key]
		if err := validateStages(key, stages); err != nil {
			return RouteTable{}, err
		}
		table.Routes[enc] = Route{Name: key, Stages: stages}
	}

	if len(table.Routes) == 0 && len(table.Fallback.Stages) == 0 {
		return RouteTable{}, fmt.Errorf("%w: no routes defined", ErrInvalidArgument)
	}
	return table, nil
}

// LoadRoutes はYAMLファイルから変換経路を読み込みます
func LoadRoutes(path string) (RouteTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RouteTable{}, fmt.Errorf("read routes %s: %w", path, err)
	}
	return ParseRoutes(data)
}

func validateStages(name string, stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("%w: route %q has no stages", ErrInvalidArgument, name)
	}
	for i, st := range stages {
		if _, err := LookupCharset(st.From); err != nil {
			return fmt.Errorf("route %q stage %d: %w", name, i+1, err)
		}
		if _, err := LookupCharset(st.To); err != nil {
			return fmt.Errorf("route %q stage %d: %w", name, i+1, err)
		}
	}
	return nil
}
