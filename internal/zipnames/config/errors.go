package config

import "errors"

var (
	// ErrParseFlags はコマンドライン引数の解析に失敗した場合のエラー
	ErrParseFlags = errors.New("コマンドライン引数の解析に失敗しました")

	// ErrNoArchives はアーカイブファイルが指定されていない場合のエラー
	ErrNoArchives = errors.New("アーカイブファイルが指定されていません")

	// ErrUnknownEncoding は --encoding に不明な値が指定された場合のエラー
	ErrUnknownEncoding = errors.New("不明なエンコーディングです")

	// ErrLoadRoutes は変換経路の読み込みに失敗した場合のエラー
	ErrLoadRoutes = errors.New("変換経路の読み込みに失敗しました")
)
