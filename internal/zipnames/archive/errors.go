package archive

import "errors"

var (
	// ErrOpenArchive はアーカイブを開けない場合のエラー
	ErrOpenArchive = errors.New("アーカイブを開けませんでした")

	// ErrReadEntry はエントリの読み込みに失敗した場合のエラー
	ErrReadEntry = errors.New("エントリの読み込みに失敗しました")
)
