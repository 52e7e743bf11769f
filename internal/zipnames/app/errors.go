package app

import "errors"

var (
	// ErrReadArchive はアーカイブの読み込みに失敗した場合のエラー
	ErrReadArchive = errors.New("アーカイブの読み込みに失敗しました")

	// ErrWriteManifest はマニフェストの書き込みに失敗した場合のエラー
	ErrWriteManifest = errors.New("マニフェストの書き込みに失敗しました")
)
