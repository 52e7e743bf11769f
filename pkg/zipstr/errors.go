package zipstr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument は引数またはフラグの組み合わせが不正な場合のエラー
	ErrInvalidArgument = errors.New("zipstr: invalid argument")

	// ErrConversion は表示用の形への変換に失敗した場合のエラー
	ErrConversion = errors.New("zipstr: conversion failed")

	// ErrUnknownCharset は文字セット名を解決できない場合のエラー
	ErrUnknownCharset = errors.New("zipstr: unknown charset")

	// ErrMalformedInput は入力が変換元の文字セットとして不正な場合のエラー
	ErrMalformedInput = errors.New("zipstr: malformed input")

	// ErrShortBuffer は出力容量が不足している場合に Transcoder が返すエラー
	ErrShortBuffer = errors.New("zipstr: output buffer too small")

	// ErrCapacityExceeded は最大容量まで拡張しても出力が収まらない場合のエラー
	ErrCapacityExceeded = errors.New("zipstr: output exceeds maximum capacity")

	// ErrNoRoute はエンコーディングに対応する変換経路がない場合のエラー
	ErrNoRoute = errors.New("zipstr: no conversion route")
)

// ConversionError は変換パイプラインのどの段で失敗したかを保持します
type ConversionError struct {
	Encoding Encoding // 変換対象のエンコーディング
	Stage    int      // 失敗した段（1始まり、経路解決の失敗は0）
	From     string   // 変換元の文字セット
	To       string   // 変換先の文字セット
	Err      error    // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ConversionError) Error() string {
	if e.Stage == 0 {
		return fmt.Sprintf("zipstr: convert %s: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("zipstr: convert %s stage %d (%s -> %s): %v", e.Encoding, e.Stage, e.From, e.To, e.Err)
}

// Unwrap は ErrConversion と元のエラーを返します
func (e *ConversionError) Unwrap() []error {
	return []error{ErrConversion, e.Err}
}
