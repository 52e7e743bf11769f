// Package mocks はテスト用のモック実装を提供します
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/shiroemons/go-zipstring/internal/zipnames/archive"
)

// MockArchiveReader はArchiveReaderのモック実装です。
// 並列読み込みから呼ばれるため内部でロックします。
type MockArchiveReader struct {
	Listings map[string]*archive.Listing
	Errors   map[string]error
	// Wait が設定されていればコンテキストが終了するまで待つパス
	Wait map[string]bool

	mu        sync.Mutex
	callCount int
	calls     []string
}

// NewMockArchiveReader は新しいMockArchiveReaderを作成します
func NewMockArchiveReader() *MockArchiveReader {
	return &MockArchiveReader{
		Listings: make(map[string]*archive.Listing),
		Errors:   make(map[string]error),
		Wait:     make(map[string]bool),
	}
}

// Read はモック実装です
func (m *MockArchiveReader) Read(ctx context.Context, path string) (*archive.Listing, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, path)
	listing, ok := m.Listings[path]
	err := m.Errors[path]
	wait := m.Wait[path]
	m.mu.Unlock()

	if wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", archive.ErrOpenArchive, path)
	}
	return listing, nil
}

// CallCount は Read が呼ばれた回数を返します
func (m *MockArchiveReader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls は Read に渡されたパスを呼び出し順に返します
func (m *MockArchiveReader) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
