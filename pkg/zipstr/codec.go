package zipstr

import (
	"errors"
	"fmt"
)

const (
	// DefaultInitialCapacity は1回目の変換で確保する出力バッファの大きさ
	DefaultInitialCapacity = 1024

	// DefaultMaxCapacity は出力バッファを拡張できる上限
	DefaultMaxCapacity = 1 << 20
)

// Logger はログ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Options はCodecの設定オプション
type Options struct {
	Classifier      Classifier
	Transcoder      Transcoder
	Routes          *RouteTable
	InitialCapacity int
	MaxCapacity     int
	Logger          Logger
}

// Codec は String の生成と変換に使う判定器・変換器・変換経路をまとめたものです。
// Codec 自体は状態を持たないため、複数の goroutine から共有できます。
type Codec struct {
	classifier      Classifier
	transcoder      Transcoder
	routes          RouteTable
	initialCapacity int
	maxCapacity     int
	logger          Logger
}

// NewCodec は新しいCodecを作成します。未指定の項目には既定値が入ります。
func NewCodec(opts Options) *Codec {
	c := &Codec{
		classifier:      opts.Classifier,
		transcoder:      opts.Transcoder,
		initialCapacity: opts.InitialCapacity,
		maxCapacity:     opts.MaxCapacity,
		logger:          opts.Logger,
	}
	if c.classifier == nil {
		c.classifier = Guesser{}
	}
	if c.transcoder == nil {
		c.transcoder = NewCharsetTranscoder()
	}
	if opts.Routes != nil {
		c.routes = *opts.Routes
	} else {
		c.routes = DefaultRoutes()
	}
	if c.initialCapacity <= 0 {
		c.initialCapacity = DefaultInitialCapacity
	}
	if c.maxCapacity <= 0 {
		c.maxCapacity = DefaultMaxCapacity
	}
	if c.maxCapacity < c.initialCapacity {
		c.maxCapacity = c.initialCapacity
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}
	return c
}

var defaultCodec = NewCodec(Options{})

// Default は既定の設定のCodecを返します
func Default() *Codec {
	return defaultCodec
}

// convert は raw を変換経路に従ってUTF-8へ変換します。
// 途中の段で失敗した場合は中間結果を捨てて ConversionError を返します。
func (c *Codec) convert(raw []byte, enc Encoding) ([]byte, error) {
	route, ok := c.routes.Lookup(enc)
	if !ok {
		return nil, &ConversionError{Encoding: enc, Err: ErrNoRoute}
	}

	buf := raw
	for i, st := range route.Stages {
		out, err := c.transcode(st, buf)
		if err != nil {
			c.logger.Printf("変換に失敗しました: %s stage %d (%s -> %s): %v\n", enc, i+1, st.From, st.To, err)
			return nil, &ConversionError{Encoding: enc, Stage: i + 1, From: st.From, To: st.To, Err: err}
		}
		buf = out
	}
	return buf, nil
}

// transcode は1段分の変換を行います。
// 出力容量が足りなければ容量を倍にして最大容量まで再試行します。
func (c *Codec) transcode(st Stage, src []byte) ([]byte, error) {
	capacity := c.initialCapacity
	for {
		out, err := c.transcoder.Transcode(st.From, st.To, src, capacity)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrShortBuffer) {
			return nil, err
		}
		if capacity >= c.maxCapacity {
			return nil, fmt.Errorf("%w: %d bytes", ErrCapacityExceeded, c.maxCapacity)
		}
		capacity = min(capacity*2, c.maxCapacity)
		c.logger.Printf("出力バッファを %d バイトに拡張します (%s -> %s)\n", capacity, st.From, st.To)
	}
}
