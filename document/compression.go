// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package document

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/tochemey/arbor/tree"
)

var (
	// ErrCompressFailed wraps the failures of the underlying compressor
	ErrCompressFailed = errors.New("document: failed to compress")
	// ErrDecompressFailed wraps the failures of the underlying decompressor
	ErrDecompressFailed = errors.New("document: failed to decompress")
)

// Compression shrinks encoded documents.
// Implementations are safe for concurrent use.
type Compression interface {
	// Name identifies the algorithm, as an HTTP content coding
	Name() string
	// Compress returns the compressed form of data
	Compress(data []byte) ([]byte, error)
	// Decompress returns the original form of data
	Decompress(data []byte) ([]byte, error)
}

// Compressed returns a Codec that compresses what codec encodes
func Compressed(codec Codec, compression Compression) Codec {
	return &compressed{codec: codec, compression: compression}
}

type compressed struct {
	codec       Codec
	compression Compression
}

func (c *compressed) Name() string {
	return c.codec.Name() + "+" + c.compression.Name()
}

func (c *compressed) Encode(n *tree.Node) ([]byte, error) {
	data, err := c.codec.Encode(n)
	if err != nil {
		return nil, err
	}
	return c.compression.Compress(data)
}

func (c *compressed) Decode(data []byte) (*tree.Node, error) {
	if len(data) == 0 {
		return nil, ErrNilDocument
	}

	raw, err := c.compression.Decompress(data)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(raw)
}

// Gzip compresses with gzip at a fixed level
type Gzip struct {
	level   int
	writers sync.Pool
}

var _ Compression = (*Gzip)(nil)

// NewGzip creates a gzip Compression. Out of range levels fall back to
// gzip.DefaultCompression.
func NewGzip(level int) *Gzip {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}

	g := &Gzip{level: level}
	g.writers.New = func() any {
		w, _ := gzip.NewWriterLevel(nil, g.level)
		return w
	}
	return g
}

func (g *Gzip) Name() string { return "gzip" }

func (g *Gzip) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := g.writers.Get().(*gzip.Writer)
	defer g.writers.Put(w)

	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Join(ErrCompressFailed, err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Join(ErrCompressFailed, err)
	}
	return buf.Bytes(), nil
}

func (g *Gzip) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecompressFailed, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrDecompressFailed, err)
	}
	return out, nil
}

// Zstd compresses with Zstandard.
// A single encoder and decoder are shared: their EncodeAll and DecodeAll
// methods are safe for concurrent use.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ Compression = (*Zstd)(nil)

// NewZstd creates a Zstandard Compression
func NewZstd() (*Zstd, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Join(ErrCompressFailed, err)
	}

	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		_ = encoder.Close()
		return nil, errors.Join(ErrDecompressFailed, err)
	}
	return &Zstd{encoder: encoder, decoder: decoder}, nil
}

func (z *Zstd) Name() string { return "zstd" }

func (z *Zstd) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Join(ErrDecompressFailed, err)
	}
	return out, nil
}

// Close releases the encoder and the decoder
func (z *Zstd) Close() error {
	z.decoder.Close()
	return z.encoder.Close()
}

// Brotli compresses with brotli at a fixed quality
type Brotli struct {
	level   int
	writers sync.Pool
	readers sync.Pool
}

var _ Compression = (*Brotli)(nil)

// NewBrotli creates a brotli Compression. Out of range levels fall back to
// brotli.DefaultCompression.
func NewBrotli(level int) *Brotli {
	if level < brotli.BestSpeed || level > brotli.BestCompression {
		level = brotli.DefaultCompression
	}

	b := &Brotli{level: level}
	b.writers.New = func() any { return brotli.NewWriterLevel(nil, b.level) }
	b.readers.New = func() any { return brotli.NewReader(nil) }
	return b
}

func (b *Brotli) Name() string { return "br" }

func (b *Brotli) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := b.writers.Get().(*brotli.Writer)
	defer func() {
		w.Reset(nil)
		b.writers.Put(w)
	}()

	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Join(ErrCompressFailed, err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Join(ErrCompressFailed, err)
	}
	return buf.Bytes(), nil
}

func (b *Brotli) Decompress(data []byte) ([]byte, error) {
	r := b.readers.Get().(*brotli.Reader)
	defer func() {
		_ = r.Reset(nil)
		b.readers.Put(r)
	}()

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, errors.Join(ErrDecompressFailed, err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrDecompressFailed, err)
	}
	return out, nil
}
