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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/arbor/tree"
)

func sample() *tree.Node {
	root := (&tree.Node{Name: "order"}).SetAttribute("id", "1")
	items := &tree.Node{Name: "items"}
	items.Append(
		tree.NewNode("string", "a"),
		tree.NewNode("string", "b"),
		(&tree.Node{Name: "null"}),
	)
	root.Append(tree.NewNode("customer", "ada & bob <co>"), items)
	return root
}

func codecs(t *testing.T) []Codec {
	z, err := NewZstd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = z.Close() })

	return []Codec{
		NewCBOR(),
		NewMsgPack(),
		NewJSON(""),
		NewJSON("  "),
		NewXML(""),
		NewXML("  "),
		Compressed(NewCBOR(), NewGzip(9)),
		Compressed(NewMsgPack(), z),
		Compressed(NewJSON(""), NewBrotli(5)),
		Compressed(NewXML(""), NewGzip(100)),
	}
}

func TestCodec(t *testing.T) {
	for _, codec := range codecs(t) {
		t.Run(codec.Name(), func(t *testing.T) {
			expected := sample()
			data, err := codec.Encode(expected)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			actual, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, expected, actual)
		})
	}
}

func TestCodecErrors(t *testing.T) {
	for _, codec := range codecs(t) {
		t.Run(codec.Name(), func(t *testing.T) {
			_, err := codec.Encode(nil)
			assert.ErrorIs(t, err, ErrNilDocument)

			_, err = codec.Decode(nil)
			assert.ErrorIs(t, err, ErrNilDocument)

			_, err = codec.Decode([]byte("\x00\x01garbage"))
			require.Error(t, err)
		})
	}
}

func TestCompressedName(t *testing.T) {
	assert.Equal(t, "json+br", Compressed(NewJSON(""), NewBrotli(-1)).Name())
	assert.Equal(t, "xml+gzip", Compressed(NewXML(""), NewGzip(1)).Name())
}

func TestCompression(t *testing.T) {
	z, err := NewZstd()
	require.NoError(t, err)
	defer func() { _ = z.Close() }()

	payload := []byte(strings.Repeat("<string>abc</string>", 512))
	for _, compression := range []Compression{NewGzip(6), NewBrotli(11), z} {
		t.Run(compression.Name(), func(t *testing.T) {
			compressed, err := compression.Compress(payload)
			require.NoError(t, err)
			assert.Less(t, len(compressed), len(payload))

			actual, err := compression.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, actual)

			_, err = compression.Decompress([]byte("not compressed"))
			assert.ErrorIs(t, err, ErrDecompressFailed)
		})
	}
}
