package codec

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressed payload layout: [UncompressedSize uint32][CompressedSize uint32][Data...]
// If CompressedSize == 0, the payload is stored uncompressed.
const blockHeaderSize = 8

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	// Level 3 balances compression ratio vs speed
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Zstd wraps inner with ZSTD block compression (better ratio, good for
// cold chunks on remote mediums).
func Zstd(inner Codec) Codec {
	if inner == nil {
		inner = Default
	}
	return &compressCodec{
		inner: inner,
		name:  fmt.Sprintf("zstd(%s)", inner.Name()),
		compress: func(data []byte) ([]byte, error) {
			enc := getZstdEncoder()
			defer putZstdEncoder(enc)
			return enc.EncodeAll(data, nil), nil
		},
		decompress: func(data []byte, uncompressedSize uint32) ([]byte, error) {
			dec := getZstdDecoder()
			defer putZstdDecoder(dec)
			return dec.DecodeAll(data, make([]byte, 0, uncompressedSize))
		},
	}
}

// LZ4 wraps inner with LZ4 block compression (fast, good for hot chunks).
func LZ4(inner Codec) Codec {
	if inner == nil {
		inner = Default
	}
	return &compressCodec{
		inner: inner,
		name:  fmt.Sprintf("lz4(%s)", inner.Name()),
		compress: func(data []byte) ([]byte, error) {
			buf := make([]byte, lz4.CompressBlockBound(len(data)))
			n, err := lz4.CompressBlock(data, buf, nil)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, nil // Incompressible
			}
			return buf[:n], nil
		},
		decompress: func(data []byte, uncompressedSize uint32) ([]byte, error) {
			buf := make([]byte, uncompressedSize)
			n, err := lz4.UncompressBlock(data, buf)
			if err != nil {
				return nil, err
			}
			return buf[:n], nil
		},
	}
}

type compressCodec struct {
	inner      Codec
	name       string
	compress   func(data []byte) ([]byte, error)
	decompress func(data []byte, uncompressedSize uint32) ([]byte, error)
}

// Marshal encodes the value with the inner codec and compresses the result.
// If compression doesn't help (ratio > 0.9), the payload is stored uncompressed.
func (c *compressCodec) Marshal(v any) ([]byte, error) {
	data, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	compressed, err := c.compress(data)
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		// Store uncompressed with header
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data))) //nolint:gosec
		binary.LittleEndian.PutUint32(result[4:], 0)                 // 0 = uncompressed
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))       //nolint:gosec
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed))) //nolint:gosec
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

// Unmarshal decompresses the payload and decodes it with the inner codec.
func (c *compressCodec) Unmarshal(data []byte, v any) error {
	if len(data) < blockHeaderSize {
		return fmt.Errorf("codec %s: payload too short: %d bytes", c.name, len(data))
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	payload := data[blockHeaderSize:]

	if compressedSize == 0 {
		if uint32(len(payload)) != uncompressedSize { //nolint:gosec
			return fmt.Errorf("codec %s: size mismatch: header %d, payload %d", c.name, uncompressedSize, len(payload))
		}
		return c.inner.Unmarshal(payload, v)
	}

	if uint32(len(payload)) != compressedSize { //nolint:gosec
		return fmt.Errorf("codec %s: size mismatch: header %d, payload %d", c.name, compressedSize, len(payload))
	}

	decompressed, err := c.decompress(payload, uncompressedSize)
	if err != nil {
		return fmt.Errorf("codec %s: decompress: %w", c.name, err)
	}
	if uint32(len(decompressed)) != uncompressedSize { //nolint:gosec
		return fmt.Errorf("codec %s: size mismatch after decompress: header %d, got %d", c.name, uncompressedSize, len(decompressed))
	}
	return c.inner.Unmarshal(decompressed, v)
}

// Name returns the composed codec name, e.g. "zstd(go-json)".
func (c *compressCodec) Name() string { return c.name }
