package planar

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/jpfielding/qtc.go/pkg/compress/qtc"
	"github.com/jpfielding/qtc.go/pkg/compress/rle"
)

// Codec compresses one packed 1-bit plane. Streams are self-delimiting so
// planes can be concatenated.
type Codec interface {
	// Encode compresses a plane of ceil(w/8)*h bytes
	Encode(plane []byte, w, h uint16) ([]byte, error)
	// Decode returns the plane and the number of bytes of data it used
	Decode(data []byte, w, h uint16) ([]byte, int, error)
	// Name returns the codec identifier (e.g., "qtc")
	Name() string
	// ID is the value stored in a planar stream header
	ID() byte
}

// quadtreeCodec implements Codec with the quadtree codec
type quadtreeCodec struct {
	opts *qtc.Options
}

func (c *quadtreeCodec) Encode(plane []byte, w, h uint16) ([]byte, error) {
	return qtc.Encode(plane, w, h, c.opts)
}

func (c *quadtreeCodec) Decode(data []byte, w, h uint16) ([]byte, int, error) {
	return qtc.Decode(data, w, h)
}

func (c *quadtreeCodec) Name() string {
	return "qtc"
}

func (c *quadtreeCodec) ID() byte {
	return 0
}

// packBitsCodec implements Codec with PackBits over the packed rows
type packBitsCodec struct{}

func (c *packBitsCodec) Encode(plane []byte, w, h uint16) ([]byte, error) {
	return rle.Encode(plane[:planeSize(w, h)]), nil
}

func (c *packBitsCodec) Decode(data []byte, w, h uint16) ([]byte, int, error) {
	return rle.Decode(data, planeSize(w, h))
}

func (c *packBitsCodec) Name() string {
	return "packbits"
}

func (c *packBitsCodec) ID() byte {
	return 1
}

// zstdCodec implements Codec with a length-prefixed zstd frame
type zstdCodec struct{}

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

func (c *zstdCodec) Encode(plane []byte, w, h uint16) ([]byte, error) {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)
	out := make([]byte, 4, 4+planeSize(w, h)/2)
	out = enc.EncodeAll(plane[:planeSize(w, h)], out)
	binary.LittleEndian.PutUint32(out, uint32(len(out)-4))
	return out, nil
}

func (c *zstdCodec) Decode(data []byte, w, h uint16) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: zstd length prefix", ErrCorrupt)
	}
	n := int(binary.LittleEndian.Uint32(data))
	if n > len(data)-4 {
		return nil, 0, fmt.Errorf("%w: zstd frame of %d bytes, %d left", ErrCorrupt, n, len(data)-4)
	}
	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)
	plane, err := dec.DecodeAll(data[4:4+n], make([]byte, 0, planeSize(w, h)))
	if err != nil {
		return nil, 0, fmt.Errorf("zstd decode: %w", err)
	}
	if len(plane) != planeSize(w, h) {
		return nil, 0, fmt.Errorf("%w: zstd plane of %d bytes, want %d", ErrCorrupt, len(plane), planeSize(w, h))
	}
	return plane, 4 + n, nil
}

func (c *zstdCodec) Name() string {
	return "zstd"
}

func (c *zstdCodec) ID() byte {
	return 2
}

// codecsByName maps codec names to implementations
var codecsByName = map[string]Codec{
	"qtc":      &quadtreeCodec{},
	"quadtree": &quadtreeCodec{}, // alias
	"packbits": &packBitsCodec{},
	"zstd":     &zstdCodec{},
}

// codecsByID maps stream header ids to implementations
var codecsByID = map[byte]Codec{
	0: codecsByName["qtc"],
	1: codecsByName["packbits"],
	2: codecsByName["zstd"],
}

// Predefined codec instances for convenience
var (
	CodecQuadtree Codec = codecsByName["qtc"]
	CodecPackBits Codec = codecsByName["packbits"]
	CodecZstd     Codec = codecsByName["zstd"]
)

// CodecByName returns a codec by name, or nil if not found
func CodecByName(name string) Codec {
	return codecsByName[name]
}

// QuadtreeCodec returns a quadtree codec with specific encoder options.
func QuadtreeCodec(opts *qtc.Options) Codec {
	return &quadtreeCodec{opts: opts}
}

func planeSize(w, h uint16) int {
	return qtc.Stride(w) * int(h)
}
