package compress

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"testing"

	"github.com/sahib/safeio/mio/pool"
	"github.com/sahib/safeio/util/testutil"
	"github.com/stretchr/testify/require"
)

const (
	C64K = 64 * 1024
	C32K = 32 * 1024
)

var (
	testSizes = []int64{0, 1, C64K - 1, C64K, C64K + 1, C32K - 1, C32K, C32K + 1, 3*C64K + 5}
	testAlgos = []AlgorithmType{AlgoNone, AlgoSnappy, AlgoLZ4}
)

func compressData(t *testing.T, data []byte, algo AlgorithmType, p *pool.Pool) []byte {
	zipped := &bytes.Buffer{}
	w, err := NewWriterWithPool(zipped, algo, p)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Close())
	return zipped.Bytes()
}

func TestCompressDecompress(t *testing.T) {
	for _, algo := range testAlgos {
		for _, size := range testSizes {
			t.Run(fmt.Sprintf("%s-%d", algo, size), func(t *testing.T) {
				p := pool.New(0)
				data := testutil.CreateDummyBuf(size)
				zipped := compressData(t, data, algo, p)

				r := NewReaderWithPool(bytes.NewReader(zipped), p)
				got, err := ioutil.ReadAll(r)
				require.NoError(t, err)
				require.NoError(t, r.Close())
				require.Equal(t, data, got)

				// Both block buffers went back to the pool:
				require.Equal(t, 2, p.Idle())
			})
		}
	}
}

func TestCompressionShrinks(t *testing.T) {
	data := bytes.Repeat([]byte("all work and no play makes jack a dull boy\n"), 10000)
	for _, algo := range []AlgorithmType{AlgoSnappy, AlgoLZ4} {
		zipped := compressData(t, data, algo, nil)
		require.True(t, len(zipped) < len(data)/4, "%s did not compress", algo)
	}
}

func TestSmallWritesAndFlush(t *testing.T) {
	data := testutil.CreateRandomDummyBuf(C64K+100, 42)
	zipped := &bytes.Buffer{}

	w, err := NewWriter(zipped, AlgoSnappy)
	require.NoError(t, err)

	for idx := 0; idx < len(data); idx += 77 {
		end := idx + 77
		if end > len(data) {
			end = len(data)
		}

		_, err := w.Write(data[idx:end])
		require.NoError(t, err)

		if idx%7 == 0 {
			require.NoError(t, w.Flush())
		}
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte{1})
	require.Error(t, err)

	got, err := ioutil.ReadAll(NewReader(zipped))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestBadMagic(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("definitely not compressed")))
	_, err := ioutil.ReadAll(r)
	require.Equal(t, ErrBadMagic, err)

	r = NewReader(bytes.NewReader([]byte("sa")))
	_, err = ioutil.ReadAll(r)
	require.Equal(t, ErrBadMagic, err)
}

func TestBadAlgo(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, AlgorithmType(42))
	require.Equal(t, ErrBadAlgo, err)

	stream := append(append([]byte{}, MagicNumber...), 42)
	_, err = ioutil.ReadAll(NewReader(bytes.NewReader(stream)))
	require.Equal(t, ErrBadAlgo, err)
}

func TestTruncatedStream(t *testing.T) {
	data := testutil.CreateDummyBuf(C64K + 10)
	zipped := compressData(t, data, AlgoLZ4, nil)

	// Cut the terminator and some data:
	for _, cut := range []int{1, 10, len(zipped) - headerSize - 1} {
		r := NewReader(bytes.NewReader(zipped[:len(zipped)-cut]))
		_, err := ioutil.ReadAll(r)
		require.Equal(t, io.ErrUnexpectedEOF, err, "cut %d", cut)
	}
}

func TestCorruptBlock(t *testing.T) {
	data := testutil.CreateDummyBuf(1024)
	zipped := compressData(t, data, AlgoSnappy, nil)

	// Pretend the block is larger than it decodes to:
	zipped[headerSize] = 0xff
	zipped[headerSize+1] = 0x07

	_, err := ioutil.ReadAll(NewReader(bytes.NewReader(zipped)))
	require.Error(t, err)
}

func TestAlgoNames(t *testing.T) {
	for _, name := range AlgoNames() {
		algo, err := AlgoFromString(name)
		require.NoError(t, err)
		require.Equal(t, name, algo.String())
	}

	_, err := AlgoFromString("zstd")
	require.Equal(t, ErrBadAlgo, err)
	require.Equal(t, "unknown algorithm", AlgorithmType(99).String())
}

func TestGuessAlgorithm(t *testing.T) {
	text := bytes.Repeat([]byte("package main\n"), 500)
	require.Equal(t, AlgoNone, GuessAlgorithm("main.go", text[:100]))
	require.Equal(t, AlgoLZ4, GuessAlgorithm("main.go", text))

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 4096)...)
	require.Equal(t, AlgoNone, GuessAlgorithm("photo.png", png))
}

func TestMaxEncodedLen(t *testing.T) {
	incompressible := testutil.CreateRandomDummyBuf(BlockSize, 23)
	for _, name := range AlgoNames() {
		typ, err := AlgoFromString(name)
		require.NoError(t, err)

		algo, err := AlgorithmFromType(typ)
		require.NoError(t, err)

		enc, err := algo.Encode(incompressible)
		require.NoError(t, err, name)
		require.True(t, len(enc) <= algo.MaxEncodedLen(BlockSize), name)
		require.True(t, algo.MaxEncodedLen(BlockSize) <= maxEncodedSize, name)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, io.ErrShortWrite
}

func TestCloseReleasesBufferOnError(t *testing.T) {
	p := pool.New(0)
	w, err := NewWriterWithPool(brokenWriter{}, AlgoSnappy, p)
	require.NoError(t, err)
	require.Equal(t, 0, p.Idle())

	_, err = w.Write([]byte("hello"))
	require.Error(t, err)

	require.Equal(t, io.ErrShortWrite, w.Close())
	require.Equal(t, 1, p.Idle())

	// Closing again does not release twice:
	require.NoError(t, w.Close())
	require.Equal(t, 1, p.Idle())
}

func TestAbortReleasesBuffer(t *testing.T) {
	p := pool.New(0)
	out := &bytes.Buffer{}
	w, err := NewWriterWithPool(out, AlgoLZ4, p)
	require.NoError(t, err)

	_, err = w.Write([]byte("pending"))
	require.NoError(t, err)

	w.Abort()
	require.Equal(t, 1, p.Idle())

	_, err = w.Write([]byte("more"))
	require.Equal(t, io.ErrClosedPipe, err)
	require.NoError(t, w.Close())
	w.Abort()
	require.Equal(t, 1, p.Idle())

	// Only the header made it out; no terminator was written:
	require.Equal(t, headerSize, out.Len())
}

func TestSentinelsHaveStack(t *testing.T) {
	for _, err := range []error{ErrBadAlgo, ErrBadMagic, ErrBadBlock} {
		require.Contains(t, fmt.Sprintf("%+v", err), "safeio/mio/compress", err.Error())
	}
}
