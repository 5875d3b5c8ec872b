package blockio

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	e "github.com/pkg/errors"
)

// ReaderAtSource turns any io.ReaderAt (an *os.File for example)
// of known size into a Source.
type ReaderAtSource struct {
	ra   io.ReaderAt
	size int64
}

// NewReaderAtSource returns a Source reading from `ra`, which has `size` bytes.
func NewReaderAtSource(ra io.ReaderAt, size int64) *ReaderAtSource {
	return &ReaderAtSource{ra: ra, size: size}
}

// Length returns the size passed on creation.
func (rs *ReaderAtSource) Length() int64 {
	return rs.size
}

// FetchBlock reads len(buf) bytes at `off`.
func (rs *ReaderAtSource) FetchBlock(off int64, buf []byte) (int, error) {
	n, err := rs.ra.ReadAt(buf, off)
	if err == io.EOF {
		// Short block at the end; that's allowed.
		return n, nil
	}

	return n, err
}

// Close closes the underlying io.ReaderAt if it is an io.Closer.
func (rs *ReaderAtSource) Close() error {
	if closer, ok := rs.ra.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// HTTPSource fetches blocks with HTTP range requests.
// The server has to support "Range: bytes=lo-hi" and answer with
// 206 Partial Content.
type HTTPSource struct {
	client *http.Client
	url    string
	size   int64
}

// NewHTTPSource asks the server at `url` for the size of the resource
// (by a HEAD request) and returns a Source for it. If `client` is nil,
// http.DefaultClient is used.
func NewHTTPSource(client *http.Client, url string) (*HTTPSource, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Head(url)
	if err != nil {
		return nil, e.Wrapf(err, "head %s", url)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Errorf("head %s: unexpected status: %s", url, resp.Status)
	}

	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return nil, e.Wrapf(err, "head %s: bad content length", url)
	}

	return &HTTPSource{
		client: client,
		url:    url,
		size:   size,
	}, nil
}

// Length returns the size reported by the server.
func (hs *HTTPSource) Length() int64 {
	return hs.size
}

// FetchBlock issues a range request for [off, off+len(buf)).
func (hs *HTTPSource) FetchBlock(off int64, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	req, err := http.NewRequest(http.MethodGet, hs.url, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, off+int64(len(buf))-1))
	resp, err := hs.client.Do(req)
	if err != nil {
		return 0, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		return 0, e.Errorf("range request at %d: unexpected status: %s", off, resp.Status)
	}

	n, err := io.ReadFull(resp.Body, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// The server cut the range at the end of the resource.
		return n, nil
	}

	return n, err
}
