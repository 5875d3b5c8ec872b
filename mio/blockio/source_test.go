package blockio

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sahib/safeio/util/testutil"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource(t *testing.T) {
	data := testutil.CreateDummyBuf(3000)
	var rangeRequests int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Range") != "" {
			atomic.AddInt64(&rangeRequests, 1)
		}

		http.ServeContent(w, req, "blob", time.Now(), bytes.NewReader(data))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.Client(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, int64(3000), src.Length())

	r, err := NewReader(src, 1024)
	require.NoError(t, err)

	_, err = r.Seek(1000, io.SeekStart)
	require.NoError(t, err)

	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data[1000:], out)
	require.Equal(t, int64(2), atomic.LoadInt64(&rangeRequests))
	require.Equal(t, int64(2), r.Fetches())
}

func TestHTTPSourceMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTPSource(srv.Client(), srv.URL)
	require.Error(t, err)
}

func TestHTTPSourceNoRangeSupport(t *testing.T) {
	data := []byte("no ranges here")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Length", "14")
		w.WriteHeader(http.StatusOK)
		if req.Method != http.MethodHead {
			w.Write(data)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.Client(), srv.URL)
	require.NoError(t, err)

	_, err = src.FetchBlock(0, make([]byte, 4))
	require.Error(t, err)
}
