package compress

import (
	"mime"
	"path/filepath"
	"strings"

	"bitbucket.org/taruti/mimemagic"
	log "github.com/sirupsen/logrus"
)

var (
	// Whitelist of known uncompressed formats that the blacklist would catch.
	compressable = []string{
		"image/bmp",
		"audio/x-wav",
	}

	notCompressable = []string{
		"application/ogg",
		"video",
		"audio",
		"image",
		"zip",
		"gzip",
		"rar",
		"7z",
	}

	// Textfile extensions not covered by mime.TypeByExtension
	textFileExtensions = []string{
		".go",
		".json",
		".yaml",
		".yml",
		".xml",
		".txt",
		".log",
	}
)

const (
	// HeaderSizeThreshold is the number of bytes needed to enable compression at all.
	HeaderSizeThreshold = 2048
)

func guessMime(path string, buf []byte) string {
	ext := filepath.Ext(path)
	for _, extension := range textFileExtensions {
		if extension == ext {
			return "text/generic"
		}
	}

	if s := mimemagic.Match("", buf); s != "" {
		return s
	}

	return mime.TypeByExtension(ext)
}

func isCompressable(mimetype string) bool {
	for _, substr := range compressable {
		if strings.Contains(mimetype, substr) {
			return true
		}
	}

	for _, substr := range notCompressable {
		if strings.Contains(mimetype, substr) {
			return false
		}
	}

	return true
}

// GuessAlgorithm picks an algorithm for `path` based on the first bytes of
// its content. Already compressed formats and tiny inputs are not compressed.
func GuessAlgorithm(path string, header []byte) AlgorithmType {
	if len(header) < HeaderSizeThreshold {
		return AlgoNone
	}

	mimetype := guessMime(path, header)
	log.Debugf("guessed `%s` mime for `%s`", mimetype, path)

	if !isCompressable(mimetype) {
		return AlgoNone
	}

	if strings.HasPrefix(mimetype, "text/") {
		return AlgoLZ4
	}

	return AlgoSnappy
}
