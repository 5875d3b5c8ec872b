package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	isatty "github.com/mattn/go-isatty"
	"github.com/sahib/config"
	"github.com/sahib/safeio/backup"
	"github.com/sahib/safeio/defaults"
	"github.com/sahib/safeio/mio"
	"github.com/sahib/safeio/mio/blockio"
	"github.com/sahib/safeio/mio/bounded"
	"github.com/sahib/safeio/mio/compress"
	"github.com/sahib/safeio/mio/counter"
	"github.com/sahib/safeio/mio/pool"
	"github.com/sahib/safeio/mio/throttle"
	"github.com/sahib/safeio/util"
	"github.com/sahib/safeio/util/hashlib"
	"github.com/sahib/safeio/version"
	"github.com/sahib/safeio/vfs"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
	yaml "gopkg.in/yaml.v2"
)

// stdin and stdout are variables so tests can replace them.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

func chooseAlgorithm(ctx *cli.Context, cfg *config.Config, path string, in *bufio.Reader) (compress.AlgorithmType, error) {
	name := ctx.String("compress")
	if name == "" {
		name = cfg.String("io.compress_algo")
	}

	if name != "auto" {
		return compress.AlgoFromString(name)
	}

	// A short header (or an error) is fine here; the copy will see it again.
	header, _ := in.Peek(compress.HeaderSizeThreshold)
	algo := compress.GuessAlgorithm(path, header)
	logVerbose(ctx, "guessed compression algorithm: %s", algo)
	return algo, nil
}

func handleWrite(ctx *cli.Context, cfg *config.Config) error {
	path := ctx.Args().First()
	bufSize := bufferSize(cfg)

	lim, err := rateLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	in := bufio.NewReaderSize(stdin, compress.HeaderSizeThreshold)
	algo, err := chooseAlgorithm(ctx, cfg, path, in)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("write: %v", err)}
	}

	bw, err := backup.Create(vfs.NewLocal(), path, backup.Options{BufferSize: bufSize})
	if err != nil {
		return toExitCode("write", err)
	}

	var dst io.Writer = bw
	var zw *compress.Writer
	if algo != compress.AlgoNone {
		if zw, err = compress.NewWriter(bw, algo); err != nil {
			util.Closer(abortCloser{bw})
			return toExitCode("write", err)
		}

		defer zw.Abort()
		dst = zw
	}

	cnt := counter.New()
	src := counter.NewReader(throttle.NewReader(context.Background(), in, lim), cnt)
	if _, err := mio.CopyBuffer(dst, src, bufSize); err != nil {
		util.Closer(abortCloser{bw})
		return toExitCode("write", err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			util.Closer(abortCloser{bw})
			return toExitCode("write", err)
		}
	}

	if err := bw.Close(); err != nil {
		return toExitCode("write", err)
	}

	logVerbose(ctx, "wrote %s to %s (compression: %s)", humanize.Bytes(uint64(cnt.Value())), path, algo)
	return nil
}

func isCompressed(br *bufio.Reader) bool {
	magic, err := br.Peek(len(compress.MagicNumber))
	return err == nil && bytes.Equal(magic, compress.MagicNumber)
}

// openDurable opens `path` for reading, decompressing if needed.
// The returned closer must be called after reading.
func openDurable(ctx *cli.Context, path string) (io.Reader, func(), error) {
	r, err := backup.Open(vfs.NewLocal(), path)
	if err != nil {
		return nil, nil, err
	}

	if r.Chosen() == backup.ChooseBackup {
		logVerbose(ctx, "reading from backup %s", r.Status().BackupPath)
	}

	br := bufio.NewReader(r)
	if ctx.Bool("raw") || !isCompressed(br) {
		return br, func() { util.Closer(r) }, nil
	}

	zr := compress.NewReader(br)
	return zr, func() {
		util.Closer(zr)
		util.Closer(r)
	}, nil
}

func handleRead(ctx *cli.Context, cfg *config.Config) error {
	path := ctx.Args().First()

	lim, err := rateLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	src, closer, err := openDurable(ctx, path)
	if err != nil {
		return toExitCode("read", err)
	}

	defer closer()

	throttled := throttle.NewReader(context.Background(), src, lim)
	if _, err := mio.CopyBuffer(stdout, throttled, bufferSize(cfg)); err != nil {
		return toExitCode("read", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(time.RFC3339)
}

func handleStatus(ctx *cli.Context, cfg *config.Config) error {
	path := ctx.Args().First()
	st, err := backup.Inspect(vfs.NewLocal(), path)
	if err != nil {
		return toExitCode("status", err)
	}

	if ctx.Bool("yaml") {
		data, err := yaml.Marshal(st)
		if err != nil {
			return ExitCode{UnknownError, fmt.Sprintf("status: %v", err)}
		}

		fmt.Fprint(stdout, string(data))
	} else {
		fmt.Fprintf(stdout, "%-10s %s\n", "Path:", st.Path)
		fmt.Fprintf(
			stdout, "%-10s %-4s %10s  %s\n", "Original:",
			yesify(st.OriginalExists), humanize.Bytes(uint64(st.OriginalSize)), formatTime(st.OriginalModTime),
		)
		fmt.Fprintf(
			stdout, "%-10s %-4s %10s  %s\n", "Backup:",
			yesify(st.BackupExists), humanize.Bytes(uint64(st.BackupSize)), formatTime(st.BackupModTime),
		)

		chosen := color.GreenString(st.Chosen.String())
		if st.Chosen == backup.ChooseBackup {
			chosen = color.YellowString(st.Chosen.String())
		}

		fmt.Fprintf(stdout, "%-10s %s\n", "Reading:", chosen)
	}

	if st.Chosen == backup.ChooseNone {
		return ExitCode{NotFound, fmt.Sprintf("status: neither %s nor %s exist", st.Path, st.BackupPath)}
	}

	return nil
}

func handleHash(ctx *cli.Context, cfg *config.Config) error {
	path := ctx.Args().First()
	src, closer, err := openDurable(ctx, path)
	if err != nil {
		return toExitCode("hash", err)
	}

	defer closer()

	algo := ctx.String("algo")
	if algo == "" {
		algo = cfg.String("hash.algo")
	}

	hash, n, err := hashlib.SumReader(src, algo, bufferSize(cfg))
	if err == hashlib.ErrBadAlgo {
		return ExitCode{BadArgs, fmt.Sprintf("hash: %v: %s", err, algo)}
	}

	if err != nil {
		return toExitCode("hash", err)
	}

	logVerbose(ctx, "hashed %s with %s", humanize.Bytes(uint64(n)), hash.Algorithm())
	if ctx.Bool("short") {
		fmt.Fprintln(stdout, hash.ShortB58())
		return nil
	}

	fmt.Fprintf(stdout, "%s  %s\n", hash.B58String(), path)
	return nil
}

func cleanAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}

// copyOverlaps tells if writing `dst` durably would touch the file that
// `src` is read from. This happens for the same path, but also when
// the source is the destination's backup.
func copyOverlaps(src backup.Status, dst string) bool {
	touched := []string{cleanAbs(dst), cleanAbs(dst + backup.Suffix)}
	read := []string{cleanAbs(src.Path), cleanAbs(src.ChosenPath())}

	for _, t := range touched {
		for _, r := range read {
			if t == r {
				return true
			}
		}
	}

	return false
}

func handleCopy(ctx *cli.Context, cfg *config.Config) error {
	srcPath, dstPath := ctx.Args().Get(0), ctx.Args().Get(1)
	bufSize := bufferSize(cfg)

	lim, err := rateLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	fs := vfs.NewLocal()
	r, err := backup.Open(fs, srcPath)
	if err != nil {
		return toExitCode("copy", err)
	}

	defer util.Closer(r)

	if copyOverlaps(r.Status(), dstPath) {
		return ExitCode{BadArgs, fmt.Sprintf("copy: %s would overwrite its own source", dstPath)}
	}

	w, err := backup.Create(fs, dstPath, backup.Options{BufferSize: bufSize})
	if err != nil {
		return toExitCode("copy", err)
	}

	total := r.Allowed()
	var in io.Reader = throttle.NewReader(context.Background(), r, lim)

	var progress *mpb.Progress
	var bar *mpb.Bar
	if total > 0 && !ctx.Bool("no-progress") && isatty.IsTerminal(os.Stderr.Fd()) {
		progress = mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(60))
		bar = progress.AddBar(
			total,
			mpb.PrependDecorators(
				decor.Name(filepath.Base(srcPath)+" "),
				decor.CountersKibiByte("% 6.1f / % 6.1f"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)

		in = bar.ProxyReader(in)
	}

	n, err := mio.CopyBuffer(w, in, bufSize)
	if bar != nil {
		if n != total {
			// Mark the bar as done, otherwise Wait() would block forever.
			bar.SetTotal(n, true)
		}

		progress.Wait()
	}

	if err != nil {
		util.Closer(abortCloser{w})
		return toExitCode("copy", err)
	}

	if err := w.Close(); err != nil {
		return toExitCode("copy", err)
	}

	logVerbose(ctx, "copied %s from %s to %s", humanize.Bytes(uint64(n)), srcPath, dstPath)
	return nil
}

func handleFill(ctx *cli.Context, cfg *config.Config) error {
	path := ctx.Args().Get(0)
	size, err := parseSize(ctx.Args().Get(1))
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("fill: invalid size: %v", err)}
	}

	value := ctx.Int("byte")
	if value < 0 || value > 255 {
		return ExitCode{BadArgs, fmt.Sprintf("fill: byte out of range: %d", value)}
	}

	w, err := backup.Create(vfs.NewLocal(), path, backup.Options{BufferSize: bufferSize(cfg)})
	if err != nil {
		return toExitCode("fill", err)
	}

	copier := mio.NewCopier(pool.Default())
	if _, err := copier.Fill(w, byte(value), size, bufferSize(cfg)); err != nil {
		util.Closer(abortCloser{w})
		return toExitCode("fill", err)
	}

	return toExitCode("fill", w.Close())
}

func parseOptionalSize(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}

	return parseSize(s)
}

func handleFetch(ctx *cli.Context, cfg *config.Config) error {
	url := ctx.Args().First()

	offset, err := parseOptionalSize(ctx.String("offset"), 0)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("fetch: invalid offset: %v", err)}
	}

	length, err := parseOptionalSize(ctx.String("length"), bounded.Unbounded)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("fetch: invalid length: %v", err)}
	}

	blockSize, err := parseOptionalSize(ctx.String("block-size"), cfg.Int("io.block_size"))
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("fetch: invalid block size: %v", err)}
	}

	if blockSize <= 0 || blockSize > blockio.MaxBlockSize {
		return ExitCode{BadArgs, fmt.Sprintf("fetch: %v", blockio.ErrBadBlockSize)}
	}

	client := &http.Client{Timeout: cfg.Duration("fetch.timeout")}
	src, err := blockio.NewHTTPSource(client, url)
	if err != nil {
		return toExitCode("fetch", err)
	}

	br, err := blockio.NewReader(src, int(blockSize))
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("fetch: %v", err)}
	}

	defer util.Closer(br)

	if _, err := br.Seek(offset, io.SeekStart); err != nil {
		return toExitCode("fetch", err)
	}

	var out io.Writer = stdout
	var w *backup.Writer
	if outPath := ctx.String("output"); outPath != "" {
		w, err = backup.Create(vfs.NewLocal(), outPath, backup.Options{BufferSize: bufferSize(cfg)})
		if err != nil {
			return toExitCode("fetch", err)
		}

		out = w
	}

	n, err := mio.CopyBuffer(out, bounded.NewReader(br, length, false), bufferSize(cfg))
	if err != nil {
		if w != nil {
			util.Closer(abortCloser{w})
		}

		return toExitCode("fetch", err)
	}

	if w != nil {
		if err := w.Close(); err != nil {
			return toExitCode("fetch", err)
		}
	}

	logVerbose(
		ctx, "fetched %s of %s in %d requests",
		humanize.Bytes(uint64(n)), humanize.Bytes(uint64(br.Length())), br.Fetches(),
	)
	return nil
}

func handleConfigList(ctx *cli.Context, cfg *config.Config) error {
	keys := cfg.Keys()
	sort.Strings(keys)

	for _, key := range keys {
		suffix := ""
		if cfg.IsDefault(key) {
			suffix = color.CyanString(" (default)")
		}

		fmt.Fprintf(stdout, "%s: %s%s\n", color.GreenString(key), cfg.Uncast(key), suffix)
	}

	return nil
}

func checkKey(cfg *config.Config, key string) error {
	if !cfg.IsValidKey(key) {
		return ExitCode{BadArgs, fmt.Sprintf("config: no such key: %s", key)}
	}

	return nil
}

func handleConfigGet(ctx *cli.Context, cfg *config.Config) error {
	key := ctx.Args().Get(0)
	if err := checkKey(cfg, key); err != nil {
		return err
	}

	fmt.Fprintln(stdout, cfg.Uncast(key))
	return nil
}

func handleConfigSet(ctx *cli.Context, cfg *config.Config) error {
	key, val := ctx.Args().Get(0), ctx.Args().Get(1)
	if err := checkKey(cfg, key); err != nil {
		return err
	}

	casted, err := cfg.Cast(key, val)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("config set: %v", err)}
	}

	if err := cfg.Set(key, casted); err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("config set: %v", err)}
	}

	path, err := configPath(ctx)
	if err != nil {
		return ExitCode{BadArgs, fmt.Sprintf("config set: %v", err)}
	}

	if err := saveConfig(path, cfg); err != nil {
		return toExitCode("config set", err)
	}

	if cfg.GetDefault(key).NeedsRestart {
		log.Infof("%s only takes effect on the next start", key)
	}

	return nil
}

func handleConfigDoc(ctx *cli.Context, cfg *config.Config) error {
	key := ctx.Args().Get(0)
	if err := checkKey(cfg, key); err != nil {
		return err
	}

	entry := cfg.GetDefault(key)
	fmt.Fprintf(stdout, "%s: %s\n", color.GreenString(key), entry.Docs)
	fmt.Fprintf(stdout, "  Default:       %v\n", entry.Default)
	fmt.Fprintf(stdout, "  Needs restart: %s\n", yesify(entry.NeedsRestart))
	return nil
}

type versionInfo struct {
	version.Info `yaml:",inline"`

	ConfigVersion int      `yaml:"config_version"`
	Compression   []string `yaml:"compression"`
	Hashes        []string `yaml:"hashes"`
}

func handleVersion(ctx *cli.Context) error {
	info := versionInfo{
		Info:          version.Current(),
		ConfigVersion: defaults.CurrentVersion,
		Compression:   compress.AlgoNames(),
		Hashes:        hashlib.AlgorithmNames(),
	}

	if ctx.Bool("yaml") {
		data, err := yaml.Marshal(info)
		if err != nil {
			return ExitCode{UnknownError, fmt.Sprintf("version: %v", err)}
		}

		fmt.Fprint(stdout, string(data))
		return nil
	}

	fmt.Fprintf(stdout, "%-14s %s\n", "Version:", info.Semver)
	if info.BuildTime != "" {
		fmt.Fprintf(stdout, "%-14s %s\n", "Built:", info.BuildTime)
	}

	fmt.Fprintf(stdout, "%-14s %s (%s)\n", "Go:", info.GoVersion, info.Platform)
	fmt.Fprintf(stdout, "%-14s %d\n", "Config format:", info.ConfigVersion)
	fmt.Fprintf(stdout, "%-14s %s\n", "Compression:", strings.Join(info.Compression, ", "))
	fmt.Fprintf(stdout, "%-14s %s\n", "Hashes:", strings.Join(info.Hashes, ", "))
	return nil
}
