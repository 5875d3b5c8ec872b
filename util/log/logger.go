// Package log has a human friendly logrus formatter and an io.Writer
// that forwards to logrus.
package log

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

const timeLayout = "2006-01-02 15:04:05"

var symbolTable = map[logrus.Level]string{
	logrus.DebugLevel: "⚙",
	logrus.InfoLevel:  "⚐",
	logrus.WarnLevel:  "⚠",
	logrus.ErrorLevel: "⚡",
	logrus.FatalLevel: "☣",
	logrus.PanicLevel: "☠",
}

var colorTable = map[logrus.Level]color.Attribute{
	logrus.DebugLevel: color.FgCyan,
	logrus.InfoLevel:  color.FgGreen,
	logrus.WarnLevel:  color.FgYellow,
	logrus.ErrorLevel: color.FgRed,
	logrus.FatalLevel: color.FgMagenta,
	logrus.PanicLevel: color.FgMagenta,
}

// FancyLogFormatter prints one line per entry:
//
//     2019-03-01 12:30:45 ⚠ [pid] file.go:12: message [key=value ...]
//
// The caller is only printed when the logger reports it
// (see logrus.SetReportCaller).
type FancyLogFormatter struct {
	UseColors bool
	ShowPid   bool
}

func (flf *FancyLogFormatter) paint(buf *bytes.Buffer, level logrus.Level, msg string) {
	attr, ok := colorTable[level]
	if !flf.UseColors || !ok {
		buf.WriteString(msg)
		return
	}

	// color.NoColor is global; the formatter decides on its own.
	c := color.New(attr)
	c.EnableColor()
	buf.WriteString(c.Sprint(msg))
}

// callerLocation shortens paths inside of safeio to be relative to its root.
func callerLocation(file string, line int) string {
	const modTag = "safeio/"
	if idx := strings.LastIndex(file, modTag); idx >= 0 {
		return fmt.Sprintf("%s:%d", file[idx+len(modTag):], line)
	}

	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (flf *FancyLogFormatter) writeFields(buf *bytes.Buffer, entry *logrus.Entry) {
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	buf.WriteString(" [")
	for idx, key := range keys {
		if idx > 0 {
			buf.WriteByte(' ')
		}

		flf.paint(buf, entry.Level, key)
		buf.WriteByte('=')

		switch v := entry.Data[key].(type) {
		case error:
			flf.paint(buf, logrus.ErrorLevel, v.Error())
		default:
			fmt.Fprintf(buf, "%v", v)
		}
	}

	buf.WriteByte(']')
}

// Format implements logrus.Formatter.
func (flf *FancyLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	prefix := entry.Time.Format(timeLayout) + " " + symbolTable[entry.Level]
	flf.paint(buf, entry.Level, prefix)

	if flf.ShowPid {
		fmt.Fprintf(buf, " [%d]", os.Getpid())
	}

	if entry.Caller != nil {
		buf.WriteByte(' ')
		buf.WriteString(callerLocation(entry.Caller.File, entry.Caller.Line))
		buf.WriteByte(':')
	}

	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		flf.writeFields(buf, entry)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Writer is an io.Writer that logs every write as one message.
// It is handy for libraries that only accept a writer for errors.
type Writer struct {
	Level logrus.Level
}

func (w *Writer) Write(buf []byte) (int, error) {
	msg := strings.TrimSpace(string(buf))
	if msg == "" {
		return len(buf), nil
	}

	switch w.Level {
	case logrus.DebugLevel:
		logrus.Debug(msg)
	case logrus.InfoLevel:
		logrus.Info(msg)
	case logrus.WarnLevel:
		logrus.Warn(msg)
	default:
		logrus.Error(msg)
	}

	return len(buf), nil
}
