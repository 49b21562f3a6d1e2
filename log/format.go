// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/holiman/uint256"
)

const (
	timeFormat = "01-02|15:04:05.000"
	msgPadding = 40
)

var spaces = []byte("                                        ")

func (h *TerminalHandler) format(buf []byte, r slog.Record) []byte {
	lvl := LevelAlignedString(r.Level)
	if h.useColor {
		if color := levelColor(r.Level); color != "" {
			buf = append(buf, color...)
			buf = append(buf, lvl...)
			buf = append(buf, "\x1b[0m"...)
		} else {
			buf = append(buf, lvl...)
		}
	} else {
		buf = append(buf, lvl...)
	}
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, timeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	// pad short messages so attributes line up across records
	if n := msgPadding - len(r.Message); n > 0 && len(h.attrs)+r.NumAttrs() > 0 {
		buf = append(buf, spaces[:n]...)
	}

	for _, attr := range h.attrs {
		buf = appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = appendAttr(buf, attr)
		return true
	})
	return append(buf, '\n')
}

func levelColor(l slog.Level) string {
	switch {
	case l >= LevelCrit:
		return "\x1b[35m"
	case l >= LevelError:
		return "\x1b[31m"
	case l >= LevelWarn:
		return "\x1b[33m"
	case l >= LevelInfo:
		return "\x1b[32m"
	case l >= LevelDebug:
		return "\x1b[36m"
	default:
		return "\x1b[34m"
	}
}

func appendAttr(buf []byte, attr slog.Attr) []byte {
	if attr.Equal(slog.Attr{}) {
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, attr.Key...)
	buf = append(buf, '=')
	return appendValue(buf, attr.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return appendInt64(buf, v.Int64())
	case slog.KindUint64:
		return appendUint64(buf, v.Uint64(), false)
	case slog.KindString:
		return appendEscaped(buf, v.String())
	case slog.KindTime:
		return v.Time().AppendFormat(buf, timeFormat)
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	default:
		return appendEscaped(buf, stringify(v.Any()))
	}
}

// appendInt64 formats n with thousand separators and appends to b.
func appendInt64(b []byte, n int64) []byte {
	if n < 0 {
		return appendUint64(b, uint64(-n), true)
	}
	return appendUint64(b, uint64(n), false)
}

// appendUint64 formats n with thousand separators and appends to b.
func appendUint64(b []byte, n uint64, neg bool) []byte {
	if neg {
		b = append(b, '-')
	}
	if n < 1000 {
		return strconv.AppendUint(b, n, 10)
	}
	var groups [7]uint64
	count := 0
	for n > 0 {
		groups[count] = n % 1000
		n /= 1000
		count++
	}
	b = strconv.AppendUint(b, groups[count-1], 10)
	for i := count - 2; i >= 0; i-- {
		b = append(b, ',')
		if groups[i] < 100 {
			b = append(b, '0')
		}
		if groups[i] < 10 {
			b = append(b, '0')
		}
		b = strconv.AppendUint(b, groups[i], 10)
	}
	return b
}

// stringify renders arbitrary attribute values, keeping big numbers readable
// and nil pointers explicit.
func stringify(v any) string {
	switch v := v.(type) {
	case *big.Int:
		if v == nil {
			return "<nil>"
		}
		return v.String()
	case *uint256.Int:
		if v == nil {
			return "<nil>"
		}
		return v.Dec()
	case error:
		if v == nil {
			return "<nil>"
		}
		return v.Error()
	case fmt.Stringer:
		if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
			return "<nil>"
		}
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func appendEscaped(buf []byte, s string) []byte {
	if needsQuoting(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}

func builtinReplaceLogfmt(_ []string, attr slog.Attr) slog.Attr {
	return builtinReplace(attr, true)
}

func builtinReplaceJSON(_ []string, attr slog.Attr) slog.Attr {
	return builtinReplace(attr, false)
}

func builtinReplace(attr slog.Attr, logfmt bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			if logfmt {
				return slog.String("t", attr.Value.Time().Format(timeFormat))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.Any("lvl", LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case time.Time:
		if logfmt {
			attr.Value = slog.StringValue(v.Format(timeFormat))
		}
	case *big.Int, *uint256.Int, fmt.Stringer:
		attr.Value = slog.StringValue(stringify(v))
	}
	return attr
}
