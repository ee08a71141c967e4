// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"go.uber.org/zap/zapcore"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, &buf)
	buf.WriteString(redact.Sprintf(format, args...).StripMarkers())
	return buf.String()
}

// formatTags writes the log tags of ctx as "[tag1,tag2=val] ".
func formatTags(ctx context.Context, buf *strings.Builder) {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return
	}
	buf.WriteByte('[')
	buf.WriteString(tags.String())
	buf.WriteString("] ")
}

// addStructured formats an entry and writes it to the main logger at the
// given level.
func addStructured(ctx context.Context, lvl zapcore.Level, format string, args []interface{}) {
	l := mainLog.Load()
	var buf strings.Builder
	formatTags(ctx, &buf)
	msg := redact.Sprintf(format, args...)
	if l.redact {
		buf.WriteString(string(msg.Redact()))
	} else {
		buf.WriteString(msg.StripMarkers())
	}
	if ce := l.zl.Check(lvl, buf.String()); ce != nil {
		ce.Write()
	}
}
