// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package shell

import (
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"
)

var reSafe = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// Quote single-quotes s for sh.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Arg returns s unchanged when it needs no quoting, Quote(s) otherwise.
func Arg(s string) string {
	if reSafe.MatchString(s) {
		return s
	}
	return Quote(s)
}

// Unquote decodes a shell word the way sh would: single quotes, double
// quotes with their backslash escapes and bare backslash escapes. It
// reverses Quote and DoubleQuote. Only the first word counts; unbalanced
// quoting yields the trimmed input.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	words, err := shellquote.Split(s)
	if err != nil {
		return s
	}
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

var dquote = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`", "\n", " ", "\r", " ")

// DoubleQuote wraps s in double quotes, escaping what sh would expand.
func DoubleQuote(s string) string {
	return `"` + dquote.Replace(s) + `"`
}

// SingleLine folds line breaks into spaces.
func SingleLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
