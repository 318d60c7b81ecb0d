// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrRejected is matched by every *RejectError.
var ErrRejected = errors.New("address rejected")

// RejectError names the rule that turned an address down.
type RejectError struct {
	Address string
	Rule    string // "empty", "control", "block" or "allow"
	Expr    string
}

func (e *RejectError) Error() string {
	switch e.Rule {
	case "block":
		return fmt.Sprintf("%q matches block expression '%s'", e.Address, e.Expr)
	case "allow":
		return fmt.Sprintf("%q matches no allow expression", e.Address)
	case "control":
		return fmt.Sprintf("%q contains control characters", e.Address)
	}
	return "empty address"
}

func (e *RejectError) Is(target error) bool { return target == ErrRejected }

// Validator decides whether a capture source or output path may be used.
type Validator interface {
	Check(addr string) error
}

type validator struct {
	allow []*regexp.Regexp
	block []*regexp.Regexp
}

// NewValidator builds a Validator from allow and block expressions.
// Block wins over allow; no allow expressions means everything not blocked passes.
// Empty addresses and addresses with control characters never pass: they
// end up on a single line of the task script.
func NewValidator(allow, block []string) (Validator, error) {
	a, err := compileAll("allow", allow)
	if err != nil {
		return nil, err
	}
	b, err := compileAll("block", block)
	if err != nil {
		return nil, err
	}
	return &validator{allow: a, block: b}, nil
}

func compileAll(kind string, exps []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, exp := range exps {
		if exp = strings.TrimSpace(exp); exp == "" {
			continue
		}
		re, err := regexp.Compile(exp)
		if err != nil {
			return nil, fmt.Errorf("invalid %s expression '%s': %w", kind, exp, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func (v *validator) Check(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return &RejectError{Address: addr, Rule: "empty"}
	}
	if strings.IndexFunc(addr, unicode.IsControl) >= 0 {
		return &RejectError{Address: addr, Rule: "control"}
	}
	for _, e := range v.block {
		if e.MatchString(addr) {
			return &RejectError{Address: addr, Rule: "block", Expr: e.String()}
		}
	}
	if len(v.allow) == 0 {
		return nil
	}
	for _, e := range v.allow {
		if e.MatchString(addr) {
			return nil
		}
	}
	return &RejectError{Address: addr, Rule: "allow"}
}
