// Package cos provides common low-level types and utilities shared by the
// ocland client and server.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package cos

import (
	"github.com/teris-io/shortid"
)

// Alphabet for generating session IDs, carried over from aistore's
// shortid.DEFAULT_ABC-derived alphabet.
const uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const LenShortID = 9 // per https://github.com/teris-io/shortid#id-length

var sid *shortid.Shortid

func InitShortID(seed uint64) {
	sid = shortid.MustNew(4 /*worker*/, uuidABC, seed)
}

// GenSessionID returns a short opaque ID used only for log correlation of
// one accepted connection; it never appears on the wire.
func GenSessionID() string {
	if sid == nil {
		InitShortID(1)
	}
	return sid.MustGenerate()
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsAlphaNice reports whether s is a valid short-ID-shaped string: letters,
// digits, '-', '_', not starting or ending with a separator.
func IsAlphaNice(s string) bool {
	l := len(s)
	if l == 0 || l > 32 {
		return false
	}
	for i := range l {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') {
			continue
		}
		if c != '-' && c != '_' {
			return false
		}
		if i == 0 || i == l-1 {
			return false
		}
	}
	return true
}
