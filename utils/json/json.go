// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides JSON serialization utilities for numeric types.
package json

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const Null = "null"

var errOddWords = errors.New("hex string is not a whole number of 32-bit words")

// Uint64 is a uint64 that can be JSON marshaled as a string.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == Null {
		return nil
	}
	str = unquote(str)
	val, err := strconv.ParseUint(str, 10, 64)
	*u = Uint64(val)
	return err
}

// Float64 is a float64 that can be JSON marshaled as a string.
type Float64 float64

func (f Float64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatFloat(float64(f), 'f', 4, 64) + `"`), nil
}

func (f *Float64) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == Null {
		return nil
	}
	str = unquote(str)
	val, err := strconv.ParseFloat(str, 64)
	*f = Float64(val)
	return err
}

// Words is a little endian word array marshaled as one big endian hex
// string, most significant word first.
type Words []uint32

func (w Words) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.Grow(3 + 8*len(w))
	sb.WriteString(`"0x`)
	for i := len(w) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%08x", w[i])
	}
	sb.WriteByte('"')
	return []byte(sb.String()), nil
}

func (w *Words) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == Null {
		return nil
	}
	str = strings.TrimPrefix(unquote(str), "0x")
	if len(str)%8 != 0 {
		return errOddWords
	}
	n := len(str) / 8
	words := make(Words, n)
	for i := range words {
		hi := len(str) - 8*i
		val, err := strconv.ParseUint(str[hi-8:hi], 16, 32)
		if err != nil {
			return err
		}
		words[i] = uint32(val)
	}
	*w = words
	return nil
}

func unquote(str string) string {
	if len(str) >= 2 {
		if lastIndex := len(str) - 1; str[0] == '"' && str[lastIndex] == '"' {
			return str[1:lastIndex]
		}
	}
	return str
}
