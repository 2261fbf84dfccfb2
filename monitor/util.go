// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package monitor

import (
	"fmt"
	"strconv"
	"strings"
)

var hexString = "0123456789ABCDEF"

func addrToBuf(addr uint16, b []byte) {
	b[0] = hexString[(addr>>12)&0xf]
	b[1] = hexString[(addr>>8)&0xf]
	b[2] = hexString[(addr>>4)&0xf]
	b[3] = hexString[addr&0xf]
}

func byteToBuf(v byte, b []byte) {
	b[0] = hexString[(v>>4)&0xf]
	b[1] = hexString[v&0xf]
}

func toPrintableChar(v byte) byte {
	if v >= 32 && v < 127 {
		return v
	}
	return '.'
}

func stringToBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

// parseNumber accepts a hex literal prefixed with '$' or "0x", or a plain
// decimal integer, the two numeric forms the teacher's expression parser
// supported without needing the label/export bookkeeping that came along
// with its cross-assembler.
func parseNumber(s string) (uint32, error) {
	switch {
	case strings.HasPrefix(s, "$"):
		v, err := strconv.ParseUint(s[1:], 16, 32)
		return uint32(v), err
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	default:
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err
	}
}

func codeString(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
