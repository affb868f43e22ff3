package model

import (
	"encoding/json"
	"unicode/utf16"
	"unicode/utf8"
)

// Encode serializes the document as compact JSON with every non-ASCII rune
// written as a \uXXXX escape.
func Encode(r *Root) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return EscapeNonASCII(data), nil
}

// Decode parses a JSON document. Unknown wire tokens in enum fields are errors.
func Decode(data []byte) (*Root, error) {
	var r Root
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

const hex = "0123456789abcdef"

// EscapeNonASCII rewrites runes >= 0x80 as \uXXXX (surrogate pairs above the BMP).
// The input must be JSON, where such runes can only occur inside strings.
func EscapeNonASCII(data []byte) []byte {
	ascii := true
	for _, b := range data {
		if b >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return data
	}
	out := make([]byte, 0, len(data)+len(data)/4)
	for len(data) > 0 {
		if data[0] < utf8.RuneSelf {
			out = append(out, data[0])
			data = data[1:]
			continue
		}
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			out = appendEscape(out, r1)
			out = appendEscape(out, r2)
		} else {
			out = appendEscape(out, r)
		}
	}
	return out
}

func appendEscape(b []byte, r rune) []byte {
	return append(b, '\\', 'u', hex[r>>12&0xf], hex[r>>8&0xf], hex[r>>4&0xf], hex[r&0xf])
}
