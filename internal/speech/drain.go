package speech

import (
	"bytes"
	"encoding/base64"
	"io"
)

// Drain reads r to EOF, concatenating chunks in arrival order.
func Drain(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeBase64(audio []byte) string {
	return base64.StdEncoding.EncodeToString(audio)
}

// IsMP3 reports whether b starts with an ID3v2 tag or an MPEG audio frame sync.
func IsMP3(b []byte) bool {
	if len(b) >= 3 && b[0] == 'I' && b[1] == 'D' && b[2] == '3' {
		return true
	}
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}
