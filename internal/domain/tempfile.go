package domain

import (
	"os"

	"github.com/Vovarama1992/voice_relay/internal/apperr"
)

// withScopedTempFile writes data to a new file in dir and hands its path to fn.
// The file is removed before returning on every path, panics included.
func withScopedTempFile(dir, suffix string, data []byte, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, "upload-*"+suffix)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "create temp file", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return apperr.Wrap(apperr.Internal, "write temp file", err)
	}
	if err := f.Close(); err != nil {
		return apperr.Wrap(apperr.Internal, "close temp file", err)
	}

	return fn(path)
}
