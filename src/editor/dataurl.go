package editor

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidDataURL = errors.New("attachment is not a base64 data URL")

// EncodeDataURL encodes data as data:<mime>;base64,<payload> with the MIME
// type sniffed from the content
func EncodeDataURL(data []byte) string {
	mime := strings.ReplaceAll(mimetype.Detect(data).String(), " ", "")
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL reverses EncodeDataURL
func DecodeDataURL(s string) (mime string, data []byte, err error) {
	mime, payload, err := splitDataURL(s)
	if err != nil {
		return "", nil, err
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidDataURL, err)
	}
	return mime, data, nil
}

// DataURLInfo returns the MIME type and decoded size of a base64 data URL
// without decoding the payload
func DataURLInfo(s string) (mime string, size int, err error) {
	mime, payload, err := splitDataURL(s)
	if err != nil {
		return "", 0, err
	}
	padding := len(payload) - len(strings.TrimRight(payload, "="))
	return mime, len(payload)/4*3 - padding, nil
}

func splitDataURL(s string) (mime, payload string, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", "", ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", ErrInvalidDataURL
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", "", ErrInvalidDataURL
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return mime, payload, nil
}
