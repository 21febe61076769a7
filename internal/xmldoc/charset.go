package xmldoc

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var declaredEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*?\bencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// toUTF8 transcodes data to UTF-8. A byte order mark decides between UTF-8
// and UTF-16; without one, the charset named in the XML declaration is
// decoded. Unicode labels are taken as UTF-8: the provider declares utf-16
// while sending 8-bit bytes.
func toUTF8(data []byte) ([]byte, error) {
	if hasBOM(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		return out, err
	}

	m := declaredEncoding.FindSubmatch(data)
	if m == nil {
		return data, nil
	}
	label := strings.ToLower(string(m[1]))
	switch label {
	case "utf-8", "utf8", "utf-16", "utf16", "utf-16le", "utf-16be", "ucs-2":
		return data, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Bytes(data)
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

// utf8Reader is the XML decoder's charset hook. toUTF8 has already
// transcoded the input, so any declared charset reads it unchanged.
func utf8Reader(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
