package extract

import (
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// ReadTXT reads a plain-text report. Content is expected to be UTF-8; on
// invalid UTF-8 a GBK decode is attempted, since older mainland CSR report
// dumps commonly ship in GBK. If neither decodes, the file is not readable.
func ReadTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &NotReadableError{Path: path, Err: err}
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", &NotReadableError{Path: path, Err: err}
	}
	return string(decoded), nil
}
