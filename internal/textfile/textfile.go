// Package textfile loads input text from files or stdin.
package textfile

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads the whole file at path; "-" reads stdin. Trailing newlines are
// trimmed and empty input is rejected.
func Load(path string) (string, error) {
	if path == "-" {
		return Read(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	return Read(file)
}

// Read consumes r with the same rules as Load.
func Read(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("input is empty")
	}
	return text, nil
}
