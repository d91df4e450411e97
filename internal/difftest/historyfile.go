package difftest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// DecodeHistory parses a JSONC array of operations. Comments and trailing
// commas are allowed.
func DecodeHistory(data []byte) (History, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONC: %w", ErrHistoryFile, err)
	}

	var h History

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	err = dec.Decode(&h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryFile, err)
	}

	if len(h) == 0 {
		return nil, ErrEmptyHistory
	}

	for i, op := range h {
		err := op.Validate()
		if err != nil {
			return nil, fmt.Errorf("%w: operation %d: %w", ErrHistoryFile, i, err)
		}
	}

	return h, nil
}

// ReadHistoryFile reads and decodes a history file.
func ReadHistoryFile(path string) (History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return DecodeHistory(data)
}

// EncodeHistory renders h as formatted JSONC with each line of header as a
// leading comment.
func EncodeHistory(h History, header string) ([]byte, error) {
	var buf bytes.Buffer

	if header != "" {
		for line := range strings.SplitSeq(strings.TrimRight(header, "\n"), "\n") {
			buf.WriteString("// ")
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	// One operation per line keeps long histories diffable.
	buf.WriteString("[\n")

	for _, op := range h {
		line, err := json.Marshal(op)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", op, err)
		}

		buf.Write(line)
		buf.WriteString(",\n")
	}

	buf.WriteString("]\n")

	formatted, err := hujson.Format(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting history: %w", err)
	}

	return formatted, nil
}

// WriteHistory writes h to w.
func WriteHistory(w io.Writer, h History, header string) error {
	data, err := EncodeHistory(h, header)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// WriteHistoryFile atomically replaces path with the encoded history.
func WriteHistoryFile(path string, h History, header string) error {
	data, err := EncodeHistory(h, header)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing history %s: %w", path, err)
	}

	return nil
}
