package vast

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/vastmap/pkg/errors"
)

// ReadJSON decodes a VAST document from r.
//
// ReadJSON only decodes; call [Validate] before using the result. Decoding
// failures are returned with code PARSE_ERROR. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode json")
	}
	return &doc, nil
}

// ReadTOML decodes a VAST document written as TOML, with the tree under a
// [vast] table and children as [[vast.children]] arrays of tables.
func ReadTOML(r io.Reader) (*Document, error) {
	var doc Document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode toml")
	}
	return &doc, nil
}

// ImportFile reads the document at path, choosing the decoder from the file
// extension (.toml selects TOML, anything else JSON).
//
// A file that cannot be opened fails with code IO_ERROR; the error wraps the
// underlying cause with the path for context.
func ImportFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ReadTOML(f)
	}
	return ReadJSON(f)
}
