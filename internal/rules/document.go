// internal/rules/document.go
//
// YAML persistence for rule sets and for the fragments the editor copies
// around on its own (pieces, players, layout).
//
// Reading yields an Unchecked rule set; only a Checked rule set is written,
// so every saved document has passed validation.
package rules

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads one rule document. Unknown keys are rejected.
func Load(r io.Reader) (*Unchecked, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var u Unchecked
	if err := dec.Decode(&u); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &FormatError{Err: err}
	}
	return &u, nil
}

// LoadBytes reads a rule document from memory.
func LoadBytes(data []byte) (*Unchecked, error) { return Load(bytes.NewReader(data)) }

// LoadFile reads a rule document from disk.
func LoadFile(path string) (*Unchecked, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	defer f.Close()
	return Load(f)
}

// Save writes the rule set as YAML.
func (c *Checked) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&c.data); err != nil {
		return &FormatError{Err: err}
	}
	if err := enc.Close(); err != nil {
		return &FormatError{Err: err}
	}
	return nil
}

// Bytes returns the YAML document for the rule set.
func (c *Checked) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile writes the rule set to path, replacing any existing file.
func (c *Checked) SaveFile(path string) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FormatError{Err: err}
	}
	return nil
}

func MarshalPieces(ps Pieces) ([]byte, error)   { return marshalFragment(ps) }
func MarshalPlayers(ps Players) ([]byte, error) { return marshalFragment(ps) }
func MarshalLayout(l Layout) ([]byte, error)    { return marshalFragment(l) }

func UnmarshalPieces(data []byte) (Pieces, error)   { return unmarshalFragment[Pieces](data) }
func UnmarshalPlayers(data []byte) (Players, error) { return unmarshalFragment[Players](data) }
func UnmarshalLayout(data []byte) (Layout, error)   { return unmarshalFragment[Layout](data) }

func marshalFragment[T any](v T) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	return data, nil
}

func unmarshalFragment[T any](data []byte) (T, error) {
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return v, &FormatError{Err: err}
	}
	return v, nil
}
