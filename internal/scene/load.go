package scene

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"shadeweave/internal/source"
)

// Format is a scene document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for paths whose extension names no known format.
var ErrUnknownFormat = errors.New("unknown scene format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", path)
}

// Load reads and decodes the scene at path.
func Load(path string) (*Scene, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, _, err := source.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	s, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return s, nil
}

// Decode parses data in the given format. Input may be UTF-8 or BOM-marked UTF-16.
// Unknown fields are rejected. Fragment code has CRLF normalised to LF and entity
// names are NFC-normalised.
func Decode(data []byte, format Format) (*Scene, error) {
	utf8, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, errors.Wrap(err, "decode text")
	}

	var s Scene
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(utf8))
		dec.DisallowUnknownFields()
		err = dec.Decode(&s)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(utf8))
		dec.KnownFields(true)
		err = dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		var meta toml.MetaData
		meta, err = toml.Decode(string(utf8), &s)
		if err == nil {
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				err = errors.Newf("unknown field %q", undecoded[0].String())
			}
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if err != nil {
		return nil, err
	}
	s.normalize()
	return &s, nil
}

func (s *Scene) normalize() {
	name := func(n string) string { return norm.NFC.String(strings.TrimSpace(n)) }
	for i := range s.Uniforms {
		s.Uniforms[i].Name = name(s.Uniforms[i].Name)
	}
	for i := range s.Matrices {
		s.Matrices[i].Name = name(s.Matrices[i].Name)
	}
	for i := range s.Objects {
		o := &s.Objects[i]
		o.Name = name(o.Name)
		o.Matrix = name(o.Matrix)
		if o.Portal != nil {
			o.Portal.A = name(o.Portal.A)
			o.Portal.B = name(o.Portal.B)
		}
		o.Code = source.NormalizeText(o.Code)
	}
	for i := range s.Materials {
		s.Materials[i].Name = name(s.Materials[i].Name)
		s.Materials[i].Code = source.NormalizeText(s.Materials[i].Code)
	}
	for i := range s.Textures {
		s.Textures[i].Name = name(s.Textures[i].Name)
	}
	for i := range s.Library {
		s.Library[i].Name = name(s.Library[i].Name)
		s.Library[i].Code = source.NormalizeText(s.Library[i].Code)
	}
}
