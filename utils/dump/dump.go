package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/kr/pretty"
	"gopkg.in/yaml.v3"

	"github.com/gwuhaolin/amf0kit/protocol/amf0"
)

// Output formats
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatCBOR   = "cbor"
	FormatHex    = "hex"
)

// Formats lists every supported output format
var Formats = []string{FormatPretty, FormatJSON, FormatYAML, FormatCBOR, FormatHex}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dump: CBOR encoder initialization failed: " + err.Error())
	}
}

// Dump writes a labelled rendering of v to w
func Dump(w io.Writer, format, label string, v amf0.Value) error {
	var err error
	switch format {
	case FormatPretty:
		fmt.Fprintf(w, "Dumping %s:\n", label)
		err = Pretty(w, v)
	case FormatJSON:
		fmt.Fprintf(w, "Dumping %s:\n", label)
		err = JSON(w, v)
	case FormatYAML:
		fmt.Fprintf(w, "# %s\n", label)
		err = YAML(w, v)
	case FormatCBOR:
		fmt.Fprintf(w, "Dumping %s:\n", label)
		err = CBORDiag(w, v)
	case FormatHex:
		var b []byte
		if b, err = amf0.Marshal(v); err == nil {
			Bytes(w, label, b)
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("Error dumping %s: %w", label, err)
	}
	return nil
}

// Bytes dumps bytes as hex
func Bytes(w io.Writer, label string, buf []byte) {
	fmt.Fprintf(w, "Dumping %s (%d bytes):\n", label, len(buf))
	for i, b := range buf {
		if i > 0 {
			if i%16 == 0 {
				fmt.Fprint(w, "\n")
			} else {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprintf(w, "0x%02x", b)
	}
	fmt.Fprint(w, "\n")
}

// Pretty writes v as indented Go syntax
func Pretty(w io.Writer, v amf0.Value) error {
	_, err := pretty.Fprintf(w, "%# v\n", v)
	return err
}

// JSON writes v as indented JSON with object keys in wire order.
// Undefined renders as null and non finite numbers as strings.
func JSON(w io.Writer, v amf0.Value) error {
	var raw bytes.Buffer
	if err := appendJSON(&raw, v); err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}

func appendJSON(buf *bytes.Buffer, v amf0.Value) error {
	switch v := v.(type) {
	case nil, amf0.Null, amf0.Undefined:
		buf.WriteString("null")
	case amf0.Number:
		appendJSONNumber(buf, float64(v))
	case amf0.Date:
		appendJSONNumber(buf, float64(v))
	case amf0.Boolean:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case amf0.String, amf0.LongString, amf0.XMLDocument, amf0.Reference:
		return appendJSONValue(buf, amf0.Interface(v))
	case amf0.Object:
		return appendJSONObject(buf, v)
	case amf0.ECMAArray:
		return appendJSONObject(buf, v)
	case amf0.TypedObject:
		return appendJSONObject(buf, v.Properties)
	case amf0.StrictArray:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
	return nil
}

func appendJSONNumber(buf *bytes.Buffer, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteString(strconv.Quote(strconv.FormatFloat(f, 'g', -1, 64)))
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func appendJSONValue(buf *bytes.Buffer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func appendJSONObject(buf *bytes.Buffer, props []amf0.Property) error {
	buf.WriteByte('{')
	for i, p := range props {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendJSONValue(buf, p.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := appendJSON(buf, p.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// YAML writes v as a YAML document with mapping keys in wire order
func YAML(w io.Writer, v amf0.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(v)); err != nil {
		return err
	}
	return enc.Close()
}

func yamlNode(v amf0.Value) *yaml.Node {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	mapping := func(tag string, props []amf0.Property) *yaml.Node {
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: tag}
		for _, p := range props {
			n.Content = append(n.Content, scalar("!!str", p.Key), yamlNode(p.Value))
		}
		return n
	}

	switch v := v.(type) {
	case amf0.Number:
		return scalar("", yamlFloat(float64(v)))
	case amf0.Date:
		return scalar("", yamlFloat(float64(v)))
	case amf0.Boolean:
		return scalar("", strconv.FormatBool(bool(v)))
	case amf0.String:
		return scalar("!!str", string(v))
	case amf0.LongString:
		return scalar("!!str", string(v))
	case amf0.XMLDocument:
		return scalar("!!str", string(v))
	case amf0.Reference:
		return scalar("", strconv.Itoa(int(v)))
	case amf0.Object:
		return mapping("", v)
	case amf0.ECMAArray:
		return mapping("", v)
	case amf0.TypedObject:
		n := mapping("", v.Properties)
		if v.ClassName != "" {
			n.Tag = "!" + v.ClassName
		}
		return n
	case amf0.StrictArray:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range v {
			n.Content = append(n.Content, yamlNode(e))
		}
		return n
	}
	return scalar("", "null")
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// CBOR returns v transcoded to deterministic CBOR. Map keys come out
// sorted and class names are dropped.
func CBOR(v amf0.Value) ([]byte, error) {
	return encMode.Marshal(amf0.Interface(v))
}

// CBORDiag writes the CBOR diagnostic notation of v
func CBORDiag(w io.Writer, v amf0.Value) error {
	b, err := CBOR(v)
	if err != nil {
		return err
	}
	diag, err := cbor.Diagnose(b)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, diag)
	return err
}
