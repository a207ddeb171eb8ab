package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/vmihailenco/msgpack.v2"

	"github.com/tremor-rt/tremor/stdlib"
	"github.com/tremor-rt/tremor/value"
)

// codec reads/writes one event at a time from/to a byte stream. "json"
// frames events one-per-line (newline-delimited JSON, the connector
// convention spec.md §6 assumes for file-backed testing); "msgpack"
// frames events back-to-back with no delimiter, relying on the decoder
// to know where one value ends.
type codec struct {
	name string
	reg  *stdlib.Registry
}

func newCodec(name string, reg *stdlib.Registry) (*codec, error) {
	switch name {
	case "", "json", "msgpack":
		if name == "" {
			name = "json"
		}
		return &codec{name: name, reg: reg}, nil
	}
	return nil, fmt.Errorf("unknown codec %q (want json or msgpack)", name)
}

// decodeAll reads every event out of r.
func (c *codec) decodeAll(r io.Reader) ([]value.Value, error) {
	switch c.name {
	case "json":
		return c.decodeJSONLines(r)
	case "msgpack":
		return c.decodeMsgpackStream(r)
	}
	return nil, fmt.Errorf("unknown codec %q", c.name)
}

func (c *codec) decodeJSONLines(r io.Reader) ([]value.Value, error) {
	var out []value.Value
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := c.reg.Call("json", "decode", []value.Value{value.Str(line)})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *codec) decodeMsgpackStream(r io.Reader) ([]value.Value, error) {
	dec := msgpack.NewDecoder(r)
	var out []value.Value
	for {
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		out = append(out, fromGoMsgpack(raw))
	}
	return out, nil
}

// encode writes one value followed by the codec's framing.
func (c *codec) encode(w io.Writer, v value.Value) error {
	switch c.name {
	case "json":
		s, err := c.reg.Call("json", "encode", []value.Value{v})
		if err != nil {
			return err
		}
		str, _ := s.(value.Str)
		_, err = fmt.Fprintln(w, string(str))
		return err
	case "msgpack":
		b, err := msgpack.Marshal(toGoMsgpack(v))
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unknown codec %q", c.name)
}

func toGoMsgpack(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		return bool(x)
	case value.Int:
		return int64(x)
	case value.Float:
		return float64(x)
	case value.Str:
		return string(x)
	case value.Bytes:
		return []byte(x)
	case *value.Array:
		out := make([]interface{}, len(x.Items))
		for i, item := range x.Items {
			out[i] = toGoMsgpack(item)
		}
		return out
	case *value.Record:
		out := make(map[string]interface{}, x.Len())
		for _, k := range x.Keys() {
			out[k] = toGoMsgpack(x.Get(k))
		}
		return out
	}
	return nil
}

func fromGoMsgpack(v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(x)
	case int64:
		return value.Int(x)
	case uint64:
		return value.Int(int64(x))
	case float64:
		return value.Float(x)
	case float32:
		return value.Float(float64(x))
	case string:
		return value.Str(x)
	case []byte:
		return value.Bytes(x)
	case []interface{}:
		out := &value.Array{}
		for _, item := range x {
			out.Items = append(out.Items, fromGoMsgpack(item))
		}
		return out
	case map[interface{}]interface{}:
		out := value.NewRecord()
		for k, item := range x {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out.Set(ks, fromGoMsgpack(item))
		}
		return out
	}
	return value.Null{}
}
