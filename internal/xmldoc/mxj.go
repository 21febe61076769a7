package xmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

const (
	seqKey  = "#seq"
	textKey = "#text"
)

func init() {
	mxj.XmlCharsetReader = utf8Reader
}

// NewParser returns the default Parser, backed by mxj's sequenced
// XML-to-map decoding.
func NewParser() Parser {
	return mapParser{}
}

// Parse parses data with the default Parser.
func Parse(data []byte) (Node, error) {
	return NewParser().Parse(data)
}

type mapParser struct{}

func (mapParser) Parse(data []byte) (Node, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("xmldoc: decode body: %w", err)
	}

	// The sequenced decoder stops with NoRoot at every prolog token (the XML
	// declaration, comments, directives); the next call resumes after it.
	r := bytes.NewReader(data)
	for {
		m, err := mxj.NewMapXmlSeqReader(r)
		if errors.Is(err, mxj.NoRoot) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil, errors.New("xmldoc: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("xmldoc: %w", err)
		}
		return mapNode{v: map[string]interface{}(m)}, nil
	}
}

// mapNode wraps one value of an mxj sequenced map: a nested map holding
// child elements plus "#seq", "#text" and "#attr" entries, or a string for
// an empty element.
type mapNode struct {
	v interface{}
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case mxj.MapSeq:
		return map[string]interface{}(m), true
	}
	return nil, false
}

// isElementKey filters out mxj's "#"-prefixed keys: sequence numbers, text,
// attributes, comments and processing instructions.
func isElementKey(k string) bool {
	return k != "" && !strings.HasPrefix(k, "#")
}

func seqOf(v interface{}) (int, bool) {
	m, ok := asMap(v)
	if !ok {
		return 0, false
	}
	n, ok := m[seqKey].(int)
	return n, ok
}

func (n mapNode) Child(name string) (Node, bool) {
	m, ok := asMap(n.v)
	if !ok || !isElementKey(name) {
		return nil, false
	}
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return mapNode{v: v}, true
}

type entry struct {
	name   string
	v      interface{}
	seq    int
	hasSeq bool
}

func (n mapNode) Children() []Field {
	m, ok := asMap(n.v)
	if !ok {
		return nil
	}
	var entries []entry
	add := func(name string, v interface{}) {
		seq, ok := seqOf(v)
		entries = append(entries, entry{name: name, v: v, seq: seq, hasSeq: ok})
	}
	for k, v := range m {
		if !isElementKey(k) {
			continue
		}
		if list, ok := v.([]interface{}); ok {
			for _, item := range list {
				add(k, item)
			}
			continue
		}
		add(k, v)
	}

	// Sequenced entries keep document order. Entries without a sequence
	// number (maps not built by the sequenced decoder) follow, with numbered
	// siblings such as Err1, Err2, Err10 in natural order.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.hasSeq != b.hasSeq {
			return a.hasSeq
		}
		if a.hasSeq {
			return a.seq < b.seq
		}
		return naturalLess(a.name, b.name)
	})

	fields := make([]Field, len(entries))
	for i, e := range entries {
		fields[i] = Field{Name: e.name, Node: mapNode{v: e.v}}
	}
	return fields
}

func (n mapNode) Text() (string, bool) {
	switch v := n.v.(type) {
	case string:
		return v, true
	case nil:
		return "", true
	case map[string]interface{}, mxj.MapSeq:
		m, _ := asMap(v)
		for k := range m {
			if isElementKey(k) {
				return "", false
			}
		}
		switch t := m[textKey].(type) {
		case nil:
			return "", true
		case string:
			return t, true
		default:
			return fmt.Sprint(t), true
		}
	case []interface{}:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

func (n mapNode) Empty() bool {
	if len(n.Children()) > 0 {
		return false
	}
	s, _ := n.Text()
	return s == ""
}

// naturalLess orders strings by their non-numeric prefix, then by the value
// of a trailing run of digits.
func naturalLess(a, b string) bool {
	pa, na, oka := splitNumericSuffix(a)
	pb, nb, okb := splitNumericSuffix(b)
	if pa != pb || !oka || !okb {
		if pa == pb {
			return !oka && okb
		}
		return a < b
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitNumericSuffix(s string) (prefix string, n uint64, ok bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.ParseUint(s[i:], 10, 64)
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}
