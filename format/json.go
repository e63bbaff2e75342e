package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/classguard/classfile"
)

type JSONEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildClassData(), "", "  ")
}

type jsonClass struct {
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	SuperClass   string          `json:"superClass,omitempty"`
	Interfaces   []string        `json:"interfaces,omitempty"`
	AccessFlags  uint16          `json:"accessFlags"`
	Version      jsonVersion     `json:"version"`
	ConstantPool []jsonEntry     `json:"constantPool"`
	Fields       []jsonMember    `json:"fields,omitempty"`
	Methods      []jsonMember    `json:"methods,omitempty"`
	Attributes   []jsonAttribute `json:"attributes,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonEntry struct {
	Index uint16 `json:"index"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type jsonMember struct {
	Name        string          `json:"name"`
	Descriptor  string          `json:"descriptor"`
	Type        string          `json:"type"`
	AccessFlags uint16          `json:"accessFlags"`
	Attributes  []jsonAttribute `json:"attributes,omitempty"`
}

type jsonAttribute struct {
	Name       string          `json:"name"`
	State      string          `json:"state"`
	Length     int             `json:"length"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	c := e.class
	cp := c.ConstantPool
	data := jsonClass{
		Name:        c.ClassName(),
		Kind:        classKind(c),
		SuperClass:  c.SuperClassName(),
		Interfaces:  c.InterfaceNames(),
		AccessFlags: uint16(c.AccessFlags),
		Version:     jsonVersion{Major: c.MajorVersion, Minor: c.MinorVersion},
		Attributes:  e.buildAttributes(c.Attributes),
	}
	for index, entry := range cp.All() {
		data.ConstantPool = append(data.ConstantPool, jsonEntry{Index: index, Tag: entry.Tag().String(), Value: DescribeEntry(entry)})
	}
	for i := range c.Fields {
		f := &c.Fields[i]
		data.Fields = append(data.Fields, jsonMember{
			Name:        f.Name(cp),
			Descriptor:  f.Descriptor(cp),
			Type:        f.ParsedDescriptor(cp).String(),
			AccessFlags: uint16(f.AccessFlags),
			Attributes:  e.buildAttributes(f.Attributes),
		})
	}
	for i := range c.Methods {
		m := &c.Methods[i]
		data.Methods = append(data.Methods, jsonMember{
			Name:        m.Name(cp),
			Descriptor:  m.Descriptor(cp),
			Type:        m.ParsedDescriptor(cp).String(),
			AccessFlags: uint16(m.AccessFlags),
			Attributes:  e.buildAttributes(m.Attributes),
		})
	}
	return data
}

func (e *JSONEncoder) buildAttributes(attrs []classfile.AttributeInfo) []jsonAttribute {
	var result []jsonAttribute
	for i := range attrs {
		a := &attrs[i]
		payload, _ := a.Payload()
		ja := jsonAttribute{
			Name:   a.Name(e.class.ConstantPool),
			State:  attributeState(a),
			Length: len(payload),
		}
		if code := a.AsCode(); code != nil {
			ja.Attributes = e.buildAttributes(code.Attributes)
		}
		result = append(result, ja)
	}
	return result
}
