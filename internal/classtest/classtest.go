// Package classtest assembles class file bytes for tests. It writes the
// format directly so that parser tests do not depend on the encoder under
// test.
package classtest

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
)

// Attr is one attribute: a name index and a payload.
type Attr struct {
	Name uint16
	Info []byte
}

// Member is a field_info or method_info.
type Member struct {
	Flags      uint16
	Name       uint16
	Descriptor uint16
	Attrs      []Attr
}

// Class is a class file under construction. Pool helpers return the index
// they were given and never deduplicate.
type Class struct {
	Minor, Major uint16
	Flags        uint16
	This, Super  uint16
	Interfaces   []uint16
	Fields       []Member
	Methods      []Member
	Attrs        []Attr

	pool bytes.Buffer
	next uint16
}

// New returns a public class named name extending java/lang/Object.
func New(name string) *Class {
	c := &Class{Major: 52, Flags: 0x0021, next: 1}
	c.This = c.Class(name)
	c.Super = c.Class("java/lang/Object")
	return c
}

// Empty returns a class with nothing in its pool.
func Empty() *Class {
	return &Class{Major: 52, next: 1}
}

// Raw appends an entry with the given tag and payload and the number of
// slots it occupies.
func (c *Class) Raw(tag byte, slots uint16, payload ...byte) uint16 {
	index := c.next
	c.pool.WriteByte(tag)
	c.pool.Write(payload)
	c.next += slots
	return index
}

// Next is the index the next pool entry will get.
func (c *Class) Next() uint16 { return c.next }

func (c *Class) Utf8(s string) uint16 {
	return c.Raw(tagUtf8, 1, Cat(U2(uint16(len(s))), []byte(s))...)
}

func (c *Class) Integer(v int32) uint16 {
	return c.Raw(tagInteger, 1, U4(uint32(v))...)
}

func (c *Class) Float(bits uint32) uint16 {
	return c.Raw(tagFloat, 1, U4(bits)...)
}

func (c *Class) Long(v int64) uint16 {
	return c.Raw(tagLong, 2, U8(uint64(v))...)
}

func (c *Class) Double(v float64) uint16 {
	return c.Raw(tagDouble, 2, U8(math.Float64bits(v))...)
}

func (c *Class) Class(name string) uint16 {
	n := c.Utf8(name)
	return c.Raw(tagClass, 1, U2(n)...)
}

func (c *Class) Str(s string) uint16 {
	n := c.Utf8(s)
	return c.Raw(tagString, 1, U2(n)...)
}

func (c *Class) NameAndType(name, descriptor string) uint16 {
	n := c.Utf8(name)
	d := c.Utf8(descriptor)
	return c.Raw(tagNameAndType, 1, Cat(U2(n), U2(d))...)
}

func (c *Class) Fieldref(owner, name, descriptor string) uint16 {
	o := c.Class(owner)
	nt := c.NameAndType(name, descriptor)
	return c.Raw(tagFieldref, 1, Cat(U2(o), U2(nt))...)
}

func (c *Class) Methodref(owner, name, descriptor string) uint16 {
	o := c.Class(owner)
	nt := c.NameAndType(name, descriptor)
	return c.Raw(tagMethodref, 1, Cat(U2(o), U2(nt))...)
}

func (c *Class) InterfaceMethodref(owner, name, descriptor string) uint16 {
	o := c.Class(owner)
	nt := c.NameAndType(name, descriptor)
	return c.Raw(tagInterfaceMethodref, 1, Cat(U2(o), U2(nt))...)
}

func (c *Class) MethodHandle(kind byte, ref uint16) uint16 {
	return c.Raw(tagMethodHandle, 1, Cat([]byte{kind}, U2(ref))...)
}

func (c *Class) MethodType(descriptor string) uint16 {
	d := c.Utf8(descriptor)
	return c.Raw(tagMethodType, 1, U2(d)...)
}

func (c *Class) Dynamic(bsm uint16, name, descriptor string) uint16 {
	nt := c.NameAndType(name, descriptor)
	return c.Raw(tagDynamic, 1, Cat(U2(bsm), U2(nt))...)
}

func (c *Class) InvokeDynamic(bsm uint16, name, descriptor string) uint16 {
	nt := c.NameAndType(name, descriptor)
	return c.Raw(tagInvokeDynamic, 1, Cat(U2(bsm), U2(nt))...)
}

// Attr builds an attribute named name, adding the name to the pool.
func (c *Class) Attr(name string, info ...[]byte) Attr {
	return Attr{Name: c.Utf8(name), Info: Cat(info...)}
}

// Field adds a field and returns its position.
func (c *Class) Field(flags uint16, name, descriptor string, attrs ...Attr) int {
	c.Fields = append(c.Fields, Member{Flags: flags, Name: c.Utf8(name), Descriptor: c.Utf8(descriptor), Attrs: attrs})
	return len(c.Fields) - 1
}

// Method adds a method and returns its position.
func (c *Class) Method(flags uint16, name, descriptor string, attrs ...Attr) int {
	c.Methods = append(c.Methods, Member{Flags: flags, Name: c.Utf8(name), Descriptor: c.Utf8(descriptor), Attrs: attrs})
	return len(c.Methods) - 1
}

// Code builds the payload of a Code attribute.
func Code(maxStack, maxLocals uint16, code []byte, handlers [][4]uint16, attrs ...Attr) []byte {
	var b bytes.Buffer
	b.Write(U2(maxStack))
	b.Write(U2(maxLocals))
	b.Write(U4(uint32(len(code))))
	b.Write(code)
	b.Write(U2(uint16(len(handlers))))
	for _, h := range handlers {
		for _, v := range h {
			b.Write(U2(v))
		}
	}
	b.Write(Attrs(attrs))
	return b.Bytes()
}

// Attrs encodes a counted attribute table.
func Attrs(attrs []Attr) []byte {
	var b bytes.Buffer
	b.Write(U2(uint16(len(attrs))))
	for _, a := range attrs {
		b.Write(U2(a.Name))
		b.Write(U4(uint32(len(a.Info))))
		b.Write(a.Info)
	}
	return b.Bytes()
}

func members(ms []Member) []byte {
	var b bytes.Buffer
	b.Write(U2(uint16(len(ms))))
	for _, m := range ms {
		b.Write(U2(m.Flags))
		b.Write(U2(m.Name))
		b.Write(U2(m.Descriptor))
		b.Write(Attrs(m.Attrs))
	}
	return b.Bytes()
}

// Bytes assembles the class file.
func (c *Class) Bytes() []byte {
	var b bytes.Buffer
	b.Write(U4(0xCAFEBABE))
	b.Write(U2(c.Minor))
	b.Write(U2(c.Major))
	b.Write(U2(c.next))
	b.Write(c.pool.Bytes())
	b.Write(U2(c.Flags))
	b.Write(U2(c.This))
	b.Write(U2(c.Super))
	b.Write(U2(uint16(len(c.Interfaces))))
	for _, i := range c.Interfaces {
		b.Write(U2(i))
	}
	b.Write(members(c.Fields))
	b.Write(members(c.Methods))
	b.Write(Attrs(c.Attrs))
	return b.Bytes()
}

func U2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func U4(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func U8(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func U2s(vs ...uint16) []byte {
	out := U2(uint16(len(vs)))
	for _, v := range vs {
		out = append(out, U2(v)...)
	}
	return out
}

func Cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
