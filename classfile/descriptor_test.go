package classfile

import "testing"

func TestFieldTypes(t *testing.T) {
	tests := []struct {
		desc       string
		baseType   string
		className  string
		arrayDepth int
	}{
		{"I", "int", "", 0},
		{"Z", "boolean", "", 0},
		{"Ljava/lang/String;", "", "java/lang/String", 0},
		{"[I", "int", "", 1},
		{"[[D", "double", "", 2},
		{"[Ljava/lang/Object;", "", "java/lang/Object", 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			d := ParseDescriptor(tt.desc)
			if d.Kind != DescriptorField {
				t.Fatalf("Kind = %s, want field", d.Kind)
			}
			ft := d.Field
			if ft.BaseType != tt.baseType {
				t.Errorf("BaseType = %q, want %q", ft.BaseType, tt.baseType)
			}
			if ft.ClassName != tt.className {
				t.Errorf("ClassName = %q, want %q", ft.ClassName, tt.className)
			}
			if ft.ArrayDepth != tt.arrayDepth {
				t.Errorf("ArrayDepth = %d, want %d", ft.ArrayDepth, tt.arrayDepth)
			}
		})
	}
}

func TestDescriptorString(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"I", "int"},
		{"[[D", "double[][]"},
		{"Ljava/util/Map$Entry;", "java.util.Map$Entry"},
		{"()V", "() void"},
		{"(IDLjava/lang/Thread;)Ljava/lang/Object;", "(int, double, java.lang.Thread) java.lang.Object"},
		{"([Ljava/lang/String;)[I", "(java.lang.String[]) int[]"},
		{"(K)V", "illegal"},
		{"", "illegal"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := ParseDescriptor(tt.desc).String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		desc   string
		kind   DescriptorKind
		params int
	}{
		{"(I[Ljava/lang/String;)V", DescriptorMethod, 2},
		{"()V", DescriptorMethod, 0},
		{"(JD)[[Ljava/lang/Object;", DescriptorMethod, 2},
		{"I", DescriptorField, -1},
		{"[[Z", DescriptorField, -1},
		{"Ljava/util/Map$Entry;", DescriptorField, -1},
		{"(K)V", DescriptorIllegal, -1},
		{"", DescriptorIllegal, -1},
		{"V", DescriptorIllegal, -1},
		{"(V)V", DescriptorIllegal, -1},
		{"()", DescriptorIllegal, -1},
		{"(I", DescriptorIllegal, -1},
		{"()VV", DescriptorIllegal, -1},
		{"II", DescriptorIllegal, -1},
		{"L;", DescriptorIllegal, -1},
		{"Ljava/lang/String", DescriptorIllegal, -1},
		{"Ljava.lang.String;", DescriptorIllegal, -1},
		{"Ljava//String;", DescriptorIllegal, -1},
		{"[", DescriptorIllegal, -1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			d := ParseDescriptor(tt.desc)
			if d.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", d.Kind, tt.kind)
			}
			if got := d.ParameterCount(); got != tt.params {
				t.Errorf("ParameterCount() = %d, want %d", got, tt.params)
			}
		})
	}
}

func TestIsValidBinaryName(t *testing.T) {
	tests := map[string]bool{
		"java/lang/Exception": true,
		"Foo":                 true,
		"a/b$c":               true,
		"":                    false,
		"java.lang.Exception": false,
		"[I":                  false,
		"Foo;":                false,
		"/Foo":                false,
		"Foo/":                false,
	}
	for name, want := range tests {
		if got := IsValidBinaryName(name); got != want {
			t.Errorf("IsValidBinaryName(%q) = %v, want %v", name, got, want)
		}
	}
}
