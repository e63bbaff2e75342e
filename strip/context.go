package strip

import "github.com/dhamidi/classguard/classfile"

const (
	onClass     = classfile.ContextClass
	onField     = classfile.ContextField
	onMethod    = classfile.ContextMethod
	onCode      = classfile.ContextCode
	onComponent = classfile.ContextRecordComponent
)

// permitted lists, per standard attribute, the holders it may appear on.
var permitted = map[string]classfile.AttributeContext{
	classfile.AttrCode:                                 onMethod,
	classfile.AttrConstantValue:                        onField,
	classfile.AttrExceptions:                           onMethod,
	classfile.AttrInnerClasses:                         onClass,
	classfile.AttrEnclosingMethod:                      onClass,
	classfile.AttrSynthetic:                            onClass | onField | onMethod,
	classfile.AttrDeprecated:                           onClass | onField | onMethod,
	classfile.AttrSignature:                            onClass | onField | onMethod | onComponent,
	classfile.AttrSourceFile:                           onClass,
	classfile.AttrSourceDebugExtension:                 onClass,
	classfile.AttrLineNumberTable:                      onCode,
	classfile.AttrLocalVariableTable:                   onCode,
	classfile.AttrLocalVariableTypeTable:               onCode,
	classfile.AttrStackMapTable:                        onCode,
	classfile.AttrBootstrapMethods:                     onClass,
	classfile.AttrMethodParameters:                     onMethod,
	classfile.AttrNestHost:                             onClass,
	classfile.AttrNestMembers:                          onClass,
	classfile.AttrPermittedSubclasses:                  onClass,
	classfile.AttrRecord:                               onClass,
	classfile.AttrModule:                               onClass,
	classfile.AttrModulePackages:                       onClass,
	classfile.AttrModuleMainClass:                      onClass,
	classfile.AttrRuntimeVisibleAnnotations:            onClass | onField | onMethod | onComponent,
	classfile.AttrRuntimeInvisibleAnnotations:          onClass | onField | onMethod | onComponent,
	classfile.AttrRuntimeVisibleParameterAnnotations:   onMethod,
	classfile.AttrRuntimeInvisibleParameterAnnotations: onMethod,
	classfile.AttrRuntimeVisibleTypeAnnotations:        onClass | onField | onMethod | onCode | onComponent,
	classfile.AttrRuntimeInvisibleTypeAnnotations:      onClass | onField | onMethod | onCode | onComponent,
	classfile.AttrAnnotationDefault:                    onMethod,
}

// Permitted reports whether a standard attribute may be attached to a holder
// of the given context. Unknown names are permitted everywhere.
func Permitted(name string, ctx classfile.AttributeContext) bool {
	allowed, ok := permitted[name]
	if !ok {
		return true
	}
	return allowed&ctx != 0
}
