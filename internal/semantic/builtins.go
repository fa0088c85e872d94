package semantic

import "phpc/internal/symbols"

// library declares the runtime library: functions, exception classes and the
// conversion helpers of the value types.
type library struct {
	t *symbols.Table
}

func (l library) special(s symbols.SpecialType) symbols.TypeID { return l.t.Special(s) }

func (l library) param(name string, s symbols.SpecialType) symbols.Param {
	return symbols.Param{Name: name, Type: l.special(s)}
}

func (l library) optional(name string, s symbols.SpecialType) symbols.Param {
	return symbols.Param{Name: name, Type: l.special(s), HasDefault: true}
}

func (l library) variadic(name string, s symbols.SpecialType) symbols.Param {
	return symbols.Param{Name: name, Type: l.special(s), IsVariadic: true}
}

func (l library) byRef(name string, s symbols.SpecialType) symbols.Param {
	return symbols.Param{Name: name, Type: l.special(s), IsByRef: true}
}

func (l library) context() symbols.Param {
	return symbols.Param{Name: "ctx", Type: l.special(symbols.SpecialContext), IsContext: true}
}

func (l library) function(name string, ret symbols.SpecialType, params ...symbols.Param) symbols.MethodID {
	return l.t.AddMethod(symbols.Method{Name: name, Params: params, Return: l.special(ret), Access: symbols.Public, Static: true})
}

func (l library) class(name string, kind symbols.TypeKind, base symbols.TypeID, ifaces ...symbols.TypeID) symbols.TypeID {
	id, ok := l.t.Declare(symbols.Type{Name: name, Kind: kind, Base: base, Interfaces: ifaces, Library: true})
	if !ok {
		panic("library type declared twice: " + name)
	}
	return id
}

func (l library) method(owner symbols.TypeID, name string, ret symbols.TypeID, m symbols.Method) symbols.MethodID {
	m.Name = name
	m.Declaring = owner
	m.Return = ret
	return l.t.AddMethod(m)
}

func loadLibrary(t *symbols.Table) {
	l := library{t: t}
	const (
		value   = symbols.SpecialPhpValue
		str     = symbols.SpecialString
		long    = symbols.SpecialInt64
		double  = symbols.SpecialDouble
		boolean = symbols.SpecialBoolean
		array   = symbols.SpecialPhpArray
		object  = symbols.SpecialObject
		void    = symbols.SpecialVoid
		number  = symbols.SpecialPhpNumber
	)

	// strings
	l.function("strlen", long, l.param("string", str))
	for _, name := range []string{"strtoupper", "strtolower", "ucfirst", "lcfirst"} {
		l.function(name, str, l.param("string", str))
	}
	for _, name := range []string{"trim", "ltrim", "rtrim"} {
		l.function(name, str, l.param("string", str), l.optional("characters", str))
	}
	l.function("str_repeat", str, l.param("string", str), l.param("times", long))
	l.function("substr", str, l.param("string", str), l.param("offset", long), l.optional("length", long))
	l.function("strpos", value, l.param("haystack", str), l.param("needle", str), l.optional("offset", long))
	l.function("str_replace", value, l.param("search", value), l.param("replace", value), l.param("subject", value))
	l.function("sprintf", str, l.param("format", str), l.variadic("values", value))
	l.function("printf", long, l.context(), l.param("format", str), l.variadic("values", value))
	l.function("implode", str, l.param("separator", str), l.param("array", array))
	l.function("explode", array, l.param("separator", str), l.param("string", str), l.optional("limit", long))

	// arrays
	l.function("count", long, l.param("value", value), l.optional("mode", long))
	l.function("array_keys", array, l.param("array", array))
	l.function("array_values", array, l.param("array", array))
	l.function("array_merge", array, l.variadic("arrays", array))
	l.function("array_map", array, l.param("callback", value), l.param("array", array), l.variadic("arrays", array))
	l.function("array_filter", array, l.param("array", array), l.optional("callback", value), l.optional("mode", long))
	l.function("array_push", long, l.byRef("array", array), l.variadic("values", value))
	l.function("in_array", boolean, l.param("needle", value), l.param("haystack", array), l.optional("strict", boolean))
	l.function("array_key_exists", boolean, l.param("key", value), l.param("array", array))
	l.function("range", array, l.param("start", value), l.param("end", value), l.optional("step", number))

	// math; abs is overloaded on the host
	l.function("abs", long, l.param("num", long))
	l.function("abs", double, l.param("num", double))
	l.function("sqrt", double, l.param("num", double))
	l.function("floor", double, l.param("num", number))
	l.function("ceil", double, l.param("num", number))
	l.function("round", double, l.param("num", number), l.optional("precision", long))
	l.function("max", value, l.variadic("values", value))
	l.function("min", value, l.variadic("values", value))
	l.function("rand", long, l.optional("min", long), l.optional("max", long))
	l.function("intdiv", long, l.param("num1", long), l.param("num2", long))

	// variables
	for _, name := range []string{
		"is_int", "is_integer", "is_long", "is_float", "is_double", "is_string", "is_bool",
		"is_array", "is_null", "is_object", "is_numeric", "is_callable", "is_scalar", "is_iterable",
	} {
		l.function(name, boolean, l.param("value", value))
	}
	l.function("intval", long, l.param("value", value), l.optional("base", long))
	l.function("floatval", double, l.param("value", value))
	l.function("boolval", boolean, l.param("value", value))
	l.function("strval", str, l.context(), l.param("value", value))
	l.function("gettype", str, l.param("value", value))
	l.function("get_class", str, l.optional("object", object))
	l.function("var_dump", void, l.context(), l.variadic("values", value))
	l.function("print_r", value, l.context(), l.param("value", value), l.optional("return", boolean))
	l.function("print", long, l.context(), l.param("arg", str))
	l.function("exit", void, l.optional("status", value))
	l.function("json_encode", value, l.param("value", value), l.optional("flags", long))
	l.function("function_exists", boolean, l.param("function", str))
	l.function("define", boolean, l.param("name", str), l.param("value", value))

	objectID := l.special(object)
	stringID := l.special(str)
	longID := l.special(long)

	// exceptions
	throwable := l.class("Throwable", symbols.KindInterface, symbols.NoTypeID)
	abstract := symbols.Method{Access: symbols.Public, Abstract: true, Virtual: true}
	l.method(throwable, "getMessage", stringID, abstract)
	l.method(throwable, "getCode", longID, abstract)

	declareThrowable := func(name string, base symbols.TypeID, ifaces ...symbols.TypeID) symbols.TypeID {
		id := l.class(name, symbols.KindClass, base, ifaces...)
		l.method(id, "__construct", l.special(void), symbols.Method{
			Access: symbols.Public,
			Kind:   symbols.MethodConstructor,
			Params: []symbols.Param{l.optional("message", str), l.optional("code", long), l.optional("previous", value)},
		})
		return id
	}
	exception := declareThrowable("Exception", objectID, throwable)
	l.method(exception, "getMessage", stringID, symbols.Method{Access: symbols.Public, Virtual: true, Sealed: true})
	l.method(exception, "getCode", longID, symbols.Method{Access: symbols.Public, Virtual: true, Sealed: true})
	declareThrowable("RuntimeException", exception)
	logic := declareThrowable("LogicException", exception)
	declareThrowable("InvalidArgumentException", logic)
	errorID := declareThrowable("Error", objectID, throwable)
	l.method(errorID, "getMessage", stringID, symbols.Method{Access: symbols.Public, Virtual: true, Sealed: true})
	l.method(errorID, "getCode", longID, symbols.Method{Access: symbols.Public, Virtual: true, Sealed: true})
	declareThrowable("TypeError", errorID)

	// core classes
	closure := l.class("Closure", symbols.KindClass, objectID)
	l.t.Type(closure).Sealed = true
	l.class("stdClass", symbols.KindClass, objectID)
	countable := l.class("Countable", symbols.KindInterface, symbols.NoTypeID)
	l.method(countable, "count", longID, abstract)
	stringable := l.class("Stringable", symbols.KindInterface, symbols.NoTypeID)
	l.method(stringable, "__toString", stringID, abstract)
	traversable := l.class("Traversable", symbols.KindInterface, symbols.NoTypeID)
	iterator := l.class("Iterator", symbols.KindInterface, symbols.NoTypeID, traversable)
	generator := l.class("Generator", symbols.KindClass, objectID, iterator)
	l.t.Type(generator).Sealed = true
	final := symbols.Method{Access: symbols.Public, Virtual: true, Sealed: true}
	for _, it := range []struct {
		name string
		ret  symbols.SpecialType
	}{
		{"current", value}, {"key", value}, {"next", void}, {"valid", boolean}, {"rewind", void},
	} {
		l.method(iterator, it.name, l.special(it.ret), abstract)
		l.method(generator, it.name, l.special(it.ret), final)
	}
	send := final
	send.Params = []symbols.Param{l.param("value", value)}
	l.method(generator, "send", l.special(value), send)
	l.method(generator, "getReturn", l.special(value), final)

	// conversions of the dynamic value
	valueID := l.special(value)
	instance := symbols.Method{Access: symbols.Public}
	l.method(valueID, "ToBoolean", l.special(boolean), instance)
	l.method(valueID, "ToLong", longID, instance)
	l.method(valueID, "ToDouble", l.special(double), instance)
	l.method(valueID, "ToNumber", l.special(number), instance)
	l.method(valueID, "ToString", stringID, symbols.Method{Access: symbols.Public, Params: []symbols.Param{l.context()}})
	l.method(valueID, "ToArray", l.special(array), instance)
	l.method(valueID, "AsObject", objectID, instance)
	for _, s := range []symbols.SpecialType{boolean, long, double, str, array, number} {
		l.method(valueID, "Create", valueID, symbols.Method{
			Access: symbols.Public,
			Static: true,
			Params: []symbols.Param{l.param("value", s)},
		})
	}
	l.method(valueID, "FromValue", valueID, symbols.Method{
		Access: symbols.Public,
		Static: true,
		Params: []symbols.Param{l.param("value", object)},
	})
	l.t.AddExtension(valueID)

	convert := l.class("Convert", symbols.KindClass, objectID)
	l.t.Type(convert).Sealed = true
	static := func(name string, ret symbols.SpecialType, params ...symbols.Param) {
		l.method(convert, name, l.special(ret), symbols.Method{Access: symbols.Public, Static: true, Params: params})
	}
	static("ToBoolean", boolean, l.param("value", str))
	static("ToLong", long, l.param("value", str))
	static("ToDouble", double, l.param("value", str))
	static("ToNumber", number, l.param("value", str))
	static("ToString", str, l.param("value", long), l.context())
	static("ToString", str, l.param("value", double), l.context())
	static("ToString", str, l.param("value", boolean))
	static("ToDouble", double, l.param("value", long))
	l.t.AddExtension(convert)
}
