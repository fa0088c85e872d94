package symbols

// TypeID identifies a type in the table arena.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether the ID refers to an allocated type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// MethodID identifies a method or global function in the table arena.
type MethodID uint32

// NoMethodID marks the absence of a method.
const NoMethodID MethodID = 0

// IsValid reports whether the ID refers to an allocated method.
func (id MethodID) IsValid() bool { return id != NoMethodID }
