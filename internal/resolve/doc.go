// Package resolve classifies conversions between host types and picks call
// targets among overload candidates.
//
// ClassifyConversion answers "can a value of type A become type B, and how";
// OverloadsList.Resolve answers "which candidate does this call site bind to"
// given the argument types inferred by flow analysis and the static scope of
// the caller.
package resolve
