// Package accessor extracts attribute values from arbitrary Go objects.
//
// A Reader is resolved once per collection from the element type:
//
//	r := accessor.For[Person]()              // struct fields, `idx` tags
//	r := accessor.For[map[string]any]()     // map keys
//	r := accessor.Tuple("a", "b")            // positional fields of slices/arrays
//	r = accessor.WithFuncs(r, accessor.Funcs{"len": lenOf})
//
// A missing attribute is reported as found=false, never as an error.
package accessor
