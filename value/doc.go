// Package value holds the data model templates render against: a closed
// set of variants (Nil, Bool, String, List, Map and Formattable) behind the
// sealed Value interface. Code inspecting a Value switches on its concrete
// type and is expected to handle all six variants.
//
// From converts the generic Go data produced by YAML and JSON decoders into
// a Value graph.
package value
