// Package load describes the source types consumed by the translator.
//
// The translator never inspects Go types directly. It reads TypeInfo and
// MemberInfo values, which any introspection adapter can provide. This
// package ships an in-memory implementation, assembled in code or loaded
// from a YAML model file:
//
//	enums:
//	  Color: [Red, Green, Blue]
//	types:
//	  - name: Pet
//	    kind: entity
//	    members:
//	      - name: ID
//	        type: int64
//	      - name: Name
//	        type: string
//	        annotations:
//	          - {kind: non-empty}
//	      - name: Color
//	        type: Color
//	        annotations:
//	          - {kind: convert, converter: enum-to-ordinal}
package load
