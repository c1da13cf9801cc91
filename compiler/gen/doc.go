// Package gen translates annotated entity types into relational tables.
//
// The translator consumes types through the load.TypeInfo and
// load.MemberInfo interfaces and produces immutable schema.Table values:
// fields in column order, a primary key, candidate keys, foreign keys and
// CHECK constraints.
//
// # Architecture
//
// Every member of a type flows through the same steps:
//
//	Member (load.MemberInfo)
//	        ↓
//	   base translator        one descriptor per stored field
//	        ↓
//	   annotation pipeline    name, nullability, column, converter,
//	        ↓                 default, primary key, candidate key,
//	        ↓                 constraints
//	   column solver          pinned and unpinned member groups
//	        ↓
//	   key deducer            candidate, primary and foreign keys
//	        ↓
//	   schema.Table
//
// Descriptors are threaded through the passes as an immutable
// DescriptorMap. A pass returns a new map and never changes the one it was
// given.
//
// Aggregate members (load.CategoryStruct) are flattened into the table of
// the enclosing entity. Reference members (load.CategoryClass) store the
// primary key of the referenced entity and yield a foreign key; the
// referenced entity is translated first.
//
// # Error Handling
//
// Translation fails fast. The first violation aborts the translation of the
// entity and is returned as an *Error carrying the kind, the type, the
// member and nested path, and the annotations involved:
//
//	tbl, err := tr.Translate(user)
//	if errors.Is(err, gen.ErrConflictingConstraints) {
//	    // ...
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	tr, err := gen.New(
//	    gen.WithTableNaming(gen.NamingSnakePlural),
//	    gen.WithPathSeparator("_"),
//	    gen.WithLogger(logger),
//	)
//
// # Column Layout
//
// Members pinned with a Column annotation keep their columns. The gaps they
// leave are filled by the first permutation of the unpinned members, in
// declaration order, whose sizes tile the gaps exactly. The search is
// factorial in the number of unpinned members.
package gen
