// Package automap compiles and caches object-to-object mappers.
//
// A Registry resolves every (source, target) type pair once: the property
// mappings are planned from the two type shapes, a procedure is generated
// from the plan and the procedure is cached for the lifetime of the
// registry. Nested object properties are linked to the mappers of their own
// pair the first time they are mapped, so self-referential types compile
// without recursion.
//
//	r, err := automap.New(
//		automap.WithConstructor(warehouse.NewMoney, "amount", "currency"),
//		automap.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//
//	customer, err := automap.Map[*warehouse.Customer](r, src,
//		options.WithGroups("internal"),
//	)
//
// Per call behavior is configured with the options package: groups,
// attribute filters, the target to populate, constructor argument
// overrides, the date layout and circular reference handling.
package automap
