// Package mapping loads the declarative mapping configuration: per type pair
// property overrides and discriminator tables, read from YAML.
//
// # Schema Overview
//
//	version: "1"
//	mappings:
//	  - source: store.Order
//	    target: warehouse.Order
//	    # Simplified 1:1 renames, source property to target property
//	    121:
//	      TotalCents: amount
//	    # Full property overrides
//	    fields:
//	      - target: OrderedAt
//	        dateTimeFormat: "2006-01-02"
//	      - target: City
//	        source: Address.City
//	      - target: Notes
//	        groups: [internal]
//	        maxDepth: 1
//	    # Target properties never written
//	    ignore:
//	      - Password
//	discriminators:
//	  - target: warehouse.Parcel
//	    property: kind
//	    types:
//	      door: warehouse.DoorParcel
//	      point: warehouse.PointParcel
//
// # Priority Order
//
// When the same target property is configured more than once:
//  1. "121" shorthand renames (highest)
//  2. "fields" overrides
//  3. "ignore" list
//
// # Path Syntax
//
// Source paths are dotted property names: "Name", "Address.City". A nil
// intermediate makes the property absent for that call.
package mapping
