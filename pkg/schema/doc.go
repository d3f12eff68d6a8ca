// Package schema validates explicit attribute values by attribute type.
//
// A Schema maps attribute types to value types. Types without an entry
// accept any value:
//
//	s := schema.Schema{
//	    "FilePath": schema.String(),
//	    "Size":     schema.Int(),
//	    "Tags":     schema.Slice(schema.String()),
//	}
//
//	if err := s.Validate("Size", 3.5); err != nil {
//	    // errors.Is(err, schema.ErrInvalid)
//	}
//
// Schemas are usually parsed from configuration:
//
//	s, err := schema.Parse(map[string]string{"Size": "int", "Tags": "[string]"})
package schema
