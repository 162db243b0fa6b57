// Package chmi knows how the CHMI open-data radar archive lays out its
// composite products.
//
// The package handles two concerns:
//
//  1. The product table: which products exist and how each names its files
//  2. Resolving a product and an instant to a remote URL and local filename
//
// # Product Table
//
// DefaultTable holds the built-in products in registration order:
//
//	d, err := chmi.DefaultTable.Lookup("maxz")
//	if err != nil {
//	    var unknown *chmi.UnknownProductError
//	    errors.As(err, &unknown) // unknown.ID == "maxz"
//	}
//	fmt.Println(chmi.DefaultTable.IDs())
//
// The table is a pure data slice (see products.go). New products are new
// rows; nothing that consumes the table needs to change.
//
// # Resolving Locations
//
//	loc, _ := chmi.NewLocator(chmi.DefaultBaseURL)
//	l, err := loc.Resolve(d, time.Date(2025, 1, 7, 8, 0, 0, 0, time.UTC))
//	// l.RemoteURL     = ".../composite/maxz/hdf5/T_PABV23_C_OKPR_20250107080000.hdf"
//	// l.LocalFilename = "T_PABV23_C_OKPR_20250107080000.hdf"
//
// Every instant is rendered in UTC with the descriptor's own layout.
package chmi
