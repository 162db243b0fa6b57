// Package model defines the core data structures used throughout
// chmirad.
//
// # Descriptor
//
// Descriptor is one row of the product table. It says where a radar
// composite product lives in the archive and how its filenames encode time:
//
//	d := model.Descriptor{
//	    ID:               "maxz",
//	    RemoteSubPath:    "maxz/hdf5",
//	    FilenameTemplate: "T_PABV23_C_OKPR_{}.hdf",
//	    TimestampLayout:  "20060102150405",
//	}
//	d.FileName(t) // "T_PABV23_C_OKPR_20250107080000.hdf"
//
// # Location
//
// Location is the resolved (remote URL, local filename) pair for one
// product at one instant. It is produced by the chmi package's Locator.
package model
