package chmi

import "github.com/handiism/chmirad/internal/model"

// Timestamp layouts used by the archive.
const (
	// LayoutSeconds is the full datetime used by the HDF5 composites.
	LayoutSeconds = "20060102150405"

	// LayoutDotMinutes is the date-dot-time form without seconds used by
	// the PNG previews.
	LayoutDotMinutes = "20060102.1504"
)

// DefaultProduct is the product a new session uses when none is configured.
const DefaultProduct = "maxz"

// Products lists the built-in descriptors in registration order.
var Products = []model.Descriptor{
	{
		ID:               "echotop",
		RemoteSubPath:    "echotop/hdf5",
		FilenameTemplate: "T_PANV23_C_OKPR_{}.hdf",
		TimestampLayout:  LayoutSeconds,
		Description:      "Echo top height",
	},
	{
		ID:               "fct_maxz",
		RemoteSubPath:    "fct_maxz/hdf5",
		FilenameTemplate: "T_PANV23_C_OKPR_{}.hdf",
		TimestampLayout:  LayoutSeconds,
		Description:      "Nowcast of column maximum reflectivity",
	},
	{
		ID:               "fct_pseudocappi2km",
		RemoteSubPath:    "fct_pseudocappi2km/hdf5",
		FilenameTemplate: "T_PANV23_C_OKPR_{}.hdf",
		TimestampLayout:  LayoutSeconds,
		Description:      "Nowcast of pseudo-CAPPI reflectivity at 2 km",
	},
	{
		ID:               "maxz",
		RemoteSubPath:    "maxz/hdf5",
		FilenameTemplate: "T_PABV23_C_OKPR_{}.hdf",
		TimestampLayout:  LayoutSeconds,
		Description:      "Column maximum reflectivity",
	},
	{
		ID:               "merge1h",
		RemoteSubPath:    "merge1h/hdf5",
		FilenameTemplate: "T_PASV23_C_OKPR_{}.hdf",
		TimestampLayout:  LayoutSeconds,
		Description:      "One hour precipitation estimate merged with rain gauges",
	},
	{
		ID:               "pseudocappi2km",
		RemoteSubPath:    "pseudocappi2km/hdf5",
		FilenameTemplate: "T_PANV23_C_OKPR_{}.hdf",
		TimestampLayout:  LayoutSeconds,
		Description:      "Pseudo-CAPPI reflectivity at 2 km",
	},
	{
		ID:               "maxz_png",
		RemoteSubPath:    "maxz/png",
		FilenameTemplate: "pacz2gmaps3.z_max3d.{}.0.png",
		TimestampLayout:  LayoutDotMinutes,
		Description:      "Column maximum reflectivity preview image",
	},
	{
		ID:               "echotop_png",
		RemoteSubPath:    "echotop/png",
		FilenameTemplate: "pacz2gmaps3.etop_z.{}.0.png",
		TimestampLayout:  LayoutDotMinutes,
		Description:      "Echo top height preview image",
	},
	{
		ID:               "merge1h_png",
		RemoteSubPath:    "merge1h/png",
		FilenameTemplate: "pacz2gmaps3.merge1h.{}.0.png",
		TimestampLayout:  LayoutDotMinutes,
		Description:      "One hour precipitation preview image",
	},
	{
		ID:               "pseudocappi2km_png",
		RemoteSubPath:    "pseudocappi2km/png",
		FilenameTemplate: "pacz2gmaps3.z_cappi020.{}.0.png",
		TimestampLayout:  LayoutDotMinutes,
		Description:      "Pseudo-CAPPI reflectivity at 2 km preview image",
	},
}

// DefaultTable is the process-wide table built from Products.
var DefaultTable = MustTable(Products...)
