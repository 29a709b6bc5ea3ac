// Package datafile builds data files made of record regions.
//
// Each region is a 4-byte little-endian header word followed by its records.
// The word is either the record count or the byte length of the region,
// matching collection.Layout. Regions are written back to back.
//
//	w := datafile.NewWriter()
//	ids, _ := w.AddFixed(16, records, false)
//	names := w.AddVariable(prefixed, true)
//	if err := w.WriteFile("devices.dat"); err != nil { ... }
//
//	hdr := w.Regions()[names].Header // ready for collection.NewFile
package datafile
