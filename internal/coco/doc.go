// Package coco reads and writes COCO-style region annotation files and
// extracts seeded image subsets from them.
//
// Dataset is the typed form produced by converters. RawDataset keeps every
// image and annotation byte-for-byte so that subsets of foreign files lose
// no fields.
package coco
