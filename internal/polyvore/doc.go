// Package polyvore extracts a reproducible subset of the Polyvore outfit
// dataset.
//
// Every item in the metadata file is classified into a coarse garment type
// and matched to an image file. Outfits keep only the items that passed
// both steps, and an outfit with fewer than MinItems survivors is dropped.
// A seeded sample of the remaining outfits is split into train and
// validation lists. The referenced images are copied next to the three
// output JSON files.
package polyvore
