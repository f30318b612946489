// Package category maps raw clothing metadata onto the coarse garment types
// used for training.
//
// A Lookup is built once per run from the dataset's category table. The
// Classifier then walks an ordered list of rules for each record; the first
// rule that matches decides the coarse type. Rule order is part of the
// contract: a "jeans jacket" is a bottom because the bottom keywords are
// checked before the outerwear keywords.
package category
