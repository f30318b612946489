// Package assets finds the image file behind a record id and copies the
// images of a selected subset into an output directory.
package assets
