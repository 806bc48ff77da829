// Command batchren renames files in bulk.
//
// Inputs are selected by a regular expression (--regex), by sorting the
// working directory (--sort) or by a mapping file (--map). Destinations come
// from an output template. Every real batch is journaled so `batchren undo`
// can reverse it.
package main
