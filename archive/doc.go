// Package archive implements the backup container: a zip file where every
// file carries a metadata record (real name, digests and lengths of each
// layer, wrapped key, IV and signature). The records of all files are
// encoded as one text blob stored in the zipHeader entry, read before any
// other entry.
//
// Files are written through the stream layers of package secure, selected
// by a Mode, and read back through the inverse layers with every digest
// checked on the fly.
package archive
