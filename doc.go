/*
Package hostring implements consistent hashing of string keys onto a dynamic
set of backend hostnames.

Both keys and hostnames are placed on a modular numeric ring [0, M). Every
hostname is placed Replicas times ("virtual nodes"), and a key belongs to the
hostname owning the nearest ring position clockwise from the key's position.
Adding or removing one hostname out of N moves roughly 1/N of the keys, and
the replicas keep the distribution close to uniform.

Ring is a plain data structure with no concurrency awareness. Coordinator
wraps a single Ring and lets one writer change membership while any number of
goroutines are looking keys up.

To keep lookups from blocking on writers, Ring stores its entries in an
immutable AVL tree. Coordinator applies each mutation to a cheap copy of the
current ring and then publishes the copy, so readers are blocked only for the
time needed to swap a pointer.
*/
package hostring
