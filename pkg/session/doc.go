/*
Package session implements session management and persistence orchestration.

A Manager serializes access to each stored provenance graph, within a process
through reference-counted mutexes and across replicas through an optional
DistributedLocker, and offers a read-modify-write Update over any GraphStore.
*/
package session
