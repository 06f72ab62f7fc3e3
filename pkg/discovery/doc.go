/*
This package keeps the routing table that decides what happens when an
image is pushed: a map from repository (as the registry names it in
its notifications) to a deployment target.

The table is built from the labels of the containers the Docker
engine knows about, running or not. `Scheme` says which labels to
read; `Cache` holds the last table built and rebuilds it when it is
older than its TTL and somebody asks.
*/
package discovery
