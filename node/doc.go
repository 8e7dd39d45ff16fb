// Package node implements Node, a worker owning a bounded inbound queue, an
// action run against each WorkItem, an optional linear successor, and an
// optional named broadcast map of derivative-labeled fan-out targets.
//
// A Node's Action is built with either Sync or Async. A Sync action runs on
// a short-lived goroutine per item, so a slow or panicking action can't wedge
// the worker loop forever without at least honoring ctx. An Async action is
// submitted to the Node's own github.com/joeycumines/go-eventloop Loop, and
// awaited via a ChainedPromise — for actions that are themselves built
// around that cooperative scheduler, rather than a blocking call.
package node
