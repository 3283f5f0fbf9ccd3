// Package publisher converts a data publisher's proprietary files into snapshots.
//
// Publisher files (*.myjson) hold clients with their farms and fields, a crop
// list, and crop assignments that plant a crop on a field for a growing season.
// Every client, farm, field and crop keeps its publisher UUID as a unique id
// under the configured source, so repeated imports match through the registry.
// Crop assignments carry no id of their own and become crop zones described as
// "<field name> <season>".
//
// # Usage
//
//	snap, err := publisher.Convert("./publisher", "PublisherName.example")
//
// The Provider type serves each file as a snapshot and plugs into the
// reconcile engine and the crop zone queries like any other snapshot.Provider.
package publisher
