// Package mdb is a client library for the mdb metadata database, a
// hypermedia REST API in which every representation carries a set of
// relation links.
//
// The package offers two usage levels:
//
//  1. An object facade with domain-named operations that encode the mdb
//     schema's well-known method paths and relation names:
//
//     client, _ := mdb.New(&mdb.Config{BaseURL: "http://localhost:22338", UserID: "my-user"})
//     defer client.Close()
//
//     meo, _ := client.CreateMasterEO(ctx, mdb.Resource{"title": "myMeo"})
//     pe, _ := client.CreatePublicationEvent(ctx, meo, mdb.Resource{"title": "min publisering"})
//
//  2. A lower-level JSON/HATEOAS navigator that follows relation links
//     embedded in resource representations:
//
//     meo, _ := client.OpenURL(ctx, uri)
//     vg, _ := client.OpenRel(ctx, meo, "versionGroup")
//     _, _ = client.AddOnRel(ctx, meo, mdb.RelSubjects, mdb.Resource{"title": "min TestTagg"})
//
// Resources are plain JSON objects (map[string]any). The client never
// mutates or caches them locally; every change is a new request against
// the remote service. Errors are surfaced as distinct types (transport
// failure, non-2xx status, relation-not-found, decode failure) and are
// never retried internally.
package mdb
