// Package exchange moves family trees between Stammbaum instances.
//
// # Document Format
//
// The exchange [Document] is a self-contained JSON description of one tree:
// the family header, its members, spouse pairs, and parent groups (father,
// mother, children). The same shape serves file import/export, the bundled
// preset trees, and server-to-server transfer.
//
// # Importing
//
// [Import] assigns a fresh id to every member and remaps all relation
// references through the resulting id map. References to ids the document
// never declared are skipped, not fatal; the [Bundle] reports how many were
// dropped. With [Options].AsLinked the imported members form a linked group
// carrying the source family id, which the region rules treat as one
// atomic unit.
//
// # Presets
//
// Three historical trees ship embedded in the binary, keyed han_dynasty,
// tang_dynasty, and ming_dynasty. They exist so a fresh instance has
// something to show, and they double as import test data.
//
// # Remote Transfer
//
// [ImportRemote] pulls the export document of another instance over HTTP
// through [httputil.Client], which caches responses and retries transient
// failures.
package exchange
