// Package manifest reads and rewrites autotest case manifests. A manifest is
// a JSON document whose "environment" array lists the device environments a
// case runs on; each entry carries a "label" naming the device category.
// Documents are checked against an embedded JSON Schema and rewritten as a
// token stream so member order and number literals survive the round trip.
package manifest
