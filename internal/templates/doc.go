// Package templates supplies the request bodies sent to the camera's control
// endpoint, keyed by operation name.
//
// Every camera request is a JSON envelope of the form
//
//	{"method": "configManager.setConfig", "data": "{\"name\":\"NTP\",\"payload\":\"...\"}"}
//
// where data is itself a JSON document encoded as a string. A default set of
// templates is embedded in the binary; operators can replace it with their own
// file (same shape as templates.json) when a firmware revision needs different
// bodies.
//
// # Copy Semantics
//
// Store.Get always returns a private copy. Callers inject credentials, device
// ids and NTP servers into that copy, so nothing written for one request can
// leak into the next.
//
//	store, _ := templates.Default()
//	tmpl, _ := store.Get(templates.Auth)
//	_ = tmpl.SetDataField("credentials", codec.Encode("admin:secret"))
package templates
