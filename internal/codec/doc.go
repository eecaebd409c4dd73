// Package codec packs and unpacks the opaque payload blobs carried inside
// camera request bodies.
//
// The camera firmware embeds some settings objects (device identity, NTP pool)
// as base64-encoded JSON strings inside the outer JSON-RPC envelope. To change
// one field the client has to decode the blob, edit the decoded object, and
// re-encode it before sending:
//
//	settings, err := codec.DecodeJSON(blob)
//	if err != nil {
//	    return err
//	}
//	settings["name"] = "31321312"
//	blob, err = codec.EncodeJSON(settings)
//
// Encode is total and deterministic. Decode(Encode(s)) == s for every string s.
package codec
