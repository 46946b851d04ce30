// Package url decomposes plain http URLs into host, port, path and
// searchpart.
//
// It is deliberately narrower than net/url: no percent-decoding, no IDN
// handling, no userinfo, and only the "http://" scheme. Parse never touches
// the network and is safe for concurrent use.
package url
