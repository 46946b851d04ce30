// Package http implements hitget's HTTP/1.1 GET client.
//
// It provides:
//   - ParseResponse, turning a raw response into status line, ordered
//     headers and verbatim body
//   - BuildRequest, rendering the GET request for a parsed URL
//   - TCPTransport, doing DNS lookup, connect, send and read-until-close
//   - Client, sequencing the above with a deadline
package http
