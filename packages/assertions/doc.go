// Package assertions checks fetched responses.
//
// Expectations are written on the command line:
//
//	status == 200
//	header.Content-Type contains json
//	body.items[0].id == 42
//	body.token exists
//
// JSON bodies are queried with gjson; MatchSchema validates a body against a
// JSON schema file.
package assertions
