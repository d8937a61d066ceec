// Package discovery advertises the echo server over mDNS/DNS-SD.
//
// Advertisement is optional and purely informational: clients still dial
// the configured address. The service type is "_tlsecho._tcp" in the
// "local" domain, with TXT records naming the TLS server name and ALPN
// protocol so a browser knows how to verify the server.
package discovery
