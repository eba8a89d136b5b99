package icd

import "github.com/sanguinariojoe/oclandgo/client"

// ICD wraps one connection, exposing the compute API entry points this
// veneer recognises. Every exported method corresponds to exactly one
// ocland_cl* entry point in the original implementation.
type ICD struct {
	conn *client.Conn
}

// New wraps an already-dialled connection. Dialling itself (spec §4.6,
// resolving a server address) is the caller's concern — the veneer only
// shapes calls on top of an established session, matching the real ICD
// loader's contract of being handed an already-resolved platform.
func New(conn *client.Conn) *ICD { return &ICD{conn: conn} }
