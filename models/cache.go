package models

// CastRef is the part of a Neynar cast the gateway keeps
type CastRef struct {
	Hash string `json:"hash"`
}

// CachedCast is the stored form of a cast URL resolution.
// Timestamp is epoch seconds at write time; reads do not check it.
type CachedCast struct {
	Data      CastRef `json:"data"`
	Timestamp int64   `json:"timestamp"`
}
