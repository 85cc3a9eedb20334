package entity

import "time"

// User is the opaque caller identity. The id is supplied by the client on
// first contact and never changes afterwards.
type User struct {
	Id        string
	CreatedAt time.Time
}
