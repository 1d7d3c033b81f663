package domain

import "time"

type Post struct {
	ID        int64     `json:"id" msgpack:"id" cbor:"id"`
	Subject   string    `json:"subject" msgpack:"subject" cbor:"subject"`
	Content   string    `json:"content" msgpack:"content" cbor:"content"`
	Author    string    `json:"author" msgpack:"author" cbor:"author"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at" cbor:"created_at"`
}

type NewPost struct {
	Subject   string
	Content   string
	Author    string
	CreatedAt time.Time
}
