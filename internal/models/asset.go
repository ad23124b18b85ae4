package models

// Asset is an uploaded image served back to the client by path.
type Asset struct {
	Path        string `db:"path"`
	ContentType string `db:"content_type"`
	Data        []byte `db:"data"`
}
