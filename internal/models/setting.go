package models

// Setting is a site-wide key/value pair (e.g. site_title).
type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}
