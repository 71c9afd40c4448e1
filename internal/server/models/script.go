package models

type Script struct {
	ID              int64
	Path            string
	SourceCode      string
	ParentProjectID int64
}
